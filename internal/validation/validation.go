// Package validation wraps the shared go-playground validator and converts
// its failures into field-level apperrors.ValidationError values.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"tasktracker/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

// Validate is safe for concurrent use; it caches struct metadata.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s using its `validate` tags.
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &apperrors.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: Message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return out
}

// Var validates a single value and reports the failure under field.
func Var(field string, value any, tag string) *apperrors.FieldError {
	err := Validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &apperrors.FieldError{Field: field, Message: Message(field, fe.Tag(), fe.Param())}
	}
	return &apperrors.FieldError{Field: field, Message: fmt.Sprintf("%s is invalid", label(field))}
}

// Message renders a human readable message for a failed validation tag.
func Message(field, tag, param string) string {
	name := label(field)
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, param)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", name, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, param)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// label turns "dueDate" into "Due date".
func label(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
