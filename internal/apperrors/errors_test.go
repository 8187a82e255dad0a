package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("update task: %w", Forbidden("Not authorized to update this task"))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Not authorized to update this task", PublicMessage(err, "fallback"))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "title", Message: "Title is required"},
		{Field: "priority", Message: "Priority must be one of: low medium high"},
	}}

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Title is required, Priority must be one of: low medium high", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(Invalid("status", "bad"), &ve))
	assert.Equal(t, "status", ve.Fields[0].Field)
}

func TestPublicMessage_Fallback(t *testing.T) {
	assert.Equal(t, "Server error", PublicMessage(errors.New("pq: connection refused"), "Server error"))
}
