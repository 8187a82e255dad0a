// Package lifecycle applies partial updates to tasks and keeps the completion
// flag, completion timestamp and status consistent. Every mutation path (the
// general update and the toggle endpoint) goes through ApplyUpdate.
package lifecycle

import (
	"strings"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
	"tasktracker/internal/validation"
	"tasktracker/pkg/optional"
)

// Changes is the set of fields a caller asked to change. Absent fields are
// left alone; null clears the nullable ones.
type Changes struct {
	Title       optional.Value[string]              `json:"title"`
	Description optional.Value[string]              `json:"description"`
	Status      optional.Value[models.TaskStatus]   `json:"status"`
	Priority    optional.Value[models.TaskPriority] `json:"priority"`
	DueDate     optional.Value[models.Date]         `json:"dueDate"`
	AssignedTo  optional.Value[string]              `json:"assignedTo"`
	IsCompleted optional.Value[bool]                `json:"isCompleted"`
}

func (c Changes) IsEmpty() bool {
	return !c.Title.IsSet() && !c.Description.IsSet() && !c.Status.IsSet() &&
		!c.Priority.IsSet() && !c.DueDate.IsSet() && !c.AssignedTo.IsSet() && !c.IsCompleted.IsSet()
}

// AssigneeToResolve returns the user id the change would assign, if any.
func (c Changes) AssigneeToResolve() (string, bool) {
	id, ok := c.AssignedTo.Get()
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return strings.TrimSpace(id), true
}

// Validate checks the shape of every present field.
func Validate(c Changes) error {
	var fields []apperrors.FieldError
	add := func(fe *apperrors.FieldError) {
		if fe != nil {
			fields = append(fields, *fe)
		}
	}

	if c.Title.IsNull() {
		add(&apperrors.FieldError{Field: "title", Message: "Title cannot be empty"})
	} else if v, ok := c.Title.Get(); ok {
		add(validation.Var("title", strings.TrimSpace(v), "required,min=3,max=200"))
	}
	if v, ok := c.Description.Get(); ok {
		add(validation.Var("description", strings.TrimSpace(v), "max=2000"))
	}
	if c.Status.IsNull() {
		add(&apperrors.FieldError{Field: "status", Message: "Status cannot be null"})
	} else if v, ok := c.Status.Get(); ok && !v.Valid() {
		add(&apperrors.FieldError{Field: "status", Message: "Status must be pending, in-progress, or completed"})
	}
	if c.Priority.IsNull() {
		add(&apperrors.FieldError{Field: "priority", Message: "Priority cannot be null"})
	} else if v, ok := c.Priority.Get(); ok && !v.Valid() {
		add(&apperrors.FieldError{Field: "priority", Message: "Priority must be low, medium, or high"})
	}
	if id, ok := c.AssigneeToResolve(); ok {
		add(validation.Var("assignedTo", id, "uuid"))
	}
	if c.IsCompleted.IsNull() {
		add(&apperrors.FieldError{Field: "isCompleted", Message: "isCompleted must be a boolean"})
	}

	if len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}

// ApplyUpdate returns task with changes applied. It does not touch UpdatedAt;
// the store stamps that on write.
//
// When the completion flag flips to true the status becomes completed and
// CompletedAt is set to now. When it flips to false CompletedAt is cleared and
// the status is kept as it is.
func ApplyUpdate(task models.Task, c Changes, now time.Time) models.Task {
	out := task

	if v, ok := c.Title.Get(); ok {
		out.Title = strings.TrimSpace(v)
	}
	if c.Description.IsSet() {
		v, _ := c.Description.Get()
		out.Description = strings.TrimSpace(v)
	}
	if v, ok := c.Status.Get(); ok {
		out.Status = v
	}
	if v, ok := c.Priority.Get(); ok {
		out.Priority = v
	}
	if c.DueDate.IsSet() {
		if v, ok := c.DueDate.Get(); ok {
			due := v.Time
			out.DueDate = &due
		} else {
			out.DueDate = nil
		}
	}
	if c.AssignedTo.IsSet() {
		if id, ok := c.AssigneeToResolve(); ok {
			out.AssignedTo = &id
		} else {
			out.AssignedTo = nil
		}
		// the embedded summary belongs to the previous assignee
		if out.AssignedTo == nil || !task.IsAssignedTo(*out.AssignedTo) {
			out.Assignee = nil
		}
	}

	if done, ok := c.IsCompleted.Get(); ok && done != task.IsCompleted {
		out.IsCompleted = done
		if done {
			at := now
			out.Status = models.StatusCompleted
			out.CompletedAt = &at
		} else {
			out.CompletedAt = nil
		}
	}

	return out
}

// Toggle flips the completion flag through ApplyUpdate.
func Toggle(task models.Task, now time.Time) models.Task {
	return ApplyUpdate(task, Changes{IsCompleted: optional.Of(!task.IsCompleted)}, now)
}
