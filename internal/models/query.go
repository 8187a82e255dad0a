package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskFilter narrows a task listing. Nil / empty fields do not filter.
type TaskFilter struct {
	Status      *TaskStatus
	Priority    *TaskPriority
	IsCompleted *bool
	AssignedTo  *string
	CreatedBy   *string
	Search      string
	// VisibleTo limits results to tasks the user created or is assigned to.
	VisibleTo string
}

type SortField string

const (
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortTitle       SortField = "title"
	SortStatus      SortField = "status"
	SortPriority    SortField = "priority"
	SortDueDate     SortField = "dueDate"
	SortCompletedAt SortField = "completedAt"
)

var sortFields = map[SortField]bool{
	SortCreatedAt:   true,
	SortUpdatedAt:   true,
	SortTitle:       true,
	SortStatus:      true,
	SortPriority:    true,
	SortDueDate:     true,
	SortCompletedAt: true,
}

type TaskSort struct {
	Field SortField
	Desc  bool
}

// DefaultTaskSort lists newest tasks first.
var DefaultTaskSort = TaskSort{Field: SortCreatedAt, Desc: true}

// SortParamError names the query parameter ParseTaskSort rejected.
type SortParamError struct {
	Param string
	Value string
}

func (e *SortParamError) Error() string {
	if e.Param == "order" {
		return fmt.Sprintf("unknown sort order %q", e.Value)
	}
	return fmt.Sprintf("unknown sort field %q", e.Value)
}

// ParseTaskSort reads the sortBy / order query pair. Empty values fall back to
// DefaultTaskSort. Failures are *SortParamError.
func ParseTaskSort(field, order string) (TaskSort, error) {
	s := DefaultTaskSort
	if field != "" {
		if !sortFields[SortField(field)] {
			return TaskSort{}, &SortParamError{Param: "sortBy", Value: field}
		}
		s.Field = SortField(field)
	}
	switch strings.ToLower(order) {
	case "":
	case "asc":
		s.Desc = false
	case "desc":
		s.Desc = true
	default:
		return TaskSort{}, &SortParamError{Param: "order", Value: order}
	}
	return s, nil
}

type UserFilter struct {
	Search string
}

// Date accepts either an RFC 3339 timestamp or a bare YYYY-MM-DD date, which
// is what HTML date inputs send.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
