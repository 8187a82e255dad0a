package models

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// TaskStatuses lists the statuses in workflow order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// Rank is the position of s in TaskStatuses, or len(TaskStatuses) when s is unknown.
func (s TaskStatus) Rank() int {
	for i, v := range TaskStatuses {
		if v == s {
			return i
		}
	}
	return len(TaskStatuses)
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// TaskPriorities lists the priorities from lowest to highest.
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) Rank() int {
	for i, v := range TaskPriorities {
		if v == p {
			return i
		}
	}
	return len(TaskPriorities)
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the part of a user embedded in task responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	IsCompleted bool         `json:"isCompleted"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	AssignedTo  *string      `json:"assignedTo,omitempty"`
	Creator     *UserSummary `json:"creator,omitempty"`
	Assignee    *UserSummary `json:"assignee,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsAssignedTo reports whether userID is the task's current assignee.
func (t Task) IsAssignedTo(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
}

// TaskEvent is published whenever a task changes.
type TaskEvent struct {
	Type     string    `json:"type"`
	TaskID   string    `json:"taskId"`
	ActorID  string    `json:"actorId"`
	Task     *Task     `json:"task,omitempty"`
	At       time.Time `json:"at"`
	Audience []string  `json:"-"`
}

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskToggled = "task.toggled"
	EventTaskDeleted = "task.deleted"
)
