// Package memory is an in-process implementation of the repositories. It
// follows the same filtering, ordering and cascade rules as the postgres
// store and backs STORE_DRIVER=memory and the HTTP tests.
package memory

import (
	"cmp"
	"sort"
	"strings"
	"sync"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.TaskRepository = (*TaskRepository)(nil)
)

type Store struct {
	mu    sync.RWMutex
	users map[string]models.User
	tasks map[string]models.Task
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]models.User),
		tasks: make(map[string]models.Task),
	}
}

// Users returns the user directory view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Tasks returns the task view of the store.
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

// withPeople fills the creator and assignee summaries. Callers hold s.mu.
func (s *Store) withPeople(t models.Task) models.Task {
	if u, ok := s.users[t.CreatedBy]; ok {
		t.Creator = u.Summary()
	}
	t.Assignee = nil
	if t.AssignedTo != nil {
		if u, ok := s.users[*t.AssignedTo]; ok {
			t.Assignee = u.Summary()
		}
	}
	return t
}

func matches(t models.Task, f models.TaskFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.IsCompleted != nil && t.IsCompleted != *f.IsCompleted {
		return false
	}
	if f.AssignedTo != nil && !t.IsAssignedTo(*f.AssignedTo) {
		return false
	}
	if f.CreatedBy != nil && t.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	if f.VisibleTo != "" && t.CreatedBy != f.VisibleTo && !t.IsAssignedTo(f.VisibleTo) {
		return false
	}
	return true
}

func sortTasks(tasks []models.Task, by models.TaskSort) {
	// id breaks ties so the order is stable between calls
	sort.Slice(tasks, func(i, j int) bool {
		c := compare(tasks[i], tasks[j], by.Field)
		if c == 0 {
			return tasks[i].ID < tasks[j].ID
		}
		if by.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b models.Task, field models.SortField) int {
	switch field {
	case models.SortTitle:
		return strings.Compare(a.Title, b.Title)
	case models.SortStatus:
		return cmp.Compare(a.Status.Rank(), b.Status.Rank())
	case models.SortPriority:
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	case models.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case models.SortDueDate:
		return compareNullable(a.DueDate, b.DueDate)
	case models.SortCompletedAt:
		return compareNullable(a.CompletedAt, b.CompletedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// compareNullable orders nil after every value, as postgres does for ASC.
func compareNullable(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
