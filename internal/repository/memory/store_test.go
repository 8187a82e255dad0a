package memory

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, name string) models.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     name + "@example.com",
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: base,
		UpdatedAt: base,
	})
	require.NoError(t, err)
	return u
}

func seedTask(t *testing.T, s *Store, creator models.User, title, description string, offset time.Duration, mutate ...func(*models.Task)) models.Task {
	t.Helper()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		CreatedBy:   creator.ID,
		CreatedAt:   base.Add(offset),
		UpdatedAt:   base.Add(offset),
	}
	for _, m := range mutate {
		m(&task)
	}
	created, err := s.Tasks().Create(context.Background(), task)
	require.NoError(t, err)
	return created
}

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestTaskRepository_SearchMatchesDescriptionCaseInsensitively(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	seedTask(t, s, alice, "Quarterly report", "URGENT: needs numbers", 0)
	seedTask(t, s, alice, "Groceries", "milk", time.Minute)

	got, err := s.Tasks().List(context.Background(), models.TaskFilter{Search: "urgent"}, models.DefaultTaskSort)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quarterly report"}, titles(got))
}

func TestTaskRepository_FiltersAreConjunctive(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	high := models.PriorityHigh
	seedTask(t, s, alice, "A high", "", 0, func(t *models.Task) { t.Priority = high })
	seedTask(t, s, alice, "A low", "", time.Minute, func(t *models.Task) { t.Priority = models.PriorityLow })
	seedTask(t, s, bob, "B high", "", 2*time.Minute, func(t *models.Task) { t.Priority = high })

	got, err := s.Tasks().List(context.Background(), models.TaskFilter{Priority: &high, CreatedBy: &alice.ID}, models.DefaultTaskSort)
	require.NoError(t, err)
	assert.Equal(t, []string{"A high"}, titles(got))

	done := true
	got, err = s.Tasks().List(context.Background(), models.TaskFilter{IsCompleted: &done}, models.DefaultTaskSort)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestTaskRepository_Sorting(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	d1 := base.Add(48 * time.Hour)
	seedTask(t, s, alice, "bravo", "", 0)
	seedTask(t, s, alice, "alpha", "", time.Minute, func(t *models.Task) { t.DueDate = &d1 })
	seedTask(t, s, alice, "charlie", "", 2*time.Minute)

	got, err := s.Tasks().List(context.Background(), models.TaskFilter{}, models.DefaultTaskSort)
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, titles(got))

	got, err = s.Tasks().List(context.Background(), models.TaskFilter{}, models.TaskSort{Field: models.SortTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, titles(got))

	got, err = s.Tasks().List(context.Background(), models.TaskFilter{}, models.TaskSort{Field: models.SortDueDate})
	require.NoError(t, err)
	assert.Equal(t, "alpha", got[0].Title)
}

func TestTaskRepository_SortsEnumsByRank(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	seedTask(t, s, alice, "high", "", 0, func(t *models.Task) {
		t.Priority = models.PriorityHigh
		t.Status = models.StatusCompleted
	})
	seedTask(t, s, alice, "low", "", time.Minute, func(t *models.Task) {
		t.Priority = models.PriorityLow
		t.Status = models.StatusInProgress
	})
	seedTask(t, s, alice, "medium", "", 2*time.Minute)

	got, err := s.Tasks().List(context.Background(), models.TaskFilter{}, models.TaskSort{Field: models.SortPriority})
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "medium", "high"}, titles(got))

	got, err = s.Tasks().List(context.Background(), models.TaskFilter{}, models.TaskSort{Field: models.SortPriority, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "medium", "low"}, titles(got))

	got, err = s.Tasks().List(context.Background(), models.TaskFilter{}, models.TaskSort{Field: models.SortStatus})
	require.NoError(t, err)
	assert.Equal(t, []string{"medium", "low", "high"}, titles(got))
}

func TestTaskRepository_VisibleToAndCounts(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	seedTask(t, s, alice, "mine", "", 0)
	seedTask(t, s, bob, "assigned to alice", "", time.Minute, func(t *models.Task) { t.AssignedTo = &alice.ID })
	seedTask(t, s, bob, "bob only", "", 2*time.Minute)

	n, err := s.Tasks().Count(context.Background(), models.TaskFilter{VisibleTo: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Tasks().Count(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTaskRepository_EmbedsPeople(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	task := seedTask(t, s, alice, "pair up", "", 0, func(t *models.Task) { t.AssignedTo = &bob.ID })

	require.NotNil(t, task.Creator)
	assert.Equal(t, "alice", task.Creator.Name)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "bob@example.com", task.Assignee.Email)
}

func TestTaskRepository_ForeignKeys(t *testing.T) {
	s := NewStore()
	alice := seedUser(t, s, "alice")
	ghost := uuid.NewString()

	_, err := s.Tasks().Create(context.Background(), models.Task{ID: uuid.NewString(), Title: "x", CreatedBy: alice.ID, AssignedTo: &ghost})
	assert.ErrorIs(t, err, apperrors.ErrReference)

	_, err = s.Tasks().Update(context.Background(), models.Task{ID: uuid.NewString(), CreatedBy: alice.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	own := seedTask(t, s, alice, "alice's", "", 0)
	shared := seedTask(t, s, bob, "bob's", "", time.Minute, func(t *models.Task) { t.AssignedTo = &alice.ID })

	require.NoError(t, s.Users().Delete(ctx, alice.ID))

	_, err := s.Tasks().GetByID(ctx, own.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := s.Tasks().GetByID(ctx, shared.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
	assert.Nil(t, got.Assignee)

	assert.ErrorIs(t, s.Users().Delete(ctx, alice.ID), apperrors.ErrNotFound)
}

func TestUserRepository_EmailUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	_, err := s.Users().Create(ctx, models.User{ID: uuid.NewString(), Email: alice.Email})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	bob.Email = alice.Email
	_, err = s.Users().Update(ctx, bob)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserRepository_ListSearch(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")

	got, err := s.Users().List(context.Background(), models.UserFilter{Search: "ALI"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Name)

	ok, err := s.Users().Exists(context.Background(), got[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
