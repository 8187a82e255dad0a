package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return models.User{}, apperrors.Conflict("Email already exists")
	}
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, apperrors.NotFound("User not found")
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperrors.NotFound("User not found")
}

func (r *UserRepository) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[id]
	return ok, nil
}

func (r *UserRepository) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	out := []models.User{}
	for _, u := range r.s.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, user models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return models.User{}, apperrors.NotFound("User not found")
	}
	if r.emailTaken(user.Email, user.ID) {
		return models.User{}, apperrors.Conflict("Email already exists")
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.s.users[user.ID] = user
	return user, nil
}

// Delete removes the user, the tasks they created, and their assignments.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperrors.NotFound("User not found")
	}
	delete(r.s.users, id)
	for tid, t := range r.s.tasks {
		switch {
		case t.CreatedBy == id:
			delete(r.s.tasks, tid)
		case t.IsAssignedTo(id):
			t.AssignedTo = nil
			r.s.tasks[tid] = t
		}
	}
	return nil
}

// emailTaken reports whether another user already uses email. Callers hold the lock.
func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for _, u := range r.s.users {
		if u.ID != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
