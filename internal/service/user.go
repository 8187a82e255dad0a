package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/access"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/cache"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/internal/validation"
	"tasktracker/pkg/crypto"
	"tasktracker/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool       `json:"isActive"`
}

// UpdateUserInput carries the fields an admin may change. Nil fields are kept.
type UpdateUserInput struct {
	Name     *string      `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string      `json:"email" validate:"omitempty,email"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool        `json:"isActive"`
}

type UserService struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	cache cache.Cache
	now   func() time.Time
}

func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, c cache.Cache) *UserService {
	if c == nil {
		c = cache.Nop{}
	}
	return &UserService{users: users, tasks: tasks, cache: c, now: utcNow}
}

func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.users.List(ctx, filter)
}

// Get returns the user without the password hash.
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if s.cache.Get(ctx, cache.UserKey(id), &user) {
		return user, nil
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	s.cache.Set(ctx, cache.UserKey(id), user)
	return user, nil
}

func (s *UserService) Exists(ctx context.Context, id string) (bool, error) {
	return s.users.Exists(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	hashed, err := crypto.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	created.PasswordHash = ""
	logger.AuditLogger.Info("User created", zap.String("user_id", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (models.User, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	saved, err := s.users.Update(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	saved.PasswordHash = ""
	// cached tasks embed the old name and email
	s.forget(ctx, id)
	logger.AuditLogger.Info("User updated", zap.String("user_id", id))
	return saved, nil
}

// Delete removes a user together with the tasks they created. Admins cannot
// delete their own account.
func (s *UserService) Delete(ctx context.Context, actor access.Actor, id string) error {
	if actor.ID == id {
		return apperrors.Forbidden("You cannot delete your own account")
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	// collect the affected task keys before the cascade removes them
	keys := s.taskKeys(ctx, id)
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, append(keys, cache.UserKey(id))...)
	logger.AuditLogger.Info("User deleted", zap.String("user_id", id), zap.String("by", actor.ID))
	return nil
}

func (s *UserService) forget(ctx context.Context, id string) {
	s.cache.Delete(ctx, append(s.taskKeys(ctx, id), cache.UserKey(id))...)
}

func (s *UserService) taskKeys(ctx context.Context, userID string) []string {
	tasks, err := s.tasks.List(ctx, models.TaskFilter{VisibleTo: userID}, models.DefaultTaskSort)
	if err != nil {
		logger.ErrorLogger.Error("Error listing tasks for cache invalidation", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	keys := make([]string, 0, len(tasks))
	for _, t := range tasks {
		keys = append(keys, cache.TaskKey(t.ID))
	}
	return keys
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
