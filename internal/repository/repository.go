package repository

import (
	"context"

	"tasktracker/internal/models"
)

// UserRepository is the user directory.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository stores tasks. Reads embed creator and assignee summaries.
type TaskRepository interface {
	Create(ctx context.Context, task models.Task) (models.Task, error)
	GetByID(ctx context.Context, id string) (models.Task, error)
	List(ctx context.Context, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error)
	Count(ctx context.Context, filter models.TaskFilter) (int, error)
	// Update overwrites every mutable column of the stored row.
	Update(ctx context.Context, task models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ UserRepository = (*PostgresUserRepository)(nil)
	_ TaskRepository = (*PostgresTaskRepository)(nil)
)
