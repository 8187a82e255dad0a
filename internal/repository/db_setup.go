package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
	"tasktracker/pkg/crypto"
	"tasktracker/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    role VARCHAR(16) NOT NULL DEFAULT 'user',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    description TEXT,
    status VARCHAR(16) NOT NULL DEFAULT 'pending',
    priority VARCHAR(16) NOT NULL DEFAULT 'medium',
    due_date TIMESTAMPTZ,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMPTZ,
    created_by UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    assigned_to UUID REFERENCES users (id) ON DELETE SET NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS tasks_created_by_idx ON tasks (created_by);
CREATE INDEX IF NOT EXISTS tasks_assigned_to_idx ON tasks (assigned_to);
`

// CreateTablesIfNotExist applies the schema. It is safe to run on every boot.
func CreateTablesIfNotExist(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	logger.SystemLogger.Info("Tables 'users', 'tasks' are ready")
	return nil
}

// DeleteAllTables drops the schema. Integration tests call it on teardown.
func DeleteAllTables(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS tasks; DROP TABLE IF EXISTS users;`); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// CreateAdminUser seeds an admin account unless the email is already taken.
func CreateAdminUser(ctx context.Context, users UserRepository, name, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := users.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, err
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash admin password: %w", err)
	}
	now := time.Now().UTC()
	admin, err := users.Create(ctx, models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return models.User{}, err
	}
	logger.AuditLogger.Info("Admin user created", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
	return admin, nil
}
