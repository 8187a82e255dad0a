package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

const userColumns = "id, name, email, password, role, is_active, created_at, updated_at"

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Role = models.Role(role)
	return u, err
}

func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, password, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, translateUserError(err)
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return models.User{}, translateUserError(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		return models.User{}, translateUserError(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		query += " WHERE (name ILIKE $1 OR email ILIKE $1)"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET name = $1, email = $2, password = $3, role = $4, is_active = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING `+userColumns,
		user.Name, user.Email, user.PasswordHash, string(user.Role), user.IsActive, user.ID,
	)
	updated, err := scanUser(row)
	if err != nil {
		return models.User{}, translateUserError(err)
	}
	return updated, nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return translateUserError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

func translateUserError(err error) error {
	if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
		return apperrors.NotFound("User not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return apperrors.Conflict("Email already exists")
	}
	return fmt.Errorf("users: %w", err)
}

// isInvalidUUID catches ids that postgres cannot cast to uuid; they cannot
// match any row.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidText
}
