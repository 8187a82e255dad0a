package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/cache"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/internal/validation"
	"tasktracker/pkg/crypto"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService struct {
	users    repository.UserRepository
	profiles *UserService
	tokens   *token.Manager
	cache    cache.Cache
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, profiles *UserService, tokens *token.Manager, c cache.Cache) *AuthService {
	if c == nil {
		c = cache.Nop{}
	}
	return &AuthService{users: users, profiles: profiles, tokens: tokens, cache: c, now: utcNow}
}

// Register creates an active account with the user role and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}

	hashed, err := crypto.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user, err := s.users.Create(ctx, models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return AuthResult{}, apperrors.Conflict("User already exists with this email")
		}
		return AuthResult{}, err
	}
	logger.AuditLogger.Info("User registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.SecurityLogger.Warn("Login with unknown email", zap.String("email", in.Email))
			return AuthResult{}, apperrors.Unauthorized("Invalid credentials")
		}
		return AuthResult{}, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, in.Password); err != nil {
		logger.SecurityLogger.Warn("Login with wrong password", zap.String("user_id", user.ID))
		return AuthResult{}, apperrors.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		logger.SecurityLogger.Warn("Login to deactivated account", zap.String("user_id", user.ID))
		return AuthResult{}, apperrors.Unauthorized("Account is deactivated")
	}
	logger.AuditLogger.Info("User logged in", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	return s.profiles.Get(ctx, userID)
}

// UpdateProfile lets a user change their own name and email.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (models.User, error) {
	return s.profiles.Update(ctx, userID, UpdateUserInput{Name: in.Name, Email: in.Email})
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := crypto.CheckPassword(user.PasswordHash, in.CurrentPassword); err != nil {
		logger.SecurityLogger.Warn("Password change with wrong current password", zap.String("user_id", userID))
		return apperrors.Unauthorized("Current password is incorrect")
	}
	hashed, err := crypto.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hashed
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.cache.Delete(ctx, cache.UserKey(userID))
	logger.AuditLogger.Info("Password changed", zap.String("user_id", userID))
	return nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	signed, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}
	user.PasswordHash = ""
	return AuthResult{User: user, Token: signed}, nil
}
