package middleware

import (
	"context"
	"errors"
	"strings"

	"tasktracker/internal/access"
	"tasktracker/internal/api/response"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// LocalActor holds the access.Actor of an authenticated request.
const LocalActor = "actor"

// UserLoader resolves the account behind a token.
type UserLoader interface {
	Get(ctx context.Context, id string) (models.User, error)
}

// RequireAuth validates the bearer token and loads the live account, so a
// deactivated or deleted user is locked out before the token expires.
// Websocket upgrades may pass the token as the "token" query parameter.
func RequireAuth(tokens *token.Manager, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c)
		if err != nil {
			return deny(c, err)
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			if errors.Is(err, token.ErrExpiredToken) {
				return deny(c, apperrors.Unauthorized("Token expired"))
			}
			return deny(c, apperrors.Unauthorized("Invalid token"))
		}

		user, err := users.Get(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return deny(c, apperrors.Unauthorized("User no longer exists"))
			}
			return response.Error(c, err)
		}
		if !user.IsActive {
			return deny(c, apperrors.Unauthorized("User account is deactivated"))
		}

		// role diambil dari database, bukan dari token
		actor := access.Actor{ID: user.ID, Role: user.Role}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(c *fiber.Ctx) error {
	actor, ok := ActorFrom(c)
	if !ok || !actor.IsAdmin() {
		logger.SecurityLogger.Warn("Admin route denied",
			zap.String("user_id", actor.ID),
			zap.String("url", c.OriginalURL()),
		)
		return response.Error(c, apperrors.Forbidden("User role %s is not authorized to access this route", roleName(actor)))
	}
	return c.Next()
}

// ActorFrom returns the actor RequireAuth stored on the request.
func ActorFrom(c *fiber.Ctx) (access.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(access.Actor)
	return actor, ok
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c) && c.Query("token") != "" {
			return c.Query("token"), nil
		}
		return "", apperrors.Unauthorized("No token provided")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", apperrors.Unauthorized("Invalid token format")
	}
	return parts[1], nil
}

func deny(c *fiber.Ctx, err error) error {
	logger.SecurityLogger.Warn("Authentication failed",
		zap.String("reason", err.Error()),
		zap.String("ip", c.IP()),
		zap.String("url", c.OriginalURL()),
	)
	return response.Error(c, err)
}

func roleName(actor access.Actor) string {
	if actor.Role == "" {
		return "anonymous"
	}
	return string(actor.Role)
}
