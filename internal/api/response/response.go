// Package response writes the JSON envelope every API endpoint answers with:
// {success, status, message, data, count, errors}.
package response

import (
	"errors"

	"tasktracker/internal/apperrors"
	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func Success(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{
		"message": message,
		"success": true,
		"status":  status,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// List is Success with the number of items alongside.
func List[T any](c *fiber.Ctx, message string, items []T) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		"success": true,
		"status":  fiber.StatusOK,
		"count":   len(items),
		"data":    items,
	})
}

// Status maps an error onto an HTTP status and a message safe to show clients.
func Status(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, apperrors.ErrReference):
		return fiber.StatusUnprocessableEntity, apperrors.PublicMessage(err, "Referenced entity not found")
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound, apperrors.PublicMessage(err, "Not found")
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden, apperrors.PublicMessage(err, "Forbidden")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized, apperrors.PublicMessage(err, "Unauthorized")
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict, apperrors.PublicMessage(err, "Conflict")
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

func Error(c *fiber.Ctx, err error) error {
	status, message := Status(err)
	body := fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.Fields
	}
	if status == fiber.StatusInternalServerError {
		logger.ErrorLogger.Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(body)
}

// Handler is a fiber ErrorHandler that renders errors as envelopes.
func Handler(c *fiber.Ctx, err error) error {
	return Error(c, err)
}
