// Package handlers adapts HTTP requests to the service layer and renders the
// results with the shared response envelope.
package handlers

import (
	"tasktracker/internal/access"
	"tasktracker/internal/middleware"
	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errBadBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

// parseBody decodes the JSON body into dst and logs malformed input.
func parseBody(c *fiber.Ctx, dst any, action string) error {
	if err := c.BodyParser(dst); err != nil {
		logger.ErrorLogger.Error("Bad request in "+action, zap.Error(err))
		return errBadBody
	}
	return nil
}

func actor(c *fiber.Ctx) access.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}
