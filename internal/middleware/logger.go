package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"tasktracker/internal/api/response"
	"tasktracker/internal/apperrors"
	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler recovers from panics and writes one request log line per call.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("Recovered from panic: %v", r)
				stack := string(debug.Stack())
				logger.ErrorLogger.Error(errMsg, zap.String("stack", stack))
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}
			// Logging request masuk
			logger.RequestLogger.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.IP()),
			)
		}()
		if err := c.Next(); err != nil {
			return response.Error(c, err)
		}
		return nil
	}
}

// NotFound answers any route nothing else matched.
func NotFound(c *fiber.Ctx) error {
	return response.Error(c, apperrors.NotFound("Route %s not found", c.OriginalURL()))
}
