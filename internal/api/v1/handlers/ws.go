package handlers

import (
	"tasktracker/internal/access"
	"tasktracker/internal/middleware"
	myws "tasktracker/internal/websocket"
	"tasktracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// RequireUpgrade rejects plain HTTP requests to the event stream.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// TaskEvents streams task events to the authenticated client until it
// disconnects. Incoming messages are read and discarded.
func TaskEvents(hub *myws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		a, ok := c.Locals(middleware.LocalActor).(access.Actor)
		if !ok || a.ID == "" {
			c.Close()
			return
		}

		client := &myws.Client{Conn: c, UserID: a.ID, Role: a.Role}
		hub.Join(client)
		defer hub.Leave(client)
		logger.SystemLogger.Info("Websocket client connected", zap.String("user_id", a.ID))

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
