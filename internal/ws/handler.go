package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Handler upgrades the connection and subscribes it to the camera named by
// the camera_id query parameter, or to every camera when absent.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		cameraID, ok := c.Locals("camera_id").(uuid.UUID)
		if !ok {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:      hub,
			conn:     c,
			cameraID: cameraID,
			send:     make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		cameraID := uuid.Nil
		if raw := c.Query("camera_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid camera_id")
			}
			cameraID = id
		}

		c.Locals("camera_id", cameraID)
		return c.Next()
	}
}
