package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/audit"
)

// AuditOrigin stores the caller address and user agent in the request
// context so audit events written further down can record them.
func AuditOrigin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithOrigin(c.UserContext(), c.IP(), c.Get(fiber.HeaderUserAgent)))
		return c.Next()
	}
}
