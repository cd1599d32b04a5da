package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RayID assigns a unique request ID to every incoming request, storing it in
// the context locals and echoing it in the X-Ray-ID response header so logs
// for a request can be correlated.
func RayID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get("X-Ray-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set("X-Ray-ID", rid)
		return c.Next()
	}
}
