package middleware

import (
	"storefront/internal/requestid"

	"github.com/gofiber/fiber/v2"
)

// RequestID propagates the X-Request-ID header, generating one when absent,
// and attaches it to the request context for logging.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestid.Header)
		if id == "" {
			id = requestid.New()
		}
		c.Set(requestid.Header, id)
		c.Locals("requestid", id)
		c.SetUserContext(requestid.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
