package middleware

import (
	"log/slog"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// claimsLocalKey is the fiber.Ctx Locals key holding *auth.Claims.
const claimsLocalKey = "claims"

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// m may be nil.
func AuthRequired(verifier TokenVerifier, logger *slog.Logger, m *metrics.Metrics) fiber.Handler {
	reject := func(c *fiber.Ctx, reason, message string, err error) error {
		if m != nil {
			m.AuthFailuresTotal.WithLabelValues(reason).Inc()
		}
		logger.DebugContext(c.UserContext(), "request rejected", "reason", reason, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": message,
		})
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return reject(c, "missing_header", "Authorization header is required", nil)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return reject(c, "malformed_header", "Authorization header format must be 'Bearer <token>'", nil)
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			return reject(c, "invalid_token", "Invalid or expired token", err)
		}

		c.Locals(claimsLocalKey, claims)
		c.SetUserContext(auth.WithClaims(c.UserContext(), claims))
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(claimsLocalKey).(*auth.Claims)
	return claims, ok && claims != nil
}
