package handlers

import "github.com/gofiber/fiber/v2"

// AuthHandler confirms that a bearer token is valid.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Post("/auth", requireAuth, h.HandleCheck)
}

func (h *AuthHandler) HandleCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Authentication successful!",
	})
}
