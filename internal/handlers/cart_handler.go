package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type cartAddRequest struct {
	ProductID string `json:"productId" form:"productId" validate:"required"`
	Quantity  int    `json:"quantity" form:"quantity" validate:"gte=0"`
}

type cartItemRequest struct {
	ProductID string `json:"productId" form:"productId" validate:"required"`
}

// CartHandler handles HTTP requests for the shopping cart. The cart owner
// is always the authenticated user.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the cart routes. All of them require a token.
func (h *CartHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	cartRoutes := router.Group("/cart", requireAuth)
	cartRoutes.Post("/add", h.HandleAdd)
	cartRoutes.Post("/update", h.HandleIncrement)
	cartRoutes.Post("/delete", h.HandleDecrement)
	cartRoutes.Get("/", h.HandleGet)
	cartRoutes.Get("/list", h.HandleList)
}

// HandleAdd puts a product into the caller's cart.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	var req cartAddRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, cartItemRequest{ProductID: req.ProductID}, "Product id is required"); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "Quantity must not be negative"); err != nil {
		return err
	}

	item, err := h.service.Add(c.UserContext(), claims.ID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product added to cart successfully",
		"data":    item,
	})
}

// HandleIncrement raises the quantity of a cart entry by one.
func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	userID, productID, err := h.parseItem(c)
	if err != nil {
		return err
	}

	item, err := h.service.Increment(c.UserContext(), userID, productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Quantity increased successfully",
		"data":    item,
	})
}

// HandleDecrement lowers the quantity of a cart entry by one, removing the
// entry when it reaches zero.
func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	userID, productID, err := h.parseItem(c)
	if err != nil {
		return err
	}

	item, removed, err := h.service.Decrement(c.UserContext(), userID, productID)
	if err != nil {
		return err
	}
	if removed {
		return c.JSON(fiber.Map{
			"message": "Product removed from cart successfully",
			"data":    nil,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Quantity decreased successfully",
		"data":    item,
	})
}

// HandleGet returns the caller's cart.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListByUser(c.UserContext(), claims.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Cart retrieved successfully",
		"data":    items,
	})
}

// HandleList returns the cart entries of every user.
func (h *CartHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "All items fetched from cart successfully",
		"data":    items,
	})
}

func (h *CartHandler) parseItem(c *fiber.Ctx) (userID, productID string, err error) {
	claims, err := currentUser(c)
	if err != nil {
		return "", "", err
	}
	var req cartItemRequest
	if err := parseBody(c, &req); err != nil {
		return "", "", err
	}
	if err := validateStruct(h.validate, req, "Product id is required"); err != nil {
		return "", "", err
	}
	return claims.ID, req.ProductID, nil
}
