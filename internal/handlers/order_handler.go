package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type cancelOrderRequest struct {
	ID string `json:"id" form:"id" validate:"required"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes. All of them require a token.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	orderRoutes := router.Group("/order", requireAuth)
	orderRoutes.Post("/create", h.HandleCreate)
	orderRoutes.Post("/cancel", h.HandleCancel)
	orderRoutes.Get("/", h.HandleGet)
}

// HandleCreate places an order for the caller.
func (h *OrderHandler) HandleCreate(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "At least one item with product id and quantity is required"); err != nil {
		return err
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := h.service.Create(c.UserContext(), claims.ID, lines)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"data":    order,
	})
}

// HandleCancel cancels one of the caller's orders.
func (h *OrderHandler) HandleCancel(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	var req cancelOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "Order id is required"); err != nil {
		return err
	}

	order, err := h.service.Cancel(c.UserContext(), claims.ID, req.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
		"data":    order,
	})
}

// HandleGet returns the order given by the id query parameter, or all of
// the caller's orders without it.
func (h *OrderHandler) HandleGet(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	if id := c.Query("id"); id != "" {
		order, err := h.service.Get(c.UserContext(), claims.ID, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Order fetched successfully",
			"data":    order,
		})
	}

	orders, err := h.service.ListByUser(c.UserContext(), claims.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Orders fetched successfully",
		"data":    orders,
	})
}
