package services

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Order event routing keys.
const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is the message published on order lifecycle changes.
type OrderEvent struct {
	Event       string             `json:"event"`
	OrderID     string             `json:"orderId"`
	UserID      string             `json:"userId"`
	Status      string             `json:"status"`
	TotalAmount float64            `json:"totalAmount"`
	Items       []models.OrderItem `json:"items,omitempty"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// Publisher delivers order events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// OrderLine is one requested product and quantity.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	publisher Publisher
	logger    *slog.Logger
}

// NewOrderService creates a new OrderService. A nil publisher disables events.
func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, publisher Publisher, logger *slog.Logger) *OrderService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

// Create places a pending order for the user. Prices are copied from the
// catalog at the time of the order.
func (s *OrderService) Create(ctx context.Context, userID string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, apperror.NewInvalidInput("At least one item is required")
	}

	var totalAmount float64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperror.NewInvalidInput("Quantity must be at least 1")
		}
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, storeError(err, "Product not found", "Order creation failed")
		}
		if product.IsDeleted() {
			return nil, apperror.NewNotFound("Product not found")
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		totalAmount += product.Price * float64(line.Quantity)
	}

	order := &models.Order{
		UserID:      userID,
		Items:       items,
		TotalAmount: totalAmount,
		Status:      models.OrderPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperror.NewInternal("Order creation failed", err)
	}

	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

// Cancel cancels a pending order owned by the user. Orders of other users
// are reported as not found.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled {
		return nil, apperror.NewConflict("Order already cancelled")
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderCancelled); err != nil {
		return nil, storeError(err, "Order not found", "Order cancellation failed")
	}
	order.Status = models.OrderCancelled
	order.UpdatedAt = time.Now().UTC()

	s.publish(ctx, EventOrderCancelled, order)
	return order, nil
}

// Get returns an order owned by the user.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "Order not found", "Order fetch failed")
	}
	if order.UserID != userID {
		return nil, apperror.NewNotFound("Order not found")
	}
	return order, nil
}

// ListByUser returns the orders of the user.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("Order fetch failed", err)
	}
	return orders, nil
}

// publish sends an order event. A broker failure does not fail the request;
// the order is already stored.
func (s *OrderService) publish(ctx context.Context, event string, order *models.Order) {
	msg := OrderEvent{
		Event:       event,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order event", "event", event, "order_id", order.ID, "error", err)
		return
	}
	s.logger.DebugContext(ctx, "published order event", "event", event, "order_id", order.ID)
}
