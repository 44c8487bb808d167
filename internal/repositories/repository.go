package repositories

import (
	"context"
	"errors"
	"time"

	"storefront/internal/models"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
}

// ProductRepository defines the interface for product data access.
// GetByID returns products regardless of their status; ListActive excludes
// soft-deleted products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	// Update replaces the mutable fields of an active product.
	Update(ctx context.Context, product *models.Product) error
	// SoftDelete marks an active product deleted.
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// decrementAttempts bounds the retries of a cart decrement whose entry changed
// between the conditional update and the conditional delete.
const decrementAttempts = 3

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	Add(ctx context.Context, item *models.CartItem) error
	Get(ctx context.Context, userID, productID string) (*models.CartItem, error)
	Increment(ctx context.Context, userID, productID string) (*models.CartItem, error)
	// Decrement lowers the quantity by one. When the quantity would reach
	// zero the entry is removed and (nil, true, nil) is returned.
	Decrement(ctx context.Context, userID, productID string) (item *models.CartItem, removed bool, err error)
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	ListAll(ctx context.Context) ([]models.CartItem, error)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
