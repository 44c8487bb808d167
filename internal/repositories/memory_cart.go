package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type cartKey struct {
	userID    string
	productID string
}

// MemoryCartRepository is an in-memory implementation of CartRepository.
type MemoryCartRepository struct {
	items map[cartKey]models.CartItem
	mu    sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		items: make(map[cartKey]models.CartItem),
	}
}

// Add inserts a cart entry; the (user, product) pair must be new.
func (r *MemoryCartRepository) Add(_ context.Context, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{item.UserID, item.ProductID}
	if _, ok := r.items[key]; ok {
		return fmt.Errorf("cart item %s for user %s: %w", item.ProductID, item.UserID, ErrDuplicate)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.items[key] = *item
	return nil
}

// Get returns the cart entry of a user for a product.
func (r *MemoryCartRepository) Get(_ context.Context, userID, productID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[cartKey{userID, productID}]
	if !ok {
		return nil, fmt.Errorf("cart item %s for user %s: %w", productID, userID, ErrNotFound)
	}
	return &item, nil
}

// Increment raises the quantity of an entry by one.
func (r *MemoryCartRepository) Increment(_ context.Context, userID, productID string) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID}
	item, ok := r.items[key]
	if !ok {
		return nil, fmt.Errorf("cart item %s for user %s: %w", productID, userID, ErrNotFound)
	}
	item.Quantity++
	item.UpdatedAt = time.Now()
	r.items[key] = item
	return &item, nil
}

// Decrement lowers the quantity of an entry by one, removing it at zero.
func (r *MemoryCartRepository) Decrement(_ context.Context, userID, productID string) (*models.CartItem, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID}
	item, ok := r.items[key]
	if !ok {
		return nil, false, fmt.Errorf("cart item %s for user %s: %w", productID, userID, ErrNotFound)
	}
	if item.Quantity <= 1 {
		delete(r.items, key)
		return nil, true, nil
	}
	item.Quantity--
	item.UpdatedAt = time.Now()
	r.items[key] = item
	return &item, false, nil
}

// ListByUser returns a user's cart entries, oldest first.
func (r *MemoryCartRepository) ListByUser(_ context.Context, userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(item models.CartItem) bool { return item.UserID == userID }), nil
}

// ListAll returns every cart entry, oldest first.
func (r *MemoryCartRepository) ListAll(_ context.Context) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(models.CartItem) bool { return true }), nil
}

func (r *MemoryCartRepository) collect(keep func(models.CartItem) bool) []models.CartItem {
	itemList := make([]models.CartItem, 0)
	for _, item := range r.items {
		if keep(item) {
			itemList = append(itemList, item)
		}
	}
	slices.SortFunc(itemList, func(a, b models.CartItem) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return itemList
}
