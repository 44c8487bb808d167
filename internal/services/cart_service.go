package services

import (
	"context"
	"errors"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService manages per-user shopping carts.
type CartService struct {
	cart     repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cart repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{
		cart:     cart,
		products: products,
	}
}

// Add puts an active product into the user's cart. A quantity below one is
// stored as one. Adding a product twice yields a Conflict.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "Product not found", "Failed to add product to cart")
	}
	if product.IsDeleted() {
		return nil, apperror.NewNotFound("Product not found")
	}

	if quantity < 1 {
		quantity = 1
	}
	item := &models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  quantity,
	}
	if err := s.cart.Add(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.NewConflict("Product already exists in cart")
		}
		return nil, apperror.NewInternal("Failed to add product to cart", err)
	}
	return item, nil
}

// Increment raises the quantity of a cart entry by exactly one.
func (s *CartService) Increment(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	item, err := s.cart.Increment(ctx, userID, productID)
	if err != nil {
		return nil, storeError(err, "Product not found in cart", "Failed to update cart")
	}
	return item, nil
}

// Decrement lowers the quantity of a cart entry by one. When the quantity
// reaches zero the entry is removed and removed is true.
func (s *CartService) Decrement(ctx context.Context, userID, productID string) (item *models.CartItem, removed bool, err error) {
	item, removed, err = s.cart.Decrement(ctx, userID, productID)
	if err != nil {
		return nil, false, storeError(err, "Product not found in cart", "Failed to update cart")
	}
	return item, removed, nil
}

// ListByUser returns the entries in the user's cart.
func (s *CartService) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch cart", err)
	}
	return items, nil
}

// ListAll returns every cart entry of every user.
func (s *CartService) ListAll(ctx context.Context) ([]models.CartItem, error) {
	items, err := s.cart.ListAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch cart", err)
	}
	return items, nil
}
