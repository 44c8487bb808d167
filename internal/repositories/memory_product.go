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

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, ok := r.products[product.ID]; ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// GetByID returns a product by its ID, including soft-deleted ones.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	product = cloneProduct(product)
	return &product, nil
}

// ListActive returns products that are not soft-deleted, oldest first.
func (r *MemoryProductRepository) ListActive(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.IsDeleted() {
			continue
		}
		productList = append(productList, cloneProduct(p))
	}
	slices.SortFunc(productList, func(a, b models.Product) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return productList, nil
}

// Update modifies an existing active product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok || existing.IsDeleted() {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	existing.Name = product.Name
	existing.Price = product.Price
	existing.Description = product.Description
	existing.Category = product.Category
	existing.Image = product.Image
	existing.MimeType = product.MimeType
	existing.Tags = slices.Clone(product.Tags)
	existing.UpdatedAt = time.Now()
	r.products[product.ID] = existing
	*product = cloneProduct(existing)
	return nil
}

// SoftDelete marks an active product deleted.
func (r *MemoryProductRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.IsDeleted() {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	product.MarkDeleted(at)
	product.UpdatedAt = at
	r.products[id] = product
	return nil
}

func cloneProduct(p models.Product) models.Product {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
