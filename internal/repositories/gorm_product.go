package repositories

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create creates a new product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	err := r.db.WithContext(ctx).Create(product).Error
	return gormError(err, "failed to create product")
}

// GetByID retrieves a single product by its ID, whatever its status.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "failed to get product by ID %s", id)
	}
	return &product, nil
}

// ListActive retrieves every product that has not been soft-deleted.
func (r *GORMProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ProductActive).
		Order("created_at").
		Find(&products).Error
	if err != nil {
		return nil, gormError(err, "failed to list products")
	}
	return products, nil
}

// Update writes the mutable fields of an active product and reloads it.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(product).
			Where("status = ?", models.ProductActive).
			Select("name", "price", "description", "category", "image", "mime_type", "tags", "updated_at").
			Updates(product)
		if res.Error != nil {
			return gormError(res.Error, "failed to update product %s", product.ID)
		}
		if res.RowsAffected == 0 {
			return gormError(gorm.ErrRecordNotFound, "product with ID %s not found for update", product.ID)
		}
		return gormError(tx.First(product, "id = ?", product.ID).Error, "failed to reload product %s", product.ID)
	})
}

// SoftDelete marks an active product deleted without removing the row.
func (r *GORMProductRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND status = ?", id, models.ProductActive).
		Updates(map[string]any{
			"status":     models.ProductDeleted,
			"deleted_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return gormError(res.Error, "failed to delete product %s", id)
	}
	if res.RowsAffected == 0 {
		return gormError(gorm.ErrRecordNotFound, "product with ID %s not found for deletion", id)
	}
	return nil
}
