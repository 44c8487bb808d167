package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// Add inserts a cart entry. The composite unique index reports ErrDuplicate.
func (r *GORMCartRepository) Add(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Create(item).Error
	return gormError(err, "failed to add product %s to cart", item.ProductID)
}

// Get returns the cart entry of a user for a product.
func (r *GORMCartRepository) Get(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	return r.find(r.db.WithContext(ctx), userID, productID)
}

// Increment raises the quantity of an entry by one.
func (r *GORMCartRepository) Increment(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	var item *models.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", 1))
		if res.Error != nil {
			return gormError(res.Error, "failed to increment cart item %s", productID)
		}
		if res.RowsAffected == 0 {
			return gormError(gorm.ErrRecordNotFound, "cart item %s for user %s", productID, userID)
		}
		var err error
		item, err = r.find(tx, userID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Decrement lowers the quantity of an entry above one, or removes an entry
// whose quantity is one. Both steps are conditional single statements, so
// concurrent decrements never leave a zero-quantity row.
func (r *GORMCartRepository) Decrement(ctx context.Context, userID, productID string) (*models.CartItem, bool, error) {
	db := r.db.WithContext(ctx)
	for range decrementAttempts {
		var item models.CartItem
		res := db.Model(&item).Clauses(clause.Returning{}).
			Where("user_id = ? AND product_id = ? AND quantity > 1", userID, productID).
			Update("quantity", gorm.Expr("quantity - ?", 1))
		if res.Error != nil {
			return nil, false, gormError(res.Error, "failed to decrement cart item %s", productID)
		}
		if res.RowsAffected > 0 {
			return &item, false, nil
		}

		res = db.Where("user_id = ? AND product_id = ? AND quantity <= 1", userID, productID).
			Delete(&models.CartItem{})
		if res.Error != nil {
			return nil, false, gormError(res.Error, "failed to remove cart item %s", productID)
		}
		if res.RowsAffected > 0 {
			return nil, true, nil
		}

		// Neither matched: the entry is gone, or an increment landed in between.
		if _, err := r.find(db, userID, productID); err != nil {
			return nil, false, err
		}
	}
	return nil, false, fmt.Errorf("cart item %s for user %s changed during decrement", productID, userID)
}

// ListByUser returns a user's cart entries, oldest first.
func (r *GORMCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&items).Error
	if err != nil {
		return nil, gormError(err, "failed to get cart of user %s", userID)
	}
	return items, nil
}

// ListAll returns every cart entry, oldest first.
func (r *GORMCartRepository) ListAll(ctx context.Context) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.db.WithContext(ctx).Order("created_at").Find(&items).Error; err != nil {
		return nil, gormError(err, "failed to list cart items")
	}
	return items, nil
}

func (r *GORMCartRepository) find(db *gorm.DB, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := db.First(&item, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return nil, gormError(err, "cart item %s for user %s", productID, userID)
	}
	return &item, nil
}
