package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	coll *mongo.Collection
}

// NewMongoCartRepository creates a new instance of MongoCartRepository.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{coll: db.Collection(cartCollection)}
}

func cartFilter(userID, productID string) bson.M {
	return bson.M{"userId": userID, "productId": productID}
}

// Add inserts a cart entry. The unique (userId, productId) index reports ErrDuplicate.
func (r *MongoCartRepository) Add(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, item)
	return mongoError(err, "failed to add product %s to cart", item.ProductID)
}

// Get returns the cart entry of a user for a product.
func (r *MongoCartRepository) Get(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.coll.FindOne(ctx, cartFilter(userID, productID)).Decode(&item); err != nil {
		return nil, mongoError(err, "cart item %s for user %s", productID, userID)
	}
	return &item, nil
}

// Increment raises the quantity of an entry by one.
func (r *MongoCartRepository) Increment(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	update := bson.M{
		"$inc": bson.M{"quantity": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, cartFilter(userID, productID), update, opts).Decode(&item); err != nil {
		return nil, mongoError(err, "cart item %s for user %s", productID, userID)
	}
	return &item, nil
}

// Decrement lowers the quantity of an entry above one, or removes an entry
// whose quantity is one. Each step is a single conditional document operation.
func (r *MongoCartRepository) Decrement(ctx context.Context, userID, productID string) (*models.CartItem, bool, error) {
	above := cartFilter(userID, productID)
	above["quantity"] = bson.M{"$gt": 1}
	last := cartFilter(userID, productID)
	last["quantity"] = bson.M{"$lte": 1}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for range decrementAttempts {
		update := bson.M{
			"$inc": bson.M{"quantity": -1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
		var item models.CartItem
		err := r.coll.FindOneAndUpdate(ctx, above, update, opts).Decode(&item)
		if err == nil {
			return &item, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, mongoError(err, "failed to decrement cart item %s", productID)
		}

		res, err := r.coll.DeleteOne(ctx, last)
		if err != nil {
			return nil, false, mongoError(err, "failed to remove cart item %s", productID)
		}
		if res.DeletedCount > 0 {
			return nil, true, nil
		}

		// Neither matched: the entry is gone, or an increment landed in between.
		n, err := r.coll.CountDocuments(ctx, cartFilter(userID, productID))
		if err != nil {
			return nil, false, mongoError(err, "failed to get cart item %s", productID)
		}
		if n == 0 {
			return nil, false, mongoError(mongo.ErrNoDocuments, "cart item %s for user %s", productID, userID)
		}
	}
	return nil, false, fmt.Errorf("cart item %s for user %s changed during decrement", productID, userID)
}

// ListByUser returns a user's cart entries, oldest first.
func (r *MongoCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	return findAll[models.CartItem](ctx, r.coll, bson.M{"userId": userID}, "cart items")
}

// ListAll returns every cart entry, oldest first.
func (r *MongoCartRepository) ListAll(ctx context.Context) ([]models.CartItem, error) {
	return findAll[models.CartItem](ctx, r.coll, bson.M{}, "cart items")
}
