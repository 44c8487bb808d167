package repositories

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(productsCollection)}
}

// Create inserts a product.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, product)
	return mongoError(err, "failed to create product")
}

// GetByID retrieves a product by ID, whatever its status.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, mongoError(err, "failed to get product by ID %s", id)
	}
	return &product, nil
}

// ListActive returns products that have not been soft-deleted.
func (r *MongoProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.coll, bson.M{"status": models.ProductActive}, "products")
}

// Update writes the mutable fields of an active product and returns the result in product.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	tags := product.Tags
	if tags == nil {
		tags = []string{}
	}
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"price":       product.Price,
		"description": product.Description,
		"category":    product.Category,
		"image":       product.Image,
		"mimeType":    product.MimeType,
		"tags":        tags,
		"updatedAt":   time.Now().UTC(),
	}}
	filter := bson.M{"_id": product.ID, "status": models.ProductActive}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(product)
	return mongoError(err, "product with ID %s not updated", product.ID)
}

// SoftDelete marks an active product deleted.
func (r *MongoProductRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	filter := bson.M{"_id": id, "status": models.ProductActive}
	update := bson.M{"$set": bson.M{
		"status":    models.ProductDeleted,
		"deletedAt": at.UTC(),
		"updatedAt": at.UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mongoError(err, "failed to delete product %s", id)
	}
	if res.MatchedCount == 0 {
		return mongoError(mongo.ErrNoDocuments, "product with ID %s not found for deletion", id)
	}
	return nil
}
