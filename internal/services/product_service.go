package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/storage"

	"golang.org/x/sync/singleflight"
)

// ProductInput holds the catalog fields supplied by a client.
type ProductInput struct {
	Name        string
	Price       float64
	Description string
	Category    string
	// Image is an image reference used when no file is uploaded.
	Image string
	Tags  []string
}

// ImageUpload is an uploaded image file.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// listKey names the singleflight call that fills the active product list.
const listKey = "products:active"

// ProductService manages the catalog. The list of active products is served
// cache-aside; writes invalidate it.
type ProductService struct {
	products repositories.ProductRepository
	cache    cache.ProductListCache
	images   storage.ImageStore
	logger   *slog.Logger
	now      func() time.Time
	sfGroup  singleflight.Group

	// fillMu orders cache fills against invalidations. generation counts
	// invalidations; a fill only writes the cache if it did not change
	// since the fill read the store.
	fillMu     sync.Mutex
	generation uint64
}

// NewProductService creates a new ProductService. A nil cache disables caching.
func NewProductService(products repositories.ProductRepository, c cache.ProductListCache, images storage.ImageStore, logger *slog.Logger) *ProductService {
	if c == nil {
		c = cache.NopCache{}
	}
	return &ProductService{
		products: products,
		cache:    c,
		images:   images,
		logger:   logger,
		now:      time.Now,
	}
}

// Add creates an active product. The uploaded image, if any, takes
// precedence over in.Image.
func (s *ProductService) Add(ctx context.Context, in ProductInput, upload *ImageUpload) (*models.Product, error) {
	product := &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
		MimeType:    models.DefaultMimeType,
		Tags:        normalizeTags(in.Tags),
		Status:      models.ProductActive,
	}
	if err := s.attachImage(ctx, product, upload); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperror.NewInternal("Product creation failed", err)
	}
	s.invalidate(ctx)
	return product, nil
}

// Update replaces the catalog fields of an active product. Without a new
// image the stored one is kept.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput, upload *ImageUpload) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Product not found", "Product update failed")
	}
	if product.IsDeleted() {
		return nil, apperror.NewNotFound("Product not found")
	}

	product.Name = in.Name
	product.Price = in.Price
	product.Description = in.Description
	product.Category = in.Category
	product.Tags = normalizeTags(in.Tags)
	if in.Image != "" {
		product.Image = in.Image
	}
	if err := s.attachImage(ctx, product, upload); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, storeError(err, "Product not found", "Product update failed")
	}
	s.invalidate(ctx)
	return product, nil
}

// Delete soft-deletes a product. It stays retrievable by ID but is no
// longer listed.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return storeError(err, "Product not found", "Product deletion failed")
	}
	s.invalidate(ctx)
	return nil
}

// ListActive returns the products that are not deleted.
// Concurrent cache misses share one store query.
func (s *ProductService) ListActive(ctx context.Context) ([]models.Product, error) {
	cached, found, err := s.cache.GetList(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "product cache read failed", "error", err)
	}
	if found {
		return cached, nil
	}

	val, err, _ := s.sfGroup.Do(listKey, func() (any, error) {
		gen := s.currentGeneration()
		products, err := s.products.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, gen, products)
		return products, nil
	})
	if err != nil {
		return nil, apperror.NewInternal("Products fetch failed", err)
	}
	return val.([]models.Product), nil
}

func (s *ProductService) attachImage(ctx context.Context, product *models.Product, upload *ImageUpload) error {
	if upload == nil {
		return nil
	}
	if s.images == nil {
		return apperror.NewInvalidInput("Image uploads are not supported")
	}

	img, err := s.images.Save(ctx, upload.Filename, upload.Body)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return apperror.NewInvalidInput("Image must be an image file")
		}
		return apperror.NewInternal("Image upload failed", err)
	}
	product.Image = img.Ref
	product.MimeType = img.MimeType
	return nil
}

func (s *ProductService) currentGeneration() uint64 {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	return s.generation
}

// fill caches products read at generation gen, unless a write has
// invalidated the list since.
func (s *ProductService) fill(ctx context.Context, gen uint64, products []models.Product) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	if s.generation != gen {
		return
	}
	if err := s.cache.SetList(ctx, products); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed", "error", err)
	}
}

// invalidate drops the cached list after a write. Fills already in flight
// neither reach the cache nor are shared with later readers.
func (s *ProductService) invalidate(ctx context.Context) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	s.generation++
	s.sfGroup.Forget(listKey)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed", "error", err)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
