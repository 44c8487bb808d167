package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_Add(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	service := services.NewProductService(mockRepo, mockCache, nil, logging.Discard())

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockCache.On("Invalidate", ctx).Return(nil).Once()

	product, err := service.Add(ctx, services.ProductInput{Name: "Lamp", Price: 12.5, Description: "Desk lamp", Category: "home"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProductActive, product.Status)
	assert.Equal(t, models.DefaultMimeType, product.MimeType)
	assert.NotNil(t, product.Tags)
	assert.Empty(t, product.Tags)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_Add_WithUpload(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	images := new(MockImageStore)
	service := services.NewProductService(mockRepo, nil, images, logging.Discard())

	body := strings.NewReader("png bytes")
	images.On("Save", ctx, "lamp.png", body).Return(storage.StoredImage{Ref: "/uploads/abc.png", MimeType: "image/png"}, nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.Add(ctx, services.ProductInput{Name: "Lamp", Image: "ignored.jpg", Tags: []string{"home", ""}},
		&services.ImageUpload{Filename: "lamp.png", Body: body})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", product.Image)
	assert.Equal(t, "image/png", product.MimeType)
	assert.Equal(t, []string{"home"}, product.Tags)

	images.On("Save", ctx, "notes.txt", mock.Anything).Return(storage.StoredImage{}, storage.ErrUnsupportedType).Once()
	_, err = service.Add(ctx, services.ProductInput{Name: "Lamp"}, &services.ImageUpload{Filename: "notes.txt", Body: strings.NewReader("x")})
	assert.True(t, apperror.Is(err, apperror.InvalidInput))
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, logging.Discard())

	existing := &models.Product{ID: "p1", Name: "Lamp", Image: "/uploads/lamp.jpg", Status: models.ProductActive}
	mockRepo.On("GetByID", ctx, "p1").Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()

	product, err := service.Update(ctx, "p1", services.ProductInput{Name: "Lamp XL", Price: 20, Description: "d", Category: "home"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lamp XL", product.Name)
	assert.Equal(t, "/uploads/lamp.jpg", product.Image)

	deleted := &models.Product{ID: "p2", Status: models.ProductDeleted}
	mockRepo.On("GetByID", ctx, "p2").Return(deleted, nil).Once()
	_, err = service.Update(ctx, "p2", services.ProductInput{Name: "x"}, nil)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	mockRepo.On("GetByID", ctx, "p3").Return(nil, notFound("p3")).Once()
	_, err = service.Update(ctx, "p3", services.ProductInput{Name: "x"}, nil)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	service := services.NewProductService(mockRepo, mockCache, nil, logging.Discard())

	mockRepo.On("SoftDelete", ctx, "p1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockRepo.On("SoftDelete", ctx, "p2", mock.AnythingOfType("time.Time")).Return(notFound("p2")).Once()
	mockCache.On("Invalidate", ctx).Return(errors.New("redis down")).Once()

	assert.NoError(t, service.Delete(ctx, "p1"))
	assert.True(t, apperror.Is(service.Delete(ctx, "p2"), apperror.NotFound))
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_ListActive_CacheAside(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	service := services.NewProductService(mockRepo, mockCache, nil, logging.Discard())

	products := []models.Product{{ID: "p1", Name: "Lamp", Status: models.ProductActive}}

	// Miss: read through to the store and populate the cache.
	mockCache.On("GetList", ctx).Return(nil, false, nil).Once()
	mockRepo.On("ListActive", ctx).Return(products, nil).Once()
	mockCache.On("SetList", ctx, products).Return(nil).Once()

	got, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, got)

	// Hit: the store is not queried.
	mockCache.On("GetList", ctx).Return(products, true, nil).Once()
	got, err = service.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, got)

	mockRepo.AssertNumberOfCalls(t, "ListActive", 1)
	mockCache.AssertExpectations(t)
}

func TestProductService_ListActive_CacheErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	service := services.NewProductService(mockRepo, mockCache, nil, logging.Discard())

	mockCache.On("GetList", ctx).Return(nil, false, errors.New("redis down"))
	mockCache.On("SetList", ctx, mock.Anything).Return(errors.New("redis down"))
	mockRepo.On("ListActive", ctx).Return([]models.Product{{ID: "p1"}}, nil)

	got, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProductService_ListActive_Concurrent(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, logging.Discard())

	mockRepo.On("ListActive", ctx).Return([]models.Product{{ID: "p1"}}, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := service.ListActive(ctx)
			assert.NoError(t, err)
			assert.Len(t, got, 1)
		}()
	}
	wg.Wait()
}

func TestProductService_ListActive_StoreError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, logging.Discard())

	mockRepo.On("ListActive", ctx).Return(nil, errors.New("connection reset"))

	_, err := service.ListActive(ctx)
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}

// pausingProducts holds its first ListActive call after the store read
// until release is closed.
type pausingProducts struct {
	*repositories.MemoryProductRepository
	calls   atomic.Int32
	read    chan struct{}
	release chan struct{}
}

func (r *pausingProducts) ListActive(ctx context.Context) ([]models.Product, error) {
	products, err := r.MemoryProductRepository.ListActive(ctx)
	if r.calls.Add(1) == 1 {
		close(r.read)
		<-r.release
	}
	return products, err
}

// listCache is an in-process ProductListCache.
type listCache struct {
	mu       sync.Mutex
	products []models.Product
	ok       bool
}

func (c *listCache) GetList(context.Context) ([]models.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products, c.ok, nil
}

func (c *listCache) SetList(_ context.Context, products []models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products, c.ok = products, true
	return nil
}

func (c *listCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products, c.ok = nil, false
	return nil
}

func TestProductService_ListActive_DeleteDuringFill(t *testing.T) {
	ctx := context.Background()
	repo := &pausingProducts{
		MemoryProductRepository: repositories.NewMemoryProductRepository(),
		read:                    make(chan struct{}),
		release:                 make(chan struct{}),
	}
	lamp := &models.Product{Name: "Lamp", Status: models.ProductActive, Tags: []string{}}
	require.NoError(t, repo.Create(ctx, lamp))

	lists := &listCache{}
	service := services.NewProductService(repo, lists, nil, logging.Discard())

	firstDone := make(chan []models.Product, 1)
	go func() {
		got, err := service.ListActive(ctx)
		assert.NoError(t, err)
		firstDone <- got
	}()
	<-repo.read

	require.NoError(t, service.Delete(ctx, lamp.ID))

	// A reader arriving after the delete does not join the earlier fill.
	laterDone := make(chan []models.Product, 1)
	go func() {
		got, err := service.ListActive(ctx)
		assert.NoError(t, err)
		laterDone <- got
	}()
	select {
	case got := <-laterDone:
		assert.Empty(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("listing after delete waited on the earlier fill")
	}

	close(repo.release)
	assert.Len(t, <-firstDone, 1)

	got, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	cached, ok, _ := lists.GetList(ctx)
	assert.True(t, !ok || len(cached) == 0, "cache holds the list from before the delete")
}
