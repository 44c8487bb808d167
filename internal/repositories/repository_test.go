package repositories_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns every store available in the current environment.
func backends(t *testing.T) map[string]func(t *testing.T) *repositories.Store {
	t.Helper()
	stores := map[string]func(t *testing.T) *repositories.Store{
		"memory": func(*testing.T) *repositories.Store {
			return repositories.NewMemoryStore()
		},
		"sqlite": func(t *testing.T) *repositories.Store {
			dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
			store, err := repositories.OpenStore(context.Background(), repositories.StoreConfig{Driver: "sqlite", DSN: dsn})
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close(context.Background()) })
			return store
		},
	}
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		stores["mongo"] = func(t *testing.T) *repositories.Store {
			store, err := repositories.OpenStore(context.Background(), repositories.StoreConfig{
				Driver:        "mongo",
				MongoURI:      uri,
				MongoDatabase: "storefront_test_" + uuid.NewString()[:8],
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close(context.Background()) })
			return store
		}
	}
	return stores
}

func TestUserRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Users

			ann := &models.User{FirstName: "Ann", Email: "ann@x.io", Password: "hash"}
			require.NoError(t, repo.Create(ctx, ann))
			assert.NotEmpty(t, ann.ID)
			assert.False(t, ann.CreatedAt.IsZero())

			err := repo.Create(ctx, &models.User{FirstName: "Other", Email: "ann@x.io", Password: "hash"})
			assert.ErrorIs(t, err, repositories.ErrDuplicate)

			got, err := repo.GetByEmail(ctx, "ann@x.io")
			require.NoError(t, err)
			assert.Equal(t, ann.ID, got.ID)
			assert.Equal(t, "hash", got.Password)

			got.LastName = "Lee"
			got.Address = models.Address{House: "1", Street: "Main", City: "Metropolis", State: "NY", Pincode: "10001"}
			require.NoError(t, repo.Update(ctx, got))

			again, err := repo.GetByID(ctx, ann.ID)
			require.NoError(t, err)
			assert.Equal(t, "Lee", again.LastName)
			assert.Equal(t, "Metropolis", again.Address.City)

			users, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, users, 1)

			require.NoError(t, repo.Delete(ctx, ann.ID))
			_, err = repo.GetByID(ctx, ann.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, ann.ID), repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: "missing", Email: "m@x.io"}), repositories.ErrNotFound)
		})
	}
}

func TestProductRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Products

			lamp := &models.Product{Name: "Lamp", Price: 12.5, Category: "home", MimeType: models.DefaultMimeType, Status: models.ProductActive}
			mug := &models.Product{Name: "Mug", Price: 4, Category: "kitchen", MimeType: models.DefaultMimeType, Status: models.ProductActive, Tags: []string{"ceramic", "blue"}}
			require.NoError(t, repo.Create(ctx, lamp))
			require.NoError(t, repo.Create(ctx, mug))

			got, err := repo.GetByID(ctx, mug.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"ceramic", "blue"}, got.Tags)

			lamp.Price = 15
			lamp.Tags = []string{"light"}
			require.NoError(t, repo.Update(ctx, lamp))
			assert.Equal(t, 15.0, lamp.Price)
			assert.Equal(t, models.ProductActive, lamp.Status)

			deletedAt := time.Now().UTC().Truncate(time.Millisecond)
			require.NoError(t, repo.SoftDelete(ctx, mug.ID, deletedAt))
			assert.ErrorIs(t, repo.SoftDelete(ctx, mug.ID, deletedAt), repositories.ErrNotFound)

			active, err := repo.ListActive(ctx)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, lamp.ID, active[0].ID)
			assert.Equal(t, []string{"light"}, active[0].Tags)

			deleted, err := repo.GetByID(ctx, mug.ID)
			require.NoError(t, err)
			assert.True(t, deleted.IsDeleted())
			assert.True(t, deleted.DeletedAt.Equal(deletedAt))

			mug.Name = "Cup"
			assert.ErrorIs(t, repo.Update(ctx, mug), repositories.ErrNotFound)
			_, err = repo.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestCartRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Cart

			item := &models.CartItem{UserID: "u1", ProductID: "p1", Name: "Lamp", Price: 12.5, Quantity: 1}
			require.NoError(t, repo.Add(ctx, item))
			assert.ErrorIs(t, repo.Add(ctx, &models.CartItem{UserID: "u1", ProductID: "p1", Quantity: 1}), repositories.ErrDuplicate)
			require.NoError(t, repo.Add(ctx, &models.CartItem{UserID: "u2", ProductID: "p1", Quantity: 1}))

			for want := 2; want <= 4; want++ {
				updated, err := repo.Increment(ctx, "u1", "p1")
				require.NoError(t, err)
				assert.Equal(t, want, updated.Quantity)
			}

			for want := 3; want >= 1; want-- {
				updated, removed, err := repo.Decrement(ctx, "u1", "p1")
				require.NoError(t, err)
				assert.False(t, removed)
				assert.Equal(t, want, updated.Quantity)
			}

			updated, removed, err := repo.Decrement(ctx, "u1", "p1")
			require.NoError(t, err)
			assert.True(t, removed)
			assert.Nil(t, updated)

			_, err = repo.Get(ctx, "u1", "p1")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, _, err = repo.Decrement(ctx, "u1", "p1")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = repo.Increment(ctx, "u1", "p1")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			mine, err := repo.ListByUser(ctx, "u2")
			require.NoError(t, err)
			assert.Len(t, mine, 1)

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestCartRepository_ConcurrentDecrement(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Cart

			const quantity = 5
			require.NoError(t, repo.Add(ctx, &models.CartItem{UserID: "u1", ProductID: "p1", Quantity: 1}))
			for range quantity - 1 {
				_, err := repo.Increment(ctx, "u1", "p1")
				require.NoError(t, err)
			}

			var (
				wg                   sync.WaitGroup
				mu                   sync.Mutex
				lowered, gone, later int
			)
			for range quantity + 3 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					item, removed, err := repo.Decrement(ctx, "u1", "p1")

					mu.Lock()
					defer mu.Unlock()
					switch {
					case errors.Is(err, repositories.ErrNotFound):
						later++
					case err != nil:
						t.Errorf("decrement: %v", err)
					case removed:
						gone++
					default:
						assert.GreaterOrEqual(t, item.Quantity, 1)
						lowered++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, quantity-1, lowered)
			assert.Equal(t, 1, gone)
			assert.Equal(t, 3, later)
			_, err := repo.Get(ctx, "u1", "p1")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestOrderRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Orders

			order := &models.Order{
				UserID:      "u1",
				Items:       []models.OrderItem{{ProductID: "p1", Name: "Lamp", Quantity: 2, Price: 12.5}},
				TotalAmount: 25,
				Status:      models.OrderPending,
			}
			require.NoError(t, repo.Create(ctx, order))
			assert.NotEmpty(t, order.ID)

			got, err := repo.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, order.Items, got.Items)

			require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderCancelled))
			got, err = repo.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderCancelled, got.Status)

			orders, err := repo.ListByUser(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, orders, 1)
			orders, err = repo.ListByUser(ctx, "u2")
			require.NoError(t, err)
			assert.Empty(t, orders)

			assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.OrderCancelled), repositories.ErrNotFound)
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := repositories.OpenStore(context.Background(), repositories.StoreConfig{Driver: "cassandra"})
	assert.Error(t, err)
}
