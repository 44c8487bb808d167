// Package cache provides the Redis-backed product list cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a cached product list is served.
const DefaultTTL = 5 * time.Minute

const productListKey = "products:active"

// ProductListCache stores the list of active products.
type ProductListCache interface {
	// GetList returns the cached list and whether it was present.
	GetList(ctx context.Context) ([]models.Product, bool, error)
	SetList(ctx context.Context, products []models.Product) error
	Invalidate(ctx context.Context) error
}

// RedisProductCache is a ProductListCache stored as a JSON value in Redis.
type RedisProductCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProductCache creates a RedisProductCache. Keys are namespaced as
// "<prefix>:products:active". A non-positive ttl uses DefaultTTL.
func NewRedisProductCache(client *redis.Client, prefix string, ttl time.Duration) *RedisProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisProductCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisProductCache) key() string {
	return c.prefix + productListKey
}

func (c *RedisProductCache) GetList(ctx context.Context) ([]models.Product, bool, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return products, true, nil
}

func (c *RedisProductCache) SetList(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.key(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *RedisProductCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// Ping checks if the Redis connection is healthy.
func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NopCache never stores anything. It is used when no Redis address is configured.
type NopCache struct{}

func (NopCache) GetList(context.Context) ([]models.Product, bool, error) { return nil, false, nil }
func (NopCache) SetList(context.Context, []models.Product) error        { return nil }
func (NopCache) Invalidate(context.Context) error                       { return nil }
