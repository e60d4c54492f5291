package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/avrorra/storebot/internal/domain"
)

// Cache provides Redis-backed caching for product cards. A nil cache
// is valid and caches nothing, letting the service run without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a product cache backed by the provided Redis
// client with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetProduct fetches a cached product if present. A miss returns
// (nil, nil).
func (c *Cache) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached product: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("decode cached product: %w", err)
	}

	return &product, nil
}

// SetProduct stores the product in cache.
func (c *Cache) SetProduct(ctx context.Context, product *domain.Product) error {
	if c == nil || c.client == nil || product == nil {
		return nil
	}

	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product for cache: %w", err)
	}

	if err := c.client.Set(ctx, productKey(product.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached product: %w", err)
	}

	return nil
}

// InvalidateProduct removes the cached product entry if it exists.
func (c *Cache) InvalidateProduct(ctx context.Context, id int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("delete cached product: %w", err)
	}

	return nil
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
