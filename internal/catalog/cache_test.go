package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorra/storebot/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	product := &domain.Product{
		ID:          7,
		Name:        "Торт Наполеон",
		Price:       1200,
		ImageURL:    "images/7.jpg",
		CategoryKey: "cakes",
	}

	require.NoError(t, cache.SetProduct(ctx, product))

	got, err := cache.GetProduct(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, product, got)
}

func TestCacheMissReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.GetProduct(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProduct(ctx, &domain.Product{ID: 1, Name: "x"}))
	require.NoError(t, cache.InvalidateProduct(ctx, 1))

	got, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProduct(ctx, &domain.Product{ID: 2, Name: "y"}))

	mr.FastForward(2 * time.Minute)

	got, err := cache.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	got, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, cache.SetProduct(ctx, &domain.Product{ID: 1}))
	assert.NoError(t, cache.InvalidateProduct(ctx, 1))
}
