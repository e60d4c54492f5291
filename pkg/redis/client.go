// Package redis builds the shared Redis client used by caching, rate
// limiting, and idempotency.
package redis

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/avrorra/storebot/pkg/config"
)

// New creates a Redis client from cfg and verifies the connection with
// Ping. The client is instrumented with the package metrics hook.
// Returns nil without error when Redis is disabled in the config, so
// callers can treat the absence as a degraded mode rather than a fault.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	client.AddHook(newMetricsHook())

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
