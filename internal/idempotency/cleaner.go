package idempotency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxRecordAge is the ceiling any update record may live. Records past
// it, or left without a TTL by an interrupted Set, are deleted.
const maxRecordAge = 25 * time.Hour

// Cleaner sweeps stale update records out of Redis. Records normally
// expire on their own; the sweep catches keys whose TTL was never set.
type Cleaner struct {
	client   *redis.Client
	log      *slog.Logger
	interval time.Duration
}

// NewCleaner builds a Cleaner sweeping at the given interval.
func NewCleaner(client *redis.Client, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{client: client, log: log, interval: interval}
}

// Run sweeps until ctx is cancelled. Safe to call on a nil Cleaner or
// without a Redis client; it simply returns.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, "idempotency:*", 100).Result()
		if err != nil {
			c.log.Error("idempotency sweep scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			c.reapIfStale(ctx, key)
		}

		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func (c *Cleaner) reapIfStale(ctx context.Context, key string) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		c.log.Warn("idempotency ttl read failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	if ttl >= 0 && ttl <= maxRecordAge {
		return
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("stale idempotency key delete failed", slog.String("key", key), slog.Any("error", err))
	}
}
