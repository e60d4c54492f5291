package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sets whose newest entry is older than this are assumed to belong to
// users who stopped talking to the bot.
const staleAfter = 5 * time.Minute

// Cleaner sweeps limiter keys of users who went quiet. Keys carry a
// TTL, but a shopper who browses for a while refreshes it on every
// update; the sweep reclaims those sets once the user leaves.
type Cleaner struct {
	client   *redis.Client
	log      *slog.Logger
	interval time.Duration
}

// NewCleaner builds a sweep loop over the limiter key space.
func NewCleaner(client *redis.Client, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		client:   client,
		log:      log,
		interval: interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// Without a client or a positive interval it returns immediately.
func (c *Cleaner) Run(ctx context.Context) {
	if c.client == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("rate limit cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep walks the limiter keys, trims stale entries, and deletes sets
// that end up empty.
func (c *Cleaner) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	const scanCount = 100

	// Limiter scores are millisecond timestamps; the cutoff must match.
	cutoff := time.Now().Add(-staleAfter).UnixMilli()
	var cursor uint64
	removed := 0

	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanCount).Result()
		if err != nil {
			c.log.Error("rate limit scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			if c.reclaimIfIdle(ctx, key, cutoff) {
				removed++
			}
		}

		if next == 0 {
			break
		}
		cursor = next
	}

	if removed > 0 {
		c.log.Info("idle user limiter keys removed", slog.Int("keys_removed", removed))
	}
}

// reclaimIfIdle trims one user's set below the cutoff and deletes it
// when nothing is left. Reports whether the key was deleted.
func (c *Cleaner) reclaimIfIdle(ctx context.Context, key string, cutoff int64) bool {
	pipe := c.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%d", cutoff))
	cardCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("limiter key trim failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	count, err := cardCmd.Result()
	if err != nil {
		c.log.Warn("limiter key read failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	if count != 0 {
		return false
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("limiter key delete failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}
