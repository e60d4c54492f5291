package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter keys live under one prefix so the cleaner can scan them.
const keyPrefix = "ratelimit:"

// RedisLimiter keeps one sorted set per user: members are opaque IDs,
// scores are arrival times in milliseconds. Counting the set after
// trimming everything older than the window gives the sliding-window
// usage shared by all bot replicas.
type RedisLimiter struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter builds the Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, log *slog.Logger) *RedisLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLimiter{
		client: client,
		log:    log,
	}
}

// Check records this update and reports whether the user is within the
// limit. The update is recorded even when rejected, so hammering the
// bot keeps the window full.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("redis client is not configured for rate limiting")
	}

	if limit <= 0 {
		return &Result{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(window)}, nil
	}

	now := time.Now()
	windowStart := now.Add(-window)

	count, err := l.trimAndCount(ctx, keyPrefix+key, windowStart, now, window)
	if err != nil {
		l.log.Error("rate limit check failed", slog.String("user", key), slog.Any("error", err))
		return nil, err
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}, nil
}

// trimAndCount drops entries that left the window, records the current
// update, and returns the resulting set size. One transaction keeps the
// count consistent across replicas.
func (l *RedisLimiter) trimAndCount(ctx context.Context, redisKey string, windowStart, now time.Time, window time.Duration) (int64, error) {
	cutoff := float64(windowStart.UnixNano()) / float64(time.Millisecond)
	score := float64(now.UnixNano()) / float64(time.Millisecond)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  score,
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return countCmd.Result()
}
