package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rateLimitChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_checks_total",
		Help: "Bot update rate-limit checks by backend and result.",
	}, []string{"backend", "result"})

	rateLimitRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_rejected_total",
		Help: "Bot updates rejected by the rate limiter per backend.",
	}, []string{"backend"})

	rateLimitRedisErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_redis_errors_total",
		Help: "Redis failures observed while checking user limits.",
	})
)

// AdaptiveLimiter checks user limits against Redis and degrades to the
// in-memory backend when Redis is unreachable. The degraded limit is
// half the configured one: with several bot replicas each keeping its
// own memory window, a shopper hopping between replicas would otherwise
// get the full budget from every one of them.
type AdaptiveLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

// NewAdaptiveLimiter wires the Redis-primary, memory-fallback pair.
func NewAdaptiveLimiter(primary, fallback Limiter, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Check evaluates one user's limit. Rejections from either backend come
// back as ErrLimitExceeded together with the window state.
func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := a.primary.Check(ctx, key, limit, window)
	if err == nil {
		return a.record("redis", result)
	}

	rateLimitRedisErrorsTotal.Inc()
	a.log.Warn("redis limiter failed, degrading to in-memory", "user", key, "error", err)

	degraded := limit / 2
	if degraded <= 0 {
		degraded = 1
	}

	result, err = a.fallback.Check(ctx, key, degraded, window)
	if err != nil {
		return result, err
	}

	return a.record("fallback", result)
}

// record counts the outcome and converts a rejection into the shared
// sentinel error.
func (a *AdaptiveLimiter) record(backend string, result *Result) (*Result, error) {
	outcome := "allowed"
	if !result.Allowed {
		outcome = "rejected"
	}
	rateLimitChecksTotal.WithLabelValues(backend, outcome).Inc()

	if !result.Allowed {
		rateLimitRejectedTotal.WithLabelValues(backend).Inc()
		return result, ErrLimitExceeded
	}

	return result, nil
}
