package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter is the in-process Limiter used when Redis is disabled
// or unhealthy. One sliding window of request timestamps per key.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	log     *slog.Logger
}

// NewMemoryLimiter builds an empty in-memory limiter.
func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		log:     log,
	}
}

// Check records the request when allowed and reports the window state.
// Over-limit requests return ErrLimitExceeded alongside the Result.
func (m *MemoryLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	recent := pruneBefore(m.windows[key], cutoff)

	allowed := len(recent) < limit
	if allowed {
		recent = append(recent, now)
	}
	m.windows[key] = recent

	remaining := limit - len(recent)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   cutoff.Add(window),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}

	return result, nil
}

// Cleanup drops windows whose newest request is older than maxAge so
// one-time visitors do not accumulate forever.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, requests := range m.windows {
		if len(requests) == 0 || requests[len(requests)-1].Before(cutoff) {
			delete(m.windows, key)
		}
	}
}

// pruneBefore drops timestamps older than cutoff, reusing the backing
// array. Timestamps are appended in order, so the prefix is the stale
// part.
func pruneBefore(requests []time.Time, cutoff time.Time) []time.Time {
	stale := 0
	for stale < len(requests) && requests[stale].Before(cutoff) {
		stale++
	}

	switch {
	case stale == 0:
		return requests
	case stale >= len(requests):
		return requests[:0]
	default:
		copy(requests, requests[stale:])
		return requests[:len(requests)-stale]
	}
}
