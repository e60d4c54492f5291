package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded is returned when a user has no requests left in the
// current window.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result reports one rate-limit evaluation: whether the update may be
// handled, how many requests remain, and when the window resets.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter evaluates a keyed rate limit. Keys are Telegram user IDs
// rendered as strings so memory and Redis backends share key layout.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
