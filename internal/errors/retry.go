package errors

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	defaultMaxRetries = 3
	initialBackoff    = 100 * time.Millisecond
	maxBackoff        = 5 * time.Second
	backoffMultiplier = 2.0
)

// WithRetry runs fn up to defaultMaxRetries+1 times with exponential
// backoff. Only errors reporting themselves retryable are retried.
func WithRetry(ctx context.Context, fn func() error) error {
	return WithRetryAttempts(ctx, defaultMaxRetries, fn)
}

// WithRetryAttempts is WithRetry with an explicit retry count.
func WithRetryAttempts(ctx context.Context, maxRetries int, fn func() error) error {
	if fn == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = fn()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) || attempt == maxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDuration(attempt + 1)):
		}
	}

	return err
}

// IsRetryable reports whether err carries a retryable AppError.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return false
}

func backoffDuration(attempt int) time.Duration {
	delay := float64(initialBackoff) * math.Pow(backoffMultiplier, float64(attempt))
	backoff := time.Duration(delay)
	if backoff > maxBackoff {
		return maxBackoff
	}

	return backoff
}
