package errors

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig controls the exponential backoff applied between attempts.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the initial call.
	MaxRetries int

	// InitialDelay seeds the backoff sequence.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Multiplier grows the delay after every failed attempt.
	Multiplier float64

	// Jitter randomizes each delay into [50%, 100%] of its value so
	// concurrent callers do not wake in lockstep.
	Jitter bool
}

// DefaultRetryConfig returns the backoff the store adapters start from.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. See RetryWithResult for the full contract.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := RetryWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// RetryWithResult runs fn up to 1+MaxRetries times with exponential
// backoff between attempts. Non-retryable SubseekErrors (validation
// failures, missing videos) abort immediately; unclassified errors are
// treated as transient. Context cancellation wins over any pending wait.
// Once the budget is spent, the zero value is returned alongside an error
// wrapping the last failure.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !shouldRetry(err) {
			return result, err
		}
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}
		if err := sleep(ctx, withJitter(cfg, delay)); err != nil {
			var zero T
			return zero, err
		}
		delay = nextDelay(cfg, delay)
	}

	var zero T
	return zero, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

// shouldRetry reports whether another attempt makes sense for err.
// Permanent SubseekErrors would fail the same way every time.
func shouldRetry(err error) bool {
	if se, ok := err.(*SubseekError); ok {
		return se.Retryable
	}
	return true
}

func withJitter(cfg RetryConfig, d time.Duration) time.Duration {
	if !cfg.Jitter {
		return d
	}
	return time.Duration(float64(d) * (0.5 + rand.Float64()*0.5))
}

func nextDelay(cfg RetryConfig, d time.Duration) time.Duration {
	d = time.Duration(float64(d) * cfg.Multiplier)
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
