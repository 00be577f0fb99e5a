// Package retry provides retry logic with exponential backoff for read
// calls against the price source. Write paths never go through here.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/logging"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	JitterPercent float64
}

// DefaultConfig returns a sensible default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		JitterPercent: 0.2,
	}
}

// Operation is a function that can be retried
type Operation func(ctx context.Context) error

// WithExponentialBackoff retries an operation with exponential backoff.
// Non-retryable errors abort immediately.
func WithExponentialBackoff(ctx context.Context, cfg Config, op Operation) error {
	logger := logging.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(cfg, attempt)
		logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay.String(),
		}).WithError(lastErr).Debug("operation failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

func backoffDelay(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.JitterPercent > 0 {
		jitter := delay * cfg.JitterPercent
		delay = delay - jitter + rand.Float64()*2*jitter
	}
	return time.Duration(delay)
}
