package github

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryConfig defines how transient failures and rate limits are retried.
type RetryConfig struct {
	MaxAttempts   int           // Maximum number of attempts, including the first
	InitialDelay  time.Duration // Delay before the first retry
	MaxDelay      time.Duration // Cap on a single computed delay
	MaxWait       time.Duration // Longest server-requested wait (Retry-After) honored before giving up
	BackoffFactor float64       // Exponential backoff multiplier
	JitterFactor  float64       // Jitter factor (0.0 to 1.0) to randomize delays
}

// DefaultRetryConfig returns the retry policy used for API calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   4,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		MaxWait:       time.Minute,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// delay returns the backoff before retry number attempt (1-based).
func (rc RetryConfig) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return rc.InitialDelay
	}

	d := float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt-1))
	if d > float64(rc.MaxDelay) {
		d = float64(rc.MaxDelay)
	}

	if rc.JitterFactor > 0 {
		//nolint:gosec // math/rand is fine for retry jitter
		d += d * rc.JitterFactor * (2*rand.Float64() - 1)
		if d < 0 {
			d = float64(rc.InitialDelay)
		}
	}
	return time.Duration(d)
}

// retry runs op until it succeeds, fails with an error retryable rejects, or
// the attempt budget is spent. The last error is returned unchanged so
// callers can still classify it.
func retry(ctx context.Context, rc RetryConfig, logger *slog.Logger, retryable func(error) bool, op func() error) error {
	attempts := rc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts {
			break
		}

		wait := rc.delay(attempt)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			if apiErr.RetryAfter > rc.MaxWait {
				logger.Warn("server asked to wait longer than allowed, giving up",
					"retry_after", apiErr.RetryAfter, "max_wait", rc.MaxWait)
				break
			}
			wait = apiErr.RetryAfter
		}

		logger.Debug("retrying request", "attempt", attempt, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
