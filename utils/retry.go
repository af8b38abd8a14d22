package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to maxAttempts times, stopping at the first nil error.
// Between attempts it waits base, 2*base, 4*base... and gives up early if
// ctx is cancelled. fn receives the 1-based attempt number.
//
// The returned error wraps the last failure from fn.
func Retry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		if attempt < maxAttempts {
			wait := Backoff(base, attempt)
			Debug("Attempt %d/%d failed: %v, retrying in %v", attempt, maxAttempts, lastErr, wait)
			if err := Sleep(ctx, wait); err != nil {
				return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, lastErr)
			}
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", maxAttempts, lastErr)
}

// Backoff is base doubled for every failed attempt before this one.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt < 1 {
		return 0
	}
	return base << uint(attempt-1)
}
