// Package retry wraps an operation with bounded, backed-off retries.
package retry

import (
	"context"
	"time"
)

type Policy struct {
	Attempts int
	Delay    time.Duration
	// ShouldRetry may be nil, in which case every error is retried until
	// the attempts run out.
	ShouldRetry func(err error) bool
}

// Do runs fn until it succeeds, the policy is exhausted, or the context is
// cancelled. The last error is returned.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && policy.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(policy.Delay * time.Duration(attempt)):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}

		if policy.ShouldRetry != nil && !policy.ShouldRetry(err) {
			return err
		}
	}
	return err
}
