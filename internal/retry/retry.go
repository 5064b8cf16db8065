// Package retry provides a small bounded-retry combinator with per-attempt
// timeouts. Callers describe the policy once; the loop, backoff sleeps and
// context plumbing live here.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds a retried operation.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Backoff returns the sleep before attempt n (n starts at 2; there is
	// no sleep before the first attempt). Nil means no backoff.
	Backoff func(attempt int) time.Duration
	// PerAttemptTimeout caps each individual attempt. Zero means the
	// attempt inherits the caller's context deadline only.
	PerAttemptTimeout time.Duration
}

// Linear returns a backoff that grows by step per prior failure: attempt 2
// waits step, attempt 3 waits 2*step, and so on.
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt-1) * step
	}
}

// Permanent marks err as non-retryable: Do unwraps and returns it
// immediately instead of burning the remaining attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
// The returned error is the last attempt's error wrapped with the attempt
// count, or ctx.Err() if the caller gave up first.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Backoff != nil {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return err
			}
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
		}
		lastErr = fn(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		var perm permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
