package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork marks a failure talking to a remote cache.
	ErrNetwork = errors.New("network error")

	// ErrUnknownBackend is returned by [Open] for an unrecognised backend.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries operations that fail with a [RetryableError], doubling
// the delay after each failed attempt.
type Backoff struct {
	Attempts int
	Initial  time.Duration
}

// DefaultBackoff makes three attempts, waiting 1s and then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second}

// Retry runs fn until it succeeds, fails permanently, or attempts run out.
// The last error is returned unchanged, still wrapped when retryable.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Initial
	for i := 1; ; i++ {
		err := fn()
		if err == nil || !IsRetryable(err) || i == attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
