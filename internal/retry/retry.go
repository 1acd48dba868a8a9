// Package retry provides an exponential-backoff wrapper for flaky read
// queries. It is applied only to reads; writes are never retried.
package retry

import (
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as non-transient: Do returns it at once instead
// of sleeping through the remaining attempts. Use it for deterministic
// outcomes such as not-found lookups.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// Do runs op up to attempts times, doubling the delay between failures,
// and returns the last error if every attempt fails. Errors wrapped with
// Permanent abort immediately and are returned unwrapped.
func Do[T any](attempts int, delay time.Duration, op func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		lastErr = err
		slog.Warn("retryable operation failed", "attempt", i+1, "attempts", attempts, "error", err)
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return zero, lastErr
}
