package shared

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy retries operations that fail with SQLite conflict errors,
// doubling the delay after every attempt. MaxRetries counts retries after
// the first attempt, so fn runs at most MaxRetries+1 times.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns 3 retries starting at 50ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 50 * time.Millisecond}
}

// Do runs fn until it succeeds, fails with a non-conflict error, the
// retries are exhausted or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := 1
	if p.MaxRetries > 0 {
		attempts += p.MaxRetries
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsSQLiteConflictError(err) || i == attempts-1 {
			return err
		}

		delay := p.BaseDelay * time.Duration(1<<i)
		slog.Debug("Database busy, retrying",
			"op", op,
			"attempt", i+1,
			"delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
