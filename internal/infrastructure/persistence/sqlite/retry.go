package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	busyAttempts     = 5
	busyInitialDelay = 25 * time.Millisecond
	busyMaxDelay     = time.Second
)

// calculateBackoff computes the delay before retry attempt (1-based):
// (2^attempt) * initialDelay, capped at maxDelay.
func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt > 62 { // clear bound to avoid overflow
		return maxDelay
	}
	delay := time.Duration(1<<attempt) * initialDelay
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

// isBusyError reports whether another connection holds the database lock.
// Context errors are never retried.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryBusy runs fn until it succeeds, fails with a non-busy error or the
// attempts are exhausted.
func (s *Store) retryBusy(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if !isBusyError(err) || attempt == busyAttempts {
			return err
		}

		delay := calculateBackoff(attempt, busyInitialDelay, busyMaxDelay)
		s.logger.Debug("database busy, retrying", "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
	}
}
