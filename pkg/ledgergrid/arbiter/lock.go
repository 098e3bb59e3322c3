package arbiter

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

// DocLock serializes structural mutations of one document.
type DocLock struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewDocLock creates a lock whose Acquire gives up after timeout.
func NewDocLock(timeout time.Duration) *DocLock {
	return &DocLock{sem: semaphore.NewWeighted(1), timeout: timeout}
}

// Acquire blocks until the lock is held, ctx is done or the timeout
// elapses. A timeout is reported as ErrLockTimeout.
func (l *DocLock) Acquire(ctx context.Context) error {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return err
	}
	return nil
}

// TryAcquire takes the lock only if it is free.
func (l *DocLock) TryAcquire() bool { return l.sem.TryAcquire(1) }

func (l *DocLock) Release() { l.sem.Release(1) }
