package gosearchgate

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// jobSemaphore bounds the number of concurrently outstanding async jobs.
// Waiters are served in FIFO order, so a release hands the slot to the
// longest waiting caller.
type jobSemaphore struct {
	sem   *semaphore.Weighted
	limit int64
	held  int64
}

func newJobSemaphore(limit int64) *jobSemaphore {
	if limit <= 0 {
		limit = 1
	}
	return &jobSemaphore{
		sem:   semaphore.NewWeighted(limit),
		limit: limit,
	}
}

// acquire blocks until a slot is available or ctx is done. A nil error means
// the caller holds one slot and must release it exactly once.
func (js *jobSemaphore) acquire(ctx context.Context) error {
	if err := js.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	atomic.AddInt64(&js.held, 1)
	return nil
}

// tryAcquire waits for a slot until the deadline. It returns false without
// consuming a slot when the deadline passes first.
func (js *jobSemaphore) tryAcquire(ctx context.Context, deadline time.Time) bool {
	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	if err := js.sem.Acquire(dctx, 1); err != nil {
		return false
	}
	atomic.AddInt64(&js.held, 1)
	return true
}

func (js *jobSemaphore) release() {
	atomic.AddInt64(&js.held, -1)
	js.sem.Release(1)
}

// outstanding reports how many slots are currently held.
func (js *jobSemaphore) outstanding() int64 {
	return atomic.LoadInt64(&js.held)
}
