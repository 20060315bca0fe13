// Package resource accounts memory held by stored vectors.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimit is returned when a reservation does not fit the budget.
var ErrMemoryLimit = errors.New("memory limit exceeded")

// Budget tracks encoded vector bytes against an optional hard limit.
//
// A nil *Budget tracks nothing and admits every reservation.
type Budget struct {
	limit   int64
	sem     *semaphore.Weighted // nil if unlimited
	used    atomic.Int64
	rejects atomic.Int64
}

// NewBudget creates a budget. A limit <= 0 only tracks usage.
func NewBudget(limit int64) *Budget {
	b := &Budget{limit: max(limit, 0)}
	if limit > 0 {
		b.sem = semaphore.NewWeighted(limit)
	}
	return b
}

// Acquire reserves bytes, blocking until they fit or ctx is done.
// Reservations larger than the limit fail immediately.
func (b *Budget) Acquire(ctx context.Context, bytes int64) error {
	if b == nil || bytes <= 0 {
		return nil
	}
	if b.sem != nil {
		if bytes > b.limit {
			b.rejects.Add(1)
			return fmt.Errorf("%w: %d bytes requested, limit is %d", ErrMemoryLimit, bytes, b.limit)
		}
		if err := b.sem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	b.used.Add(bytes)
	return nil
}

// Reserve reserves bytes without blocking and wraps ErrMemoryLimit when
// they do not fit.
func (b *Budget) Reserve(bytes int64) error {
	if b == nil || bytes <= 0 {
		return nil
	}
	if b.sem != nil && !b.sem.TryAcquire(bytes) {
		b.rejects.Add(1)
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrMemoryLimit, bytes, b.used.Load(), b.limit)
	}
	b.used.Add(bytes)
	return nil
}

// Release returns bytes to the budget.
func (b *Budget) Release(bytes int64) {
	if b == nil || bytes <= 0 {
		return
	}
	if b.sem != nil {
		b.sem.Release(bytes)
	}
	b.used.Add(-bytes)
}

// Usage returns the reserved bytes.
func (b *Budget) Usage() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Limit returns the hard limit, or 0 when unlimited.
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

// Rejected returns the number of reservations refused for exceeding the limit.
func (b *Budget) Rejected() int64 {
	if b == nil {
		return 0
	}
	return b.rejects.Load()
}
