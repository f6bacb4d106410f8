// Package bridge hands sample blocks from a real-time producer to a single
// consumer without blocking the producer.
package bridge

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the number of items a bridge queues before dropping.
const DefaultCapacity = 64

// Bridge is a bounded single-producer, single-consumer queue. The producer
// side never blocks: items that do not fit are dropped and counted.
//
// Close must only be called once the producer has stopped calling TrySend.
type Bridge[T any] struct {
	items   chan T
	closed  atomic.Bool
	once    sync.Once
	dropped atomic.Uint64
}

// New creates a bridge queuing up to capacity items. A non-positive
// capacity uses DefaultCapacity.
func New[T any](capacity int) *Bridge[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bridge[T]{items: make(chan T, capacity)}
}

// TrySend queues v without blocking. It reports false when the queue is
// full or closed, in which case v is dropped.
func (b *Bridge[T]) TrySend(v T) bool {
	if b.closed.Load() {
		b.dropped.Add(1)
		return false
	}
	select {
	case b.items <- v:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Recv waits for the next item. It returns false once the bridge is closed
// and drained, or when ctx is done and nothing is queued. Queued items are
// always returned before cancellation is observed.
func (b *Bridge[T]) Recv(ctx context.Context) (T, bool) {
	select {
	case v, ok := <-b.items:
		return v, ok
	default:
	}

	select {
	case v, ok := <-b.items:
		return v, ok
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Close ends the stream. Items already queued are still delivered.
func (b *Bridge[T]) Close() {
	b.once.Do(func() {
		b.closed.Store(true)
		close(b.items)
	})
}

// Len returns the number of queued items.
func (b *Bridge[T]) Len() int { return len(b.items) }

// Cap returns the queue capacity.
func (b *Bridge[T]) Cap() int { return cap(b.items) }

// Dropped returns the number of items rejected by TrySend.
func (b *Bridge[T]) Dropped() uint64 { return b.dropped.Load() }
