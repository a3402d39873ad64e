package queue

import (
	"context"
	"sync"

	eq "github.com/eapache/queue"
)

// BlockingQueue is an unbounded FIFO guarded by a single mutex.
// Remove waits until an element is available.
//
// Every Add wakes all waiting removers; each one re-checks the queue under the
// lock, and those that find it empty go back to waiting.
type BlockingQueue[T any] struct {
	mu    sync.Mutex
	items *eq.Queue

	// ready is closed (and replaced) by Add when waiters is non-zero.
	ready   chan struct{}
	waiters int
}

// NewBlockingQueue creates an empty BlockingQueue.
func NewBlockingQueue[T any]() *BlockingQueue[T] {
	return &BlockingQueue[T]{
		items: eq.New(),
		ready: make(chan struct{}),
	}
}

// Add appends v and wakes every waiting remover. It never fails.
func (q *BlockingQueue[T]) Add(v T) error {
	q.mu.Lock()
	q.items.Add(v)
	if q.waiters > 0 {
		close(q.ready)
		q.ready = make(chan struct{})
		q.waiters = 0
	}
	q.mu.Unlock()
	return nil
}

// Remove takes the front element, waiting as long as necessary.
// The boolean is always true.
func (q *BlockingQueue[T]) Remove() (T, bool) {
	v, err := q.RemoveContext(context.Background())
	return v, err == nil
}

// RemoveContext takes the front element, waiting until one is available or
// ctx is done. On cancellation it returns an error matching both
// ErrInterrupted and the context's cause, and consumes nothing.
func (q *BlockingQueue[T]) RemoveContext(ctx context.Context) (T, error) {
	q.mu.Lock()
	for {
		if q.items.Length() > 0 {
			v, _ := q.items.Remove().(T)
			q.mu.Unlock()
			return v, nil
		}

		if err := ctx.Err(); err != nil {
			q.mu.Unlock()
			var zero T
			return zero, interrupted(ctx)
		}

		q.waiters++
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
			q.mu.Lock()
		case <-ctx.Done():
			q.mu.Lock()
			// still registered against the current generation
			if q.ready == ready {
				q.waiters--
			}
			q.mu.Unlock()
			var zero T
			return zero, interrupted(ctx)
		}
	}
}

// IsEmpty reports whether the queue held no elements when the lock was taken.
func (q *BlockingQueue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length() == 0
}

// Len returns the number of queued elements.
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}
