package queue

import (
	"context"
	"sync/atomic"
)

type spinNode[T any] struct {
	// nil means the slot was never filled or has been taken
	value atomic.Pointer[T]
	next  atomic.Pointer[spinNode[T]]
}

// SpinQueue is an unbounded FIFO where removers claim an element by CAS on
// its node's value slot, leaving the node behind as a tombstone.
//
// Losing a claim or a link race waits out the configured backoff
// (DefaultBackoff unless WithBackoff is given) before retrying. Absent
// values are rejected because an empty slot marks a tombstone.
type SpinQueue[T any] struct {
	head atomic.Pointer[spinNode[T]]
	tail atomic.Pointer[spinNode[T]]
	c    contention
}

// NewSpinQueue creates an empty SpinQueue holding a single placeholder node.
func NewSpinQueue[T any](opts ...Option) *SpinQueue[T] {
	q := &SpinQueue[T]{
		c: newContention(KindSpin, resolveOptions(DefaultBackoff, opts)),
	}
	placeholder := &spinNode[T]{}
	q.head.Store(placeholder)
	q.tail.Store(placeholder)
	return q
}

// Add appends v. It returns ErrInvalidArgument if v is absent.
func (q *SpinQueue[T]) Add(v T) error {
	return q.AddContext(context.Background(), v)
}

// AddContext appends v. Only the backoff wait observes ctx; if ctx is done
// while backing off, v is not added and the error matches ErrInterrupted.
func (q *SpinQueue[T]) AddContext(ctx context.Context, v T) error {
	if isAbsent(v) {
		return ErrInvalidArgument
	}
	n := &spinNode[T]{}
	n.value.Store(&v)

	for {
		t := q.tail.Load()
		if next := t.next.Load(); next != nil {
			q.tail.CompareAndSwap(t, next)
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(t, n)
			// t is a placeholder or tombstone; a remover that found it
			// before n was linked left head on it
			if t.value.Load() == nil {
				q.head.CompareAndSwap(t, n)
			}
			return nil
		}
		if err := q.c.lost(ctx, OpAdd); err != nil {
			return err
		}
	}
}

// Remove takes the front element, or returns false if the queue is empty.
func (q *SpinQueue[T]) Remove() (T, bool) {
	v, ok, _ := q.RemoveContext(context.Background())
	return v, ok
}

// RemoveContext takes the front element, or returns false if the queue is
// empty. Only the backoff wait observes ctx; cancellation returns an error
// matching ErrInterrupted and nothing is consumed.
func (q *SpinQueue[T]) RemoveContext(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		h := q.head.Load()
		if p := h.value.Load(); p != nil {
			if h.value.CompareAndSwap(p, nil) {
				if next := h.next.Load(); next != nil {
					q.head.CompareAndSwap(h, next)
				}
				return *p, true, nil
			}
			if err := q.c.lost(ctx, OpRemove); err != nil {
				return zero, false, err
			}
			continue
		}

		next := h.next.Load()
		if next == nil {
			return zero, false, nil
		}
		// h is a tombstone with a successor; move head past it
		q.head.CompareAndSwap(h, next)
	}
}

// IsEmpty reports whether head and tail share a node that is neither
// occupied nor followed by another.
func (q *SpinQueue[T]) IsEmpty() bool {
	h := q.head.Load()
	return h == q.tail.Load() && h.value.Load() == nil && h.next.Load() == nil
}
