package queue

import (
	"context"
	"sync/atomic"
)

type lfNode[T any] struct {
	value T
	next  atomic.Pointer[lfNode[T]]
}

// LockFreeQueue is an unbounded Michael-Scott FIFO.
//
// head always points at a dummy node whose value is not part of the queue;
// the front element lives in head.next. A successful Remove turns the node it
// took the value from into the new dummy.
type LockFreeQueue[T any] struct {
	head atomic.Pointer[lfNode[T]]
	tail atomic.Pointer[lfNode[T]]
	len  atomic.Int64
	c    contention
}

// NewLockFreeQueue creates an empty LockFreeQueue.
// Lost CAS races retry immediately unless WithBackoff is given.
func NewLockFreeQueue[T any](opts ...Option) *LockFreeQueue[T] {
	q := &LockFreeQueue[T]{
		c: newContention(KindLockFree, resolveOptions(0, opts)),
	}
	dummy := &lfNode[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Add appends v. It never fails.
func (q *LockFreeQueue[T]) Add(v T) error {
	return q.AddContext(context.Background(), v)
}

// AddContext appends v. Only the backoff wait observes ctx; if ctx is done
// while backing off, v is not added and the error matches ErrInterrupted.
func (q *LockFreeQueue[T]) AddContext(ctx context.Context, v T) error {
	n := &lfNode[T]{value: v}
	for {
		t := q.tail.Load()
		next := t.next.Load()
		if t != q.tail.Load() {
			continue
		}
		if next != nil {
			// tail is lagging
			q.tail.CompareAndSwap(t, next)
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(t, n)
			q.len.Add(1)
			return nil
		}
		if err := q.c.lost(ctx, OpAdd); err != nil {
			return err
		}
	}
}

// Remove takes the front element, or returns false if the queue is empty.
func (q *LockFreeQueue[T]) Remove() (T, bool) {
	v, ok, _ := q.RemoveContext(context.Background())
	return v, ok
}

// RemoveContext takes the front element, or returns false if the queue is
// empty. Only the backoff wait observes ctx; cancellation returns an error
// matching ErrInterrupted and nothing is consumed.
func (q *LockFreeQueue[T]) RemoveContext(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		h := q.head.Load()
		t := q.tail.Load()
		next := h.next.Load()
		if h != q.head.Load() {
			continue
		}
		if next == nil {
			return zero, false, nil
		}
		if h == t {
			q.tail.CompareAndSwap(t, next)
			continue
		}
		v := next.value
		if q.head.CompareAndSwap(h, next) {
			q.len.Add(-1)
			return v, true, nil
		}
		if err := q.c.lost(ctx, OpRemove); err != nil {
			return zero, false, err
		}
	}
}

// IsEmpty reports whether the dummy node had no successor.
func (q *LockFreeQueue[T]) IsEmpty() bool {
	return q.head.Load().next.Load() == nil
}

// Len returns the advisory element count. The counter is adjusted after the
// linking CAS, so it can briefly lag and is never reported below zero.
func (q *LockFreeQueue[T]) Len() int {
	return int(max(q.len.Load(), 0))
}
