package queue

import (
	"context"
	"sync/atomic"
)

type stackNode[T any] struct {
	value T
	prev  *stackNode[T]
}

// LockFreeStack is an unbounded Treiber stack. Add and Remove are aliases
// for Push and Pop, so the stack also satisfies Queue with LIFO order.
//
// The zero value is an empty stack with no backoff and no observer.
type LockFreeStack[T any] struct {
	top atomic.Pointer[stackNode[T]]
	len atomic.Int64
	c   contention
}

// NewLockFreeStack creates an empty LockFreeStack.
func NewLockFreeStack[T any](opts ...Option) *LockFreeStack[T] {
	return &LockFreeStack[T]{
		c: newContention(KindStack, resolveOptions(0, opts)),
	}
}

// Push puts v on top of the stack.
func (s *LockFreeStack[T]) Push(v T) {
	// a background context never interrupts the backoff
	_ = s.AddContext(context.Background(), v)
}

// Pop takes the top element, or returns false if the stack is empty.
func (s *LockFreeStack[T]) Pop() (T, bool) {
	v, ok, _ := s.RemoveContext(context.Background())
	return v, ok
}

// Add is Push. It never fails.
func (s *LockFreeStack[T]) Add(v T) error {
	return s.AddContext(context.Background(), v)
}

// Remove is Pop.
func (s *LockFreeStack[T]) Remove() (T, bool) {
	return s.Pop()
}

// AddContext pushes v. Only the backoff wait observes ctx; if ctx is done
// while backing off, v is not pushed and the error matches ErrInterrupted.
func (s *LockFreeStack[T]) AddContext(ctx context.Context, v T) error {
	n := &stackNode[T]{value: v}
	for {
		top := s.top.Load()
		n.prev = top
		if s.top.CompareAndSwap(top, n) {
			s.len.Add(1)
			return nil
		}
		if err := s.c.lost(ctx, OpAdd); err != nil {
			return err
		}
	}
}

// RemoveContext pops the top element, or returns false if the stack is
// empty. Only the backoff wait observes ctx; cancellation returns an error
// matching ErrInterrupted and nothing is consumed.
func (s *LockFreeStack[T]) RemoveContext(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		top := s.top.Load()
		if top == nil {
			return zero, false, nil
		}
		if s.top.CompareAndSwap(top, top.prev) {
			s.len.Add(-1)
			return top.value, true, nil
		}
		if err := s.c.lost(ctx, OpRemove); err != nil {
			return zero, false, err
		}
	}
}

// IsEmpty reports whether the stack had no top node.
func (s *LockFreeStack[T]) IsEmpty() bool {
	return s.top.Load() == nil
}

// Len returns the advisory element count.
func (s *LockFreeStack[T]) Len() int {
	return int(max(s.len.Load(), 0))
}
