// Package queue provides unbounded concurrent FIFO and LIFO containers.
//
// This package offers four implementations of the Queue interface:
//   - BlockingQueue: Mutex-guarded list; Remove waits until an element exists
//   - SpinQueue: CAS on per-node value slots (tombstones) with a backoff sleep
//   - LockFreeQueue: Two-pointer CAS FIFO with a permanent dummy head
//   - LockFreeStack: Single-CAS LIFO (Treiber stack)
//
// All implementations are safe for any number of concurrent producers and
// consumers. None of them has a capacity limit.
//
// # Memory reclamation
//
// Nodes are always freshly allocated and never reused. A node unlinked by one
// goroutine stays valid for as long as any other goroutine still holds a
// pointer to it, so the garbage collector is the reclamation scheme and
// pointer CAS on head, tail and top is free of ABA.
//
// # Sizes
//
// Len, where provided by the CAS-based containers, is maintained outside the
// CAS that links or unlinks a node. It is advisory and may be briefly stale
// under concurrency.
package queue

import "context"

// Queue is the capability set shared by every container in this package.
type Queue[T any] interface {
	// Add inserts v.
	// Returns ErrInvalidArgument if the implementation forbids absent values.
	Add(v T) error

	// Remove takes the next element.
	// Returns false if the container is empty. BlockingQueue instead waits
	// for an element and always returns true.
	Remove() (T, bool)

	// IsEmpty reports whether the container held no elements at some point
	// during the call. It is not linearizable with concurrent mutation.
	IsEmpty() bool
}

// ContextRemover is implemented by containers whose Remove may block.
type ContextRemover[T any] interface {
	// RemoveContext waits for an element or for ctx to be done.
	// Cancellation returns an error matching ErrInterrupted.
	RemoveContext(ctx context.Context) (T, error)
}

// Interruptible is implemented by the CAS-based containers. Only the backoff
// wait after a lost CAS observes ctx; cancellation there returns an error
// matching ErrInterrupted, and nothing is added or consumed.
type Interruptible[T any] interface {
	AddContext(ctx context.Context, v T) error
	RemoveContext(ctx context.Context) (T, bool, error)
}

// Sizer is implemented by containers that track an element count.
type Sizer interface {
	Len() int
}

var (
	_ Queue[int] = (*BlockingQueue[int])(nil)
	_ Queue[int] = (*SpinQueue[int])(nil)
	_ Queue[int] = (*LockFreeQueue[int])(nil)
	_ Queue[int] = (*LockFreeStack[int])(nil)

	_ ContextRemover[int] = (*BlockingQueue[int])(nil)

	_ Interruptible[int] = (*SpinQueue[int])(nil)
	_ Interruptible[int] = (*LockFreeQueue[int])(nil)
	_ Interruptible[int] = (*LockFreeStack[int])(nil)

	_ Sizer = (*BlockingQueue[int])(nil)
	_ Sizer = (*LockFreeQueue[int])(nil)
	_ Sizer = (*LockFreeStack[int])(nil)
)
