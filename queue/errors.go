package queue

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned by Add when the value is absent (a nil
	// pointer, interface, func, chan or unsafe.Pointer) and the container
	// does not accept absent values.
	ErrInvalidArgument = errors.New("queue: invalid argument")

	// ErrInterrupted is returned when a wait is abandoned because its
	// context is done. The returned error also wraps the context's cause.
	ErrInterrupted = errors.New("queue: interrupted")
)

// interrupted wraps ErrInterrupted together with the cause of ctx. The
// context itself is left as it is, so the caller still observes it as done.
func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
}
