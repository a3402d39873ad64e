// Package backoff provides the retry delay used by the CAS-based containers
// after losing a race.
//
// The delay is a liveness mechanism only: correctness never depends on it.
// A zero delay yields the processor instead of sleeping.
package backoff

import (
	"context"
	"runtime"
	"time"
)

// Fixed waits the same duration before every retry.
type Fixed struct {
	d time.Duration
}

// NewFixed creates a Fixed backoff. Negative durations are treated as zero.
func NewFixed(d time.Duration) Fixed {
	if d < 0 {
		d = 0
	}
	return Fixed{d: d}
}

// Duration returns the configured delay.
func (f Fixed) Duration() time.Duration {
	return f.d
}

// Wait blocks for the configured delay.
func (f Fixed) Wait() {
	if f.d == 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(f.d)
}

// WaitContext blocks for the configured delay or until ctx is done,
// whichever comes first. It returns ctx.Err() if the wait was cut short.
//
// A context that can never be cancelled takes the same path as Wait.
func (f Fixed) WaitContext(ctx context.Context) error {
	done := ctx.Done()
	if done == nil {
		f.Wait()
		return nil
	}
	select {
	case <-done:
		return ctx.Err()
	default:
	}
	if f.d == 0 {
		runtime.Gosched()
		return nil
	}
	timer := time.NewTimer(f.d)
	defer timer.Stop()
	select {
	case <-done:
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
