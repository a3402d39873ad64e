package stress

import (
	"context"
	"sync/atomic"
	"time"
)

// stopFlag is an atomic.Bool set once the run's context is done, so the hot
// loops check a single load instead of selecting on ctx.Done().
type stopFlag struct {
	done atomic.Bool
}

// watchContext returns a flag that is set when ctx is done. The returned
// func detaches it from ctx.
func watchContext(ctx context.Context) (*stopFlag, func() bool) {
	s := &stopFlag{}
	if ctx.Err() != nil {
		s.Stop()
	}
	return s, context.AfterFunc(ctx, s.Stop)
}

func (s *stopFlag) Done() bool { return s.done.Load() }

func (s *stopFlag) Stop() { s.done.Store(true) }

// progressTicker reports whether interval has elapsed since the last tick.
// Concurrent callers race on a CAS so one interval yields one tick.
type progressTicker struct {
	base     time.Time
	interval int64
	lastTick atomic.Int64
}

func newProgressTicker(interval time.Duration) *progressTicker {
	if interval <= 0 {
		return nil
	}
	return &progressTicker{base: time.Now(), interval: int64(interval)}
}

// Tick is false on a nil ticker.
func (t *progressTicker) Tick() bool {
	if t == nil {
		return false
	}
	now := int64(time.Since(t.base))
	last := t.lastTick.Load()
	if now-last >= t.interval {
		return t.lastTick.CompareAndSwap(last, now)
	}
	return false
}
