package queue

import (
	"context"
	"time"

	"github.com/yarhoo/ConcurrentQueue/internal/backoff"
)

// DefaultBackoff is the SpinQueue retry delay after a lost CAS.
const DefaultBackoff = 10 * time.Microsecond

// Kind identifies a container implementation in Observer callbacks.
type Kind string

const (
	KindBlocking Kind = "blocking"
	KindSpin     Kind = "spin"
	KindLockFree Kind = "lockfree"
	KindStack    Kind = "stack"
)

// Op identifies the operation that hit contention.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Observer receives contention events from the CAS-based containers.
//
// Methods are called from the hot path of the goroutine that lost the race,
// so implementations must be cheap and safe for concurrent use.
type Observer interface {
	// CASFailed is called each time a CAS loses to a concurrent mutation.
	CASFailed(kind Kind, op Op)

	// BackedOff is called after a retry delay of d has been waited out.
	BackedOff(kind Kind, op Op, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) CASFailed(Kind, Op)                {}
func (nopObserver) BackedOff(Kind, Op, time.Duration) {}

// Option configures a container created by one of the New functions.
type Option func(*options)

type options struct {
	backoff    time.Duration
	backoffSet bool
	observer   Observer
}

// WithBackoff sets the delay waited after a lost CAS before retrying.
// Zero retries immediately. Negative values are treated as zero.
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.backoff = d
		o.backoffSet = true
	}
}

// WithObserver registers o to receive contention events.
// A nil Observer is ignored.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

func resolveOptions(defaultBackoff time.Duration, opts []Option) options {
	cfg := options{observer: nopObserver{}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if !cfg.backoffSet {
		cfg.backoff = defaultBackoff
	}
	return cfg
}

// contention is the lost-CAS path shared by the CAS-based containers.
type contention struct {
	kind     Kind
	backoff  backoff.Fixed
	observer Observer
}

func newContention(kind Kind, cfg options) contention {
	return contention{
		kind:     kind,
		backoff:  backoff.NewFixed(cfg.backoff),
		observer: cfg.observer,
	}
}

// lost records a failed CAS and waits out the backoff. The error is non-nil
// only if ctx was done before the wait finished.
func (c *contention) lost(ctx context.Context, op Op) error {
	observer := c.observer
	if observer == nil {
		observer = nopObserver{}
	}
	observer.CASFailed(c.kind, op)
	start := time.Now()
	err := c.backoff.WaitContext(ctx)
	observer.BackedOff(c.kind, op, time.Since(start))
	if err != nil {
		return interrupted(ctx)
	}
	return nil
}
