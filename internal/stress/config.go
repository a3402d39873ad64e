// Package stress runs producers and consumers against a queue.Queue and
// verifies that every inserted value came out exactly once.
package stress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yarhoo/ConcurrentQueue/internal/logging"
)

var (
	// ErrInvalidConfig is returned by Config.Validate and Run.
	ErrInvalidConfig = errors.New("stress: invalid config")

	// ErrMismatch is returned by Result.Verify when the drained multiset
	// differs from the expected one.
	ErrMismatch = errors.New("stress: drained values do not match inserted values")
)

// Config describes one stress run.
type Config struct {
	// Producers is the number of goroutines calling Add.
	Producers int

	// Consumers is the number of goroutines calling Remove.
	Consumers int

	// PerProducer is the number of values each producer adds.
	PerProducer int

	// PerConsumer, if positive, makes each consumer perform exactly that
	// many remove attempts, empty results included. Zero makes consumers
	// keep removing until every inserted value has been collected.
	PerConsumer int

	// Marked makes producer p add p*PerProducer+i, so every value is
	// unique. Otherwise every producer adds 0..PerProducer-1.
	Marked bool

	// ProgressInterval, if positive, throttles progress log lines.
	ProgressInterval time.Duration

	Logger *logging.Logger
}

// Validate reports whether c describes a runnable configuration.
func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers must be at least 1, got %d", ErrInvalidConfig, c.Producers)
	case c.Consumers < 1:
		return fmt.Errorf("%w: consumers must be at least 1, got %d", ErrInvalidConfig, c.Consumers)
	case c.PerProducer < 1:
		return fmt.Errorf("%w: values per producer must be at least 1, got %d", ErrInvalidConfig, c.PerProducer)
	case c.PerConsumer < 0:
		return fmt.Errorf("%w: attempts per consumer must not be negative, got %d", ErrInvalidConfig, c.PerConsumer)
	case c.ProgressInterval < 0:
		return fmt.Errorf("%w: progress interval must not be negative, got %v", ErrInvalidConfig, c.ProgressInterval)
	case c.Producers > math.MaxInt/c.PerProducer:
		return fmt.Errorf("%w: %d producers x %d values overflows", ErrInvalidConfig, c.Producers, c.PerProducer)
	}
	return nil
}

// Total is the number of values the producers insert.
func (c Config) Total() int {
	return c.Producers * c.PerProducer
}

func (c Config) value(producer, i int) int {
	if c.Marked {
		return producer*c.PerProducer + i
	}
	return i
}

// Expected returns how many times each value must be drained.
func Expected(c Config) map[int]int {
	want := make(map[int]int, c.PerProducer)
	for p := 0; p < c.Producers; p++ {
		for i := 0; i < c.PerProducer; i++ {
			want[c.value(p, i)]++
		}
	}
	return want
}
