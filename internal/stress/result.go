package stress

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Result holds what one stress run removed from the queue.
type Result struct {
	// Drained holds the values each consumer removed, in removal order.
	Drained [][]int

	// Leftover holds the values still queued after every consumer finished.
	Leftover []int

	// EmptyPolls counts remove attempts that found the queue empty.
	EmptyPolls int64

	Elapsed time.Duration
}

// Len is the total number of values removed, leftovers included.
func (r *Result) Len() int {
	n := len(r.Leftover)
	for _, d := range r.Drained {
		n += len(d)
	}
	return n
}

// Counts returns how many times each value was removed.
func (r *Result) Counts() map[int]int {
	counts := make(map[int]int)
	for _, d := range r.Drained {
		for _, v := range d {
			counts[v]++
		}
	}
	for _, v := range r.Leftover {
		counts[v]++
	}
	return counts
}

// Verify checks that every value cfg inserts was removed exactly as many
// times as it was inserted, with nothing extra.
func (r *Result) Verify(cfg Config) error {
	want := Expected(cfg)
	got := r.Counts()

	var bad []int
	for v, n := range want {
		if got[v] != n {
			bad = append(bad, v)
		}
	}
	for v := range got {
		if _, ok := want[v]; !ok {
			bad = append(bad, v)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	v := bad[0]
	return fmt.Errorf("%w: %d values wrong, first %d removed %d times, want %d (removed %d of %d)",
		ErrMismatch, len(bad), v, got[v], want[v], r.Len(), cfg.Total())
}

// VerifyProducerOrder checks that no consumer saw a producer's values out of
// sequence. It only applies to FIFO queues fed with marked values.
func (r *Result) VerifyProducerOrder(cfg Config) error {
	if !cfg.Marked {
		return fmt.Errorf("%w: producer order needs marked values", ErrInvalidConfig)
	}
	for c, d := range r.Drained {
		last := make(map[int]int, cfg.Producers)
		for _, v := range d {
			p, i := v/cfg.PerProducer, v%cfg.PerProducer
			if prev, ok := last[p]; ok && i <= prev {
				return fmt.Errorf("%w: consumer %d saw producer %d value %d after %d", ErrMismatch, c, p, i, prev)
			}
			last[p] = i
		}
	}
	return nil
}

// Values returns the distinct removed values in ascending order.
func (r *Result) Values() []int {
	return slices.Sorted(maps.Keys(r.Counts()))
}
