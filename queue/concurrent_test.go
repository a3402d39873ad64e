package queue_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

type countingObserver struct {
	failed   atomic.Int64
	backoffs atomic.Int64
}

func (o *countingObserver) CASFailed(queue.Kind, queue.Op) { o.failed.Add(1) }

func (o *countingObserver) BackedOff(queue.Kind, queue.Op, time.Duration) { o.backoffs.Add(1) }

const (
	producers   = 8
	perProducer = 1000
)

// runMarked has every producer add p*perProducer+i for i in [0, perProducer)
// while consumers remove concurrently, and returns how often each value was
// removed.
func runMarked(t *testing.T, q queue.Queue[int], consumers int) []int {
	t.Helper()
	total := producers * perProducer
	counts := make([]int32, total)
	var removed atomic.Int64

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Add(p*perProducer + i); err != nil {
					t.Errorf("Add: %v", err)
					return
				}
			}
		}(p)
	}
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for removed.Load() < int64(total) {
				v, ok := q.Remove()
				if !ok {
					runtime.Gosched()
					continue
				}
				atomic.AddInt32(&counts[v], 1)
				removed.Add(1)
			}
		}()
	}
	wg.Wait()

	out := make([]int, total)
	for i := range counts {
		out[i] = int(counts[i])
	}
	return out
}

func nonBlockingCases(obs queue.Observer) []struct {
	name string
	q    queue.Queue[int]
} {
	return []struct {
		name string
		q    queue.Queue[int]
	}{
		{"Spin", queue.NewSpinQueue[int](queue.WithObserver(obs), queue.WithBackoff(time.Microsecond))},
		{"LockFree", queue.NewLockFreeQueue[int](queue.WithObserver(obs))},
		{"Stack", queue.NewLockFreeStack[int](queue.WithObserver(obs))},
	}
}

func TestConcurrent_NoLossNoDuplicates(t *testing.T) {
	obs := &countingObserver{}
	for _, tc := range nonBlockingCases(obs) {
		t.Run(tc.name, func(t *testing.T) {
			counts := runMarked(t, tc.q, 4)
			for v, n := range counts {
				if n != 1 {
					t.Fatalf("value %d removed %d times", v, n)
				}
			}
			assert.True(t, tc.q.IsEmpty())
			_, ok := tc.q.Remove()
			assert.False(t, ok)
		})
	}
	assert.Equal(t, obs.failed.Load(), obs.backoffs.Load())
}

func TestConcurrent_Blocking(t *testing.T) {
	q := queue.NewBlockingQueue[int]()
	total := producers * perProducer
	const consumers = 4

	results := make(chan int, total)
	var wg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < total/consumers; i++ {
				v, _ := q.Remove()
				results <- v
			}
		}()
	}
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.NoError(t, q.Add(p*perProducer+i))
			}
		}(p)
	}
	wg.Wait()
	close(results)

	seen := make([]bool, total)
	for v := range results {
		require.False(t, seen[v], "value %d removed twice", v)
		seen[v] = true
	}
	for v, ok := range seen {
		require.True(t, ok, "value %d lost", v)
	}
	assert.True(t, q.IsEmpty())
}

// Per-producer order must survive in FIFO queues: a consumer never sees
// a producer's values out of sequence.
func TestConcurrent_PerProducerOrder(t *testing.T) {
	for _, tc := range fifoCases() {
		if tc.name == "Blocking" {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			var wg sync.WaitGroup
			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for i := 0; i < perProducer; i++ {
						_ = tc.q.Add(p*perProducer + i)
					}
				}(p)
			}

			last := make([]int, producers)
			for i := range last {
				last[i] = -1
			}
			got := 0
			for got < producers*perProducer {
				v, ok := tc.q.Remove()
				if !ok {
					runtime.Gosched()
					continue
				}
				p, i := v/perProducer, v%perProducer
				if i <= last[p] {
					t.Fatalf("producer %d: got %d after %d", p, i, last[p])
				}
				last[p] = i
				got++
			}
			wg.Wait()
		})
	}
}

func TestConcurrent_EmptinessWhenQuiescent(t *testing.T) {
	for _, tc := range nonBlockingCases(nil) {
		t.Run(tc.name, func(t *testing.T) {
			var wg sync.WaitGroup
			for w := 0; w < 4; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < 500; i++ {
						_ = tc.q.Add(w*500 + i)
						tc.q.Remove()
					}
				}(w)
			}
			wg.Wait()

			// every goroutine removed as often as it added, but a remove can
			// miss an element another goroutine has yet to publish
			for {
				if _, ok := tc.q.Remove(); !ok {
					break
				}
			}
			assert.True(t, tc.q.IsEmpty())
		})
	}
}
