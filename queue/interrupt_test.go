package queue_test

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

type interruptible interface {
	queue.Queue[int]
	queue.Interruptible[int]
}

// TestInterruptible_CancelDuringBackoff makes goroutines cycle elements
// through a container whose backoff is far longer than the test, waits until
// one of them has lost a CAS and is parked in the backoff, then cancels.
func TestInterruptible_CancelDuringBackoff(t *testing.T) {
	if runtime.GOMAXPROCS(0) < 2 {
		t.Skip("needs parallelism to lose a CAS race")
	}

	const (
		elements = 64
		racers   = 32
	)

	tests := []struct {
		name string
		new  func(...queue.Option) interruptible
	}{
		{"SpinQueue", func(o ...queue.Option) interruptible { return queue.NewSpinQueue[int](o...) }},
		{"LockFreeQueue", func(o ...queue.Option) interruptible { return queue.NewLockFreeQueue[int](o...) }},
		{"LockFreeStack", func(o ...queue.Option) interruptible { return queue.NewLockFreeStack[int](o...) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &countingObserver{}
			q := tt.new(queue.WithBackoff(time.Hour), queue.WithObserver(obs))
			for i := 0; i < elements; i++ {
				require.NoError(t, q.Add(i))
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var (
				mu   sync.Mutex
				errs []error
				held []int
				wg   sync.WaitGroup
			)
			for r := 0; r < racers; r++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for ctx.Err() == nil {
						v, ok, err := q.RemoveContext(ctx)
						if err != nil {
							mu.Lock()
							errs = append(errs, err)
							mu.Unlock()
							return
						}
						if !ok {
							runtime.Gosched()
							continue
						}
						if err := q.AddContext(ctx, v); err != nil {
							mu.Lock()
							errs = append(errs, err)
							held = append(held, v)
							mu.Unlock()
							return
						}
					}
				}()
			}

			require.Eventually(t, func() bool { return obs.failed.Load() > 0 },
				10*time.Second, time.Millisecond, "no CAS was lost")
			cancel()
			wg.Wait()

			require.NotEmpty(t, errs)
			for _, err := range errs {
				assert.ErrorIs(t, err, queue.ErrInterrupted)
				assert.ErrorIs(t, err, context.Canceled)
			}

			got := append([]int(nil), held...)
			for {
				v, ok := q.Remove()
				if !ok {
					break
				}
				got = append(got, v)
			}
			want := make([]int, elements)
			for i := range want {
				want[i] = i
			}
			assert.ElementsMatch(t, want, got)
		})
	}
}
