package stress

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

// Run starts cfg.Producers producers and cfg.Consumers consumers against q,
// releases them together, waits for all of them and then drains whatever
// the consumers left behind.
//
// Queues implementing queue.ContextRemover are read with RemoveContext, and
// consumers blocked in it are released once every value has been collected.
//
// Run returns an error only if cfg is invalid, an Add failed or ctx was done
// before the run finished. Use Result.Verify to check the drained values.
func Run(ctx context.Context, q queue.Queue[int], cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}

	logger := cfg.Logger
	total := int64(cfg.Total())
	logger.Info().
		Int("producers", cfg.Producers).
		Int("consumers", cfg.Consumers).
		Int("per_producer", cfg.PerProducer).
		Int("per_consumer", cfg.PerConsumer).
		Bool("marked", cfg.Marked).
		Log("stress run starting")

	g, gctx := errgroup.WithContext(ctx)
	stop, release := watchContext(gctx)
	defer release()

	// collected reaching total cancels drainCtx, waking blocked removers
	drainCtx, cancelDrain := context.WithCancel(gctx)
	defer cancelDrain()

	remove := func() (int, bool, error) {
		v, ok := q.Remove()
		return v, ok, nil
	}
	if cr, ok := q.(queue.ContextRemover[int]); ok {
		remove = func() (int, bool, error) {
			v, err := cr.RemoveContext(drainCtx)
			return v, err == nil, err
		}
	}

	var (
		collected  atomic.Int64
		emptyPolls atomic.Int64
		ticker     = newProgressTicker(cfg.ProgressInterval)
		drained    = make([][]int, cfg.Consumers)
		gate       = make(chan struct{})
	)

	for p := 0; p < cfg.Producers; p++ {
		g.Go(func() error {
			<-gate
			for i := 0; i < cfg.PerProducer; i++ {
				if stop.Done() {
					return context.Cause(gctx)
				}
				if err := q.Add(cfg.value(p, i)); err != nil {
					return fmt.Errorf("stress: producer %d: %w", p, err)
				}
			}
			return nil
		})
	}

	for c := 0; c < cfg.Consumers; c++ {
		g.Go(func() error {
			<-gate
			local := make([]int, 0, cfg.PerProducer)
			defer func() { drained[c] = local }()

			for attempt := 0; cfg.PerConsumer == 0 || attempt < cfg.PerConsumer; attempt++ {
				if cfg.PerConsumer == 0 && collected.Load() >= total {
					return nil
				}
				if stop.Done() {
					return context.Cause(gctx)
				}

				v, ok, err := remove()
				if err != nil {
					if gctx.Err() != nil {
						return context.Cause(gctx)
					}
					// everything was collected while we waited
					return nil
				}
				if !ok {
					emptyPolls.Add(1)
					runtime.Gosched()
					continue
				}

				local = append(local, v)
				n := collected.Add(1)
				if n == total {
					cancelDrain()
				}
				if ticker.Tick() {
					logger.Debug().
						Int64("collected", n).
						Int64("total", total).
						Log("stress progress")
				}
			}
			return nil
		})
	}

	start := time.Now()
	close(gate)
	if err := g.Wait(); err != nil {
		logger.Err().Err(err).Log("stress run aborted")
		return nil, err
	}
	elapsed := time.Since(start)

	res := &Result{
		Drained:    drained,
		EmptyPolls: emptyPolls.Load(),
		Elapsed:    elapsed,
	}
	for !q.IsEmpty() {
		v, ok := q.Remove()
		if !ok {
			break
		}
		res.Leftover = append(res.Leftover, v)
	}

	logger.Info().
		Dur("elapsed", res.Elapsed).
		Int64("collected", collected.Load()).
		Int("leftover", len(res.Leftover)).
		Int64("empty_polls", res.EmptyPolls).
		Log("stress run finished")
	return res, nil
}
