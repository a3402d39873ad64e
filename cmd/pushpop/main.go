// Command pushpop times single-goroutine add+remove pairs on each container.
//
// Usage:
//
//	go run ./cmd/pushpop -n 10000000
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

type result struct {
	name string
	dur  time.Duration
}

func measure(q queue.Queue[int], iterations int) time.Duration {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		q.Add(i)
		q.Remove()
	}
	return time.Since(start)
}

func main() {
	iterations := flag.Int("n", 10_000_000, "number of iterations")
	flag.Parse()

	fmt.Printf("Benchmarking add + remove (%d iterations)\n", *iterations)
	fmt.Println("─────────────────────────────────────────────────")

	candidates := []struct {
		name string
		q    queue.Queue[int]
	}{
		{"Blocking", queue.NewBlockingQueue[int]()},
		{"Spin", queue.NewSpinQueue[int]()},
		{"LockFree", queue.NewLockFreeQueue[int]()},
		{"Stack", queue.NewLockFreeStack[int]()},
	}

	results := make([]result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, result{name: c.name, dur: measure(c.q, *iterations)})
	}

	fmt.Printf("\nResults (add + remove per iteration):\n")
	fastest := results[0]
	for _, r := range results {
		perOp := float64(r.dur.Nanoseconds()) / float64(*iterations)
		fmt.Printf("  %-10s %v (%.2f ns/op)\n", r.name+":", r.dur, perOp)
		if r.dur < fastest.dur {
			fastest = r
		}
	}
	fmt.Printf("\n  Fastest:  %s\n", fastest.name)

	// Extrapolate to ops/second
	fmt.Printf("\nThroughput (theoretical max):\n")
	for _, r := range results {
		perOp := float64(r.dur.Nanoseconds()) / float64(*iterations)
		fmt.Printf("  %-10s %.2f M ops/sec\n", r.name+":", 1000/perOp)
	}
}
