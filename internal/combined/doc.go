// Package combined benchmarks the queue containers against other transports
// (buffered channels and a sharded lock-free ring) under the same
// producer/consumer shapes.
//
// These benchmarks are more representative of real-world performance
// than isolated micro-benchmarks, as they capture the cost of contention
// between goroutines rather than a single goroutine's add/remove pair.
package combined
