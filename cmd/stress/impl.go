package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

var allKinds = []queue.Kind{queue.KindBlocking, queue.KindSpin, queue.KindLockFree, queue.KindStack}

// parseKinds accepts a comma separated list of container kinds, or "all".
func parseKinds(s string) ([]queue.Kind, error) {
	if strings.TrimSpace(s) == "all" {
		return allKinds, nil
	}
	var kinds []queue.Kind
	for _, part := range strings.Split(s, ",") {
		k := queue.Kind(strings.TrimSpace(part))
		switch k {
		case queue.KindBlocking, queue.KindSpin, queue.KindLockFree, queue.KindStack:
			kinds = append(kinds, k)
		default:
			return nil, fmt.Errorf("unknown implementation %q (want blocking, spin, lockfree, stack or all)", part)
		}
	}
	return kinds, nil
}

// newQueue builds the container for kind. A negative backoff keeps the
// container's default.
func newQueue(kind queue.Kind, backoff time.Duration, obs queue.Observer) (queue.Queue[int], error) {
	opts := []queue.Option{queue.WithObserver(obs)}
	if backoff >= 0 {
		opts = append(opts, queue.WithBackoff(backoff))
	}
	switch kind {
	case queue.KindBlocking:
		return queue.NewBlockingQueue[int](), nil
	case queue.KindSpin:
		return queue.NewSpinQueue[int](opts...), nil
	case queue.KindLockFree:
		return queue.NewLockFreeQueue[int](opts...), nil
	case queue.KindStack:
		return queue.NewLockFreeStack[int](opts...), nil
	}
	return nil, fmt.Errorf("unknown implementation %q", kind)
}
