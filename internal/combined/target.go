package combined

import (
	"runtime"
	"sync"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

// Target is the shape shared by every benchmarked transport: producers offer
// values and consumers poll for them.
type Target interface {
	// Offer tries to hand v over. Bounded transports return false when full.
	Offer(producer uint64, v int) bool

	// Poll takes one value, returning false if none was ready.
	Poll() (int, bool)
}

// FromQueue adapts an unbounded container. Offer fails only if Add does.
func FromQueue(q queue.Queue[int]) Target {
	return queueTarget{q: q}
}

type queueTarget struct {
	q queue.Queue[int]
}

func (t queueTarget) Offer(_ uint64, v int) bool { return t.q.Add(v) == nil }

func (t queueTarget) Poll() (int, bool) {
	// never block in a polling loop
	if t.q.IsEmpty() {
		return 0, false
	}
	return t.q.Remove()
}

// FromChannel adapts a buffered channel of the given capacity.
func FromChannel(size int) Target {
	return chanTarget(make(chan int, size))
}

type chanTarget chan int

func (c chanTarget) Offer(_ uint64, v int) bool {
	select {
	case c <- v:
		return true
	default:
		return false
	}
}

func (c chanTarget) Poll() (int, bool) {
	select {
	case v := <-c:
		return v, true
	default:
		return 0, false
	}
}

// Funcs adapts a pair of functions, for transports whose element type is
// not int.
type Funcs struct {
	OfferFunc func(producer uint64, v int) bool
	PollFunc  func() (int, bool)
}

func (f Funcs) Offer(producer uint64, v int) bool { return f.OfferFunc(producer, v) }

func (f Funcs) Poll() (int, bool) { return f.PollFunc() }

// Transfer runs producers goroutines offering perProducer values each while
// a single consumer polls, and returns the sum of everything received.
// Producer p offers p*perProducer+i, so the expected sum is n*(n-1)/2 for
// n = producers*perProducer.
func Transfer(t Target, producers, perProducer int) int {
	total := producers * perProducer

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !t.Offer(uint64(p), p*perProducer+i) {
					runtime.Gosched()
				}
			}
		}()
	}

	sum := 0
	for got := 0; got < total; {
		v, ok := t.Poll()
		if !ok {
			runtime.Gosched()
			continue
		}
		sum += v
		got++
	}
	wg.Wait()
	return sum
}
