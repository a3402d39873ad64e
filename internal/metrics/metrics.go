// Package metrics exports container contention as Prometheus counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yarhoo/ConcurrentQueue/queue"
)

const namespace = "cq"

// Observer implements queue.Observer on top of two counter vectors labelled
// by container kind and operation.
type Observer struct {
	casFailures *prometheus.CounterVec
	backoff     *prometheus.CounterVec
}

var _ queue.Observer = (*Observer)(nil)

// New creates an Observer and registers its collectors with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		casFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cas_failures_total",
			Help:      "Number of CAS operations lost to a concurrent mutation.",
		}, []string{"container", "op"}),
		backoff: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backoff_seconds_total",
			Help:      "Time spent waiting between CAS retries.",
		}, []string{"container", "op"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{o.casFailures, o.backoff} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

func (o *Observer) CASFailed(kind queue.Kind, op queue.Op) {
	o.casFailures.WithLabelValues(string(kind), string(op)).Inc()
}

func (o *Observer) BackedOff(kind queue.Kind, op queue.Op, d time.Duration) {
	o.backoff.WithLabelValues(string(kind), string(op)).Add(d.Seconds())
}

// CASFailures returns the collector behind cq_cas_failures_total.
func (o *Observer) CASFailures() *prometheus.CounterVec { return o.casFailures }

// Backoff returns the collector behind cq_backoff_seconds_total.
func (o *Observer) Backoff() *prometheus.CounterVec { return o.backoff }

// Totals sums the CAS failures recorded for kind across all operations.
func (o *Observer) Totals(kind queue.Kind) (failures float64, backoff time.Duration) {
	for _, op := range []queue.Op{queue.OpAdd, queue.OpRemove} {
		failures += counterValue(o.casFailures.WithLabelValues(string(kind), string(op)))
		backoff += time.Duration(counterValue(o.backoff.WithLabelValues(string(kind), string(op))) * float64(time.Second))
	}
	return failures, backoff
}
