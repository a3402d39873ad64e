package main

import (
	"encoding/json"
	"time"

	"github.com/google/renameio/v2"

	"github.com/yarhoo/ConcurrentQueue/internal/stress"
	"github.com/yarhoo/ConcurrentQueue/queue"
)

type report struct {
	Producers   int         `json:"producers"`
	Consumers   int         `json:"consumers"`
	PerProducer int         `json:"per_producer"`
	PerConsumer int         `json:"per_consumer"`
	Marked      bool        `json:"marked"`
	Runs        []reportRun `json:"runs"`
}

type reportRun struct {
	Impl        queue.Kind    `json:"impl"`
	Values      int           `json:"values"`
	Leftover    int           `json:"leftover"`
	EmptyPolls  int64         `json:"empty_polls"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	CASFailures float64       `json:"cas_failures"`
	Backoff     time.Duration `json:"backoff_ns"`
	Error       string        `json:"error,omitempty"`
}

func newReport(cfg stress.Config) *report {
	return &report{
		Producers:   cfg.Producers,
		Consumers:   cfg.Consumers,
		PerProducer: cfg.PerProducer,
		PerConsumer: cfg.PerConsumer,
		Marked:      cfg.Marked,
	}
}

// write replaces path atomically, so a reader never sees a partial report.
func (r *report) write(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, append(b, '\n'), 0o644)
}
