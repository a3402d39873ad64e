// Command stress runs concurrent producers and consumers against the queue
// containers and verifies that nothing is lost or duplicated.
//
// Usage:
//
//	go run ./cmd/stress -impl all -producers 10 -consumers 10 -n 1000 -per-consumer 1000
//	go run ./cmd/stress -impl spin -marked -backoff 50us -metrics-addr :9090
//	go run ./cmd/stress -config runs.toml -report result.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/yarhoo/ConcurrentQueue/internal/logging"
	"github.com/yarhoo/ConcurrentQueue/internal/metrics"
	"github.com/yarhoo/ConcurrentQueue/internal/stress"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "stress:", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		impl        = fs.String("impl", "all", "implementation: blocking, spin, lockfree, stack or all (comma separated)")
		producers   = fs.Int("producers", 10, "number of producer goroutines")
		consumers   = fs.Int("consumers", 10, "number of consumer goroutines")
		perProducer = fs.Int("n", 1000, "values added by each producer")
		marked      = fs.Bool("marked", false, "producer p adds p*n+i instead of 0..n-1")
		perConsumer = fs.Int("per-consumer", 0, "remove attempts per consumer (0 = drain until done)")
		backoff     = fs.Duration("backoff", -1, "retry delay after a lost CAS (negative = container default)")
		timeout     = fs.Duration("timeout", time.Minute, "abort a run after this long")
		progress    = fs.Duration("progress", 0, "interval between progress log lines (0 = off)")
		logLevel    = fs.String("log-level", "info", "log level")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
		reportPath  = fs.String("report", "", "write a JSON report of every run to this file")
		configPath  = fs.String("config", "", "read flag values from this TOML file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath != "" {
		if err := applyConfigFile(fs, *configPath); err != nil {
			return err
		}
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, level)

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
		logger.Debug().Logf(format, a...)
	}))
	defer undo()
	if err != nil {
		logger.Warning().Err(err).Log("failed to set GOMAXPROCS")
	}
	// every Add allocates a node; long runs are held to the cgroup memory limit
	if limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithProvider(memlimit.FromCgroup),
	); err != nil {
		logger.Debug().Err(err).Log("GOMEMLIMIT left unchanged")
	} else {
		logger.Debug().Int64("limit", limit).Log("set GOMEMLIMIT")
	}

	kinds, err := parseKinds(*impl)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	obs, err := metrics.New(reg)
	if err != nil {
		return err
	}

	if *metricsAddr != "" {
		shutdown, err := serveMetrics(*metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	cfg := stress.Config{
		Producers:        *producers,
		Consumers:        *consumers,
		PerProducer:      *perProducer,
		PerConsumer:      *perConsumer,
		Marked:           *marked,
		ProgressInterval: *progress,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rep := newReport(cfg)
	var errs []error
	for _, kind := range kinds {
		q, err := newQueue(kind, *backoff, obs)
		if err != nil {
			return err
		}

		cfg.Logger = logger.Clone().Str("impl", string(kind)).Logger()
		runCtx, cancel := context.WithTimeout(ctx, *timeout)
		res, err := stress.Run(runCtx, q, cfg)
		cancel()
		if err != nil {
			rep.Runs = append(rep.Runs, reportRun{Impl: kind, Error: err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}

		failures, backedOff := obs.Totals(kind)
		entry := reportRun{
			Impl:        kind,
			Values:      res.Len(),
			Leftover:    len(res.Leftover),
			EmptyPolls:  res.EmptyPolls,
			Elapsed:     res.Elapsed,
			CASFailures: failures,
			Backoff:     backedOff,
		}
		if err := res.Verify(cfg); err != nil {
			cfg.Logger.Err().Err(err).Log("verification failed")
			entry.Error = err.Error()
			rep.Runs = append(rep.Runs, entry)
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		rep.Runs = append(rep.Runs, entry)
		ops := float64(cfg.Total()) / res.Elapsed.Seconds()
		cfg.Logger.Info().
			Int("values", res.Len()).
			Int("leftover", len(res.Leftover)).
			Int64("empty_polls", res.EmptyPolls).
			Dur("elapsed", res.Elapsed).
			Float64("values_per_sec", ops).
			Float64("cas_failures", failures).
			Dur("backoff", backedOff).
			Log("verified")
	}

	if *reportPath != "" {
		if err := rep.write(*reportPath); err != nil {
			errs = append(errs, fmt.Errorf("report: %w", err))
		}
	}
	return errors.Join(errs...)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Err().Err(err).Log("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Log("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
