// Package daemon runs the pipeline continuously: it watches source
// directories for changes, rebuilds after a quiet period, rebuilds on a
// fixed interval, and serves Prometheus metrics.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/eventstore"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/metrics"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

// Daemon owns the long-running build loop and its supporting services.
type Daemon struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline

	registry  *prometheus.Registry
	scheduler gocron.Scheduler
	watcher   *Watcher

	// closers collects shutdown hooks for sinks and stores.
	closers []func() error

	rebuild chan string
}

// New assembles a daemon from the configuration. The pipeline is built once
// and reused across rebuilds; plugin options do not change at runtime.
func New(cfg *config.Config, reg *plugin.Registry) (*Daemon, error) {
	if cfg.Daemon == nil {
		return nil, fmt.Errorf("daemon section missing from configuration")
	}

	p, err := pipeline.FromConfig(cfg, reg)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:      cfg,
		pipeline: p,
		rebuild:  make(chan string, 1),
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.registry = promReg
	p.WithRecorder(metrics.NewPrometheusRecorder(promReg))

	var sinks pipeline.MultiSink
	if cfg.Daemon.EventStore != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Daemon.EventStore)
		if err != nil {
			return nil, fmt.Errorf("open event store: %w", err)
		}
		d.closers = append(d.closers, store.Close)
		sinks = append(sinks, pipeline.StoreSink{Store: store})
	}
	if cfg.Daemon.NATSURL != "" {
		sink, err := pipeline.NewNATSSink(cfg.Daemon.NATSURL, cfg.Daemon.Subject)
		if err != nil {
			return nil, fmt.Errorf("connect event sink: %w", err)
		}
		d.closers = append(d.closers, sink.Close)
		sinks = append(sinks, sink)
	}
	if len(sinks) > 0 {
		p.WithEventSink(sinks)
	}

	return d, nil
}

// Run blocks until ctx is cancelled, rebuilding on file changes and on the
// configured interval. An initial build runs immediately.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.shutdown()

	if len(d.cfg.Daemon.Watch) > 0 {
		w, err := NewWatcher(d.cfg.Daemon.Watch, time.Duration(d.cfg.Daemon.DebounceMS)*time.Millisecond)
		if err != nil {
			return err
		}
		d.watcher = w
		go w.Run(ctx, d.requestRebuild)
	}

	if err := d.startScheduler(); err != nil {
		return err
	}

	if d.cfg.Daemon.MetricsAddr != "" {
		d.startMetricsServer(ctx)
	}

	d.runBuild(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon stopping")
			return nil
		case reason := <-d.rebuild:
			d.runBuild(ctx, reason)
		}
	}
}

// requestRebuild coalesces triggers: if a rebuild is already queued, the new
// trigger is dropped.
func (d *Daemon) requestRebuild(reason string) {
	select {
	case d.rebuild <- reason:
	default:
	}
}

func (d *Daemon) runBuild(ctx context.Context, reason string) {
	slog.Info("Rebuilding", slog.String("reason", reason))
	report, err := d.pipeline.Run(ctx, d.cfg.Output.Directory)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild finished",
		logfields.BuildID(report.BuildID),
		logfields.Count(len(report.Documents)))
}

func (d *Daemon) startScheduler() error {
	interval, err := d.cfg.Daemon.IntervalDuration()
	if err != nil {
		return err
	}
	if interval == 0 {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { d.requestRebuild("interval") }),
		gocron.WithName("periodic-build"),
	)
	if err != nil {
		return fmt.Errorf("failed to create periodic build job: %w", err)
	}
	d.scheduler = s
	s.Start()
	slog.Info("Periodic rebuilds enabled", slog.Duration("interval", interval))
	return nil
}

func (d *Daemon) startMetricsServer(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: d.cfg.Daemon.MetricsAddr, Handler: mux}
	go func() {
		slog.Info("Metrics server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
}

func (d *Daemon) shutdown() {
	if d.scheduler != nil {
		if err := d.scheduler.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if d.watcher != nil {
		_ = d.watcher.Close()
	}
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil {
			slog.Warn("Shutdown hook failed", logfields.Error(err))
		}
	}
}
