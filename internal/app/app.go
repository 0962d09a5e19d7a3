// Package app wires configuration, logging and the event hub into the
// eventhub soak harness and manages its lifecycle.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/eventhub/internal/config"
	"github.com/dshills/eventhub/internal/config/watcher"
	"github.com/dshills/eventhub/internal/event"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// EnvFile is an optional dotenv file consulted for EVENTHUB_*
	// overrides after the process environment.
	EnvFile string

	// Workers overrides pool.workers when non-negative.
	Workers int

	// LogLevel overrides log.level when set.
	LogLevel string

	// LogFormat overrides log.format when set.
	LogFormat string

	// Iterations is the number of soak iterations. Zero runs until the
	// context is cancelled.
	Iterations int

	// Interval is the pause between iterations.
	Interval time.Duration

	// MaxPoolSize bounds the random pool size chosen each iteration.
	// Zero disables random resizing.
	MaxPoolSize int

	// Watch enables live pool resizing from config file changes.
	Watch bool

	// ReportInterval is how often hub statistics are logged during the
	// run. Zero disables periodic reports.
	ReportInterval time.Duration

	// LogOutput receives log output. Nil selects stderr.
	LogOutput io.Writer
}

// Application owns the hub and drives the soak loop.
type Application struct {
	opts   Options
	config config.Config
	lookup config.LookupFunc
	logger *slog.Logger
	hub    *event.Hub

	watcher *watcher.Watcher
	running atomic.Bool

	deliveries atomic.Uint64
	failures   atomic.Uint64
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run executes the soak loop until the configured iterations complete or
// ctx is cancelled. It returns ErrDispatchFailed if any dispatch reported
// a rejected delivery.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	app.logger.Info("soak run starting",
		slog.Int("workers", app.hub.Workers()),
		slog.Int("iterations", app.opts.Iterations),
		slog.Duration("interval", app.opts.Interval),
	)

	g, ctx := errgroup.WithContext(ctx)
	finished := make(chan struct{})
	g.Go(func() error {
		defer close(finished)
		return newSoak(app).run(ctx)
	})
	g.Go(func() error {
		app.report(ctx, finished)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	stats := app.hub.Stats()
	app.logger.Info("soak run finished",
		slog.Uint64("dispatches", stats.Dispatches),
		slog.Uint64("submitted", stats.Submitted),
		slog.Uint64("submit_failures", stats.SubmitFailures),
		slog.Uint64("pool_resets", stats.PoolResets),
		slog.Uint64("failed_dispatches", app.failures.Load()),
	)

	if app.failures.Load() > 0 {
		return ErrDispatchFailed
	}
	return nil
}

// Shutdown stops the watcher and the hub, waiting for queued deliveries.
func (app *Application) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Pool.DrainTimeout.Std())
	defer cancel()

	if app.watcher != nil {
		_ = app.watcher.Close()
	}

	if err := app.hub.Stop(ctx); err != nil && err != event.ErrHubStopped {
		app.logger.Warn("event hub shutdown incomplete", slog.String("error", err.Error()))
	}
}

// report logs hub statistics every ReportInterval until finished closes.
func (app *Application) report(ctx context.Context, finished <-chan struct{}) {
	if app.opts.ReportInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.opts.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-finished:
			return
		case <-ticker.C:
			stats := app.hub.Stats()
			app.logger.Info("hub stats",
				slog.Int("workers", stats.Pool.Workers),
				slog.Int("listeners", stats.Listeners),
				slog.Uint64("dispatches", stats.Dispatches),
				slog.Uint64("submit_failures", stats.SubmitFailures),
				slog.Int("queue_depth", stats.Pool.QueueDepth),
				slog.Uint64("deliveries", app.deliveries.Load()),
			)
		}
	}
}

// reload re-reads the config file and resizes the pool to match.
func (app *Application) reload(path string) {
	cfg, err := config.LoadWithEnv(path, app.lookup)
	if err != nil {
		app.logger.Warn("config reload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if err := app.hub.ResetPool(cfg.Pool.Workers); err != nil {
		app.logger.Warn("pool resize failed", slog.String("error", err.Error()))
		return
	}
	app.logger.Info("pool resized from config", slog.Int("workers", app.hub.Workers()))
}

// Hub returns the event hub.
func (app *Application) Hub() *event.Hub {
	return app.hub
}

// Config returns the resolved configuration.
func (app *Application) Config() config.Config {
	return app.config
}

// Deliveries returns how many listener invocations have completed.
func (app *Application) Deliveries() uint64 {
	return app.deliveries.Load()
}

func logOutput(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}
