package app

import (
	"log/slog"
	"os"

	"github.com/dshills/eventhub/internal/config"
	"github.com/dshills/eventhub/internal/config/watcher"
	"github.com/dshills/eventhub/internal/event"
	"github.com/dshills/eventhub/internal/logging"
)

// bootstrapper initializes application components in dependency order.
type bootstrapper struct {
	app  *Application
	opts Options
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, opts: app.opts}
}

func (b *bootstrapper) bootstrap() error {
	if err := b.initConfig(); err != nil {
		return err
	}
	if err := b.initLogger(); err != nil {
		return err
	}
	if err := b.initHub(); err != nil {
		return err
	}
	if err := b.initWatcher(); err != nil {
		b.app.Shutdown()
		return err
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	lookup := config.LookupFunc(os.LookupEnv)
	if b.opts.EnvFile != "" {
		var err error
		lookup, err = config.EnvFileLookup(b.opts.EnvFile)
		if err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	b.app.lookup = lookup

	cfg, err := config.LoadWithEnv(b.opts.ConfigPath, lookup)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	if b.opts.Workers >= 0 {
		cfg.Pool.Workers = b.opts.Workers
	}
	if b.opts.LogLevel != "" {
		cfg.Log.Level = b.opts.LogLevel
	}
	if b.opts.LogFormat != "" {
		cfg.Log.Format = b.opts.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	logger, err := logging.New(logOutput(b.opts.LogOutput), b.app.config.Log)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.logger = logger
	return nil
}

func (b *bootstrapper) initHub() error {
	cfg := b.app.config.Pool
	hub, err := event.New(
		event.WithWorkerCount(cfg.Workers),
		event.WithQueueSize(cfg.QueueSize),
		event.WithDrainTimeout(cfg.DrainTimeout.Std()),
		event.WithLogger(b.app.logger.With(slog.String("component", "hub"))),
	)
	if err != nil {
		return &InitError{Component: "event hub", Err: err}
	}
	b.app.hub = hub
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.opts.Watch || b.opts.ConfigPath == "" {
		return nil
	}

	w, err := watcher.New(b.opts.ConfigPath, b.app.reload,
		watcher.WithLogger(b.app.logger),
	)
	if err != nil {
		return &InitError{Component: "config watcher", Err: err}
	}
	b.app.watcher = w
	b.app.logger.Info("watching config", slog.String("path", w.Path()))
	return nil
}
