package event

import (
	"io"
	"log/slog"
	"time"

	"github.com/dshills/eventhub/internal/event/dispatch"
)

// Option configures a Hub.
type Option func(*hubConfig)

// hubConfig contains configuration for the hub.
type hubConfig struct {
	// workers is the initial pool size. Zero selects the pool default.
	workers int

	// queueSize is the per-pool task queue size for the default factory.
	queueSize int

	// drainTimeout bounds how long a replaced pool may drain.
	drainTimeout time.Duration

	// factory builds pools. Nil selects dispatch.NewWorkerPoolFactory.
	factory dispatch.Factory

	// logger receives hub diagnostics.
	logger *slog.Logger
}

// defaultHubConfig returns the default configuration.
func defaultHubConfig() hubConfig {
	return hubConfig{
		workers:      0,
		queueSize:    dispatch.DefaultQueueSize,
		drainTimeout: 5 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithWorkerCount sets the initial number of pool workers.
func WithWorkerCount(count int) Option {
	return func(c *hubConfig) {
		if count >= 0 {
			c.workers = count
		}
	}
}

// WithQueueSize sets the task queue size of pools built by the default
// factory. It has no effect when WithPoolFactory is used.
func WithQueueSize(size int) Option {
	return func(c *hubConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithDrainTimeout sets how long a pool replaced by ResetPool is given to
// finish its queued work.
func WithDrainTimeout(d time.Duration) Option {
	return func(c *hubConfig) {
		if d > 0 {
			c.drainTimeout = d
		}
	}
}

// WithPoolFactory sets the factory used to build worker pools.
func WithPoolFactory(f dispatch.Factory) Option {
	return func(c *hubConfig) {
		c.factory = f
	}
}

// WithLogger sets the hub logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *hubConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
