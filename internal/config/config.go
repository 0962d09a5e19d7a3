// Package config provides configuration for the event hub and its
// command-line harness.
//
// Configuration is resolved in three steps, later steps overriding
// earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, if present
//  3. EVENTHUB_* environment variables
//
// Example file:
//
//	[pool]
//	workers = 8
//	queue_size = 4096
//	drain_timeout = "2s"
//
//	[log]
//	level = "debug"
//	format = "json"
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete configuration.
type Config struct {
	Pool PoolConfig `toml:"pool"`
	Log  LogConfig  `toml:"log"`
}

// PoolConfig configures the worker pool behind the hub.
type PoolConfig struct {
	// Workers is the number of worker goroutines. Zero selects one per CPU.
	Workers int `toml:"workers"`

	// QueueSize is the capacity of the pool's task queue.
	QueueSize int `toml:"queue_size"`

	// DrainTimeout bounds how long a replaced pool may finish queued work.
	DrainTimeout Duration `toml:"drain_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// Duration is a time.Duration that decodes from strings like "1.5s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			Workers:      0,
			QueueSize:    10000,
			DrainTimeout: Duration(5 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks every setting and returns the first problem found.
func (c Config) Validate() error {
	if c.Pool.Workers < 0 {
		return &ValidationError{Path: "pool.workers", Value: c.Pool.Workers, Message: "must not be negative"}
	}
	if c.Pool.QueueSize <= 0 {
		return &ValidationError{Path: "pool.queue_size", Value: c.Pool.QueueSize, Message: "must be positive"}
	}
	if c.Pool.DrainTimeout <= 0 {
		return &ValidationError{Path: "pool.drain_timeout", Value: c.Pool.DrainTimeout.Std(), Message: "must be positive"}
	}
	if !contains(validLevels, c.Log.Level) {
		return &ValidationError{
			Path:    "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLevels, ", ")),
		}
	}
	if !contains(validFormats, c.Log.Format) {
		return &ValidationError{
			Path:    "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of %s", strings.Join(validFormats, ", ")),
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
