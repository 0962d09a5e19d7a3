// Package main is the entry point for the eventhub soak harness.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/eventhub/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrDispatchFailed) {
			fmt.Fprintln(os.Stderr, "Error: one or more dispatches were rejected")
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.EnvFile, "env-file", "", "Dotenv file with EVENTHUB_* overrides")
	flag.IntVar(&opts.Workers, "workers", -1, "Initial worker count (0 uses the CPU count, -1 keeps the config value)")
	flag.IntVar(&opts.Iterations, "iterations", 0, "Number of soak iterations (0 runs until interrupted)")
	flag.IntVar(&opts.Iterations, "n", 0, "Number of soak iterations (shorthand)")
	flag.DurationVar(&opts.Interval, "interval", 100*time.Millisecond, "Pause between iterations")
	flag.IntVar(&opts.MaxPoolSize, "max-pool", 100, "Upper bound for the random pool size per iteration (0 disables resizing)")
	flag.DurationVar(&opts.ReportInterval, "report", 0, "Interval between hub stats reports (0 disables)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFormat, "log-format", "", "Log format (text, json)")
	flag.BoolVar(&opts.Watch, "watch", false, "Resize the pool when the config file changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "eventhub - typed event hub soak harness\n\n")
		fmt.Fprintf(os.Stderr, "Usage: eventhub [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  eventhub                          Run until interrupted\n")
		fmt.Fprintf(os.Stderr, "  eventhub -n 50 -log-level debug   Run 50 iterations with delivery logs\n")
		fmt.Fprintf(os.Stderr, "  eventhub -c hub.toml -watch       Resize the pool from hub.toml edits\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("eventhub %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.Watch && opts.ConfigPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -watch requires -config")
		os.Exit(1)
	}

	return opts
}
