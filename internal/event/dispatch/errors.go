package dispatch

import "errors"

// Sentinel errors for the dispatch package.
var (
	// ErrNotRunning is returned when a task is submitted to a stopped pool.
	ErrNotRunning = errors.New("pool is not running")

	// ErrQueueFull is returned when the pool queue is at capacity.
	ErrQueueFull = errors.New("task queue is full")

	// ErrNilTask is returned when a nil task is submitted.
	ErrNilTask = errors.New("task cannot be nil")
)
