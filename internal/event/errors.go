package event

import "errors"

// Sentinel errors for the event hub.
var (
	// ErrHubStopped is returned when ResetPool or Stop is called on a
	// stopped hub.
	ErrHubStopped = errors.New("event hub is stopped")

	// ErrNilPool is returned when a pool factory returns no pool.
	ErrNilPool = errors.New("pool factory returned nil pool")
)
