// Package dispatch provides the task-execution facility used by the event
// hub to run listener callbacks off the publishing goroutine.
//
// # Pools
//
// A Pool accepts units of work (Task) and executes them asynchronously.
// The default implementation, WorkerPool, runs a fixed number of worker
// goroutines that consume a bounded queue:
//
//	pool := dispatch.NewWorkerPool(4, dispatch.WithQueueSize(1024))
//	if err := pool.Submit(func() { work() }); err != nil {
//	    // ErrQueueFull or ErrNotRunning
//	}
//	_ = pool.Stop(ctx) // stops accepting, drains what is queued
//
// A worker count of zero selects runtime.NumCPU().
//
// # Panic Recovery
//
// Every task runs through an Executor that recovers panics, so one bad
// listener never takes down a worker. Panics are reported via a
// configurable PanicHandler.
//
// # Factories
//
// The hub never constructs pools directly. It holds a Factory, which lets
// it build a fresh pool of a new size when it is resized at runtime and
// lets tests inject pools with scripted behavior.
package dispatch
