package dispatch

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool is a task-execution facility. Implementations must be safe for
// concurrent use.
type Pool interface {
	// Submit schedules the task for asynchronous execution. It never
	// blocks waiting for capacity.
	Submit(task Task) error

	// Stop stops accepting new tasks. Whether queued tasks are drained
	// or discarded is up to the implementation.
	Stop(ctx context.Context) error

	// Workers returns the number of workers executing tasks.
	Workers() int

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats
}

// Factory constructs a running Pool with the given number of workers.
// Zero selects an implementation-chosen default.
type Factory func(workers int) (Pool, error)

// NewWorkerPoolFactory returns a Factory producing WorkerPools configured
// with opts.
func NewWorkerPoolFactory(opts ...PoolOption) Factory {
	return func(workers int) (Pool, error) {
		return NewWorkerPool(workers, opts...), nil
	}
}

// PoolStats contains statistics for a pool.
type PoolStats struct {
	// Workers is the number of worker goroutines.
	Workers int

	// Submitted is the number of tasks accepted into the queue.
	Submitted uint64

	// Processed is the number of tasks that have been executed.
	Processed uint64

	// Succeeded is the number of tasks that returned normally.
	Succeeded uint64

	// Panicked is the number of tasks that panicked.
	Panicked uint64

	// Dropped is the number of tasks rejected because the queue was full.
	Dropped uint64

	// QueueDepth is the current number of tasks waiting in the queue.
	QueueDepth int

	// TotalDuration is the cumulative time spent executing tasks.
	TotalDuration time.Duration

	// AvgDuration is the average task execution time.
	AvgDuration time.Duration
}

// DefaultQueueSize is the queue capacity used when none is configured.
const DefaultQueueSize = 10000

// WorkerPool executes tasks on a fixed set of goroutines fed by a bounded
// queue. It starts on construction and drains its queue on Stop.
type WorkerPool struct {
	workers      int
	queueSize    int
	panicHandler PanicHandler

	// mu guards the queue against a send racing its close in Stop.
	mu      sync.RWMutex
	queue   chan Task
	running atomic.Bool
	wg      sync.WaitGroup

	submitted   atomic.Uint64
	processed   atomic.Uint64
	succeeded   atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	totalTimeNs atomic.Int64
}

// PoolOption configures a WorkerPool.
type PoolOption func(*WorkerPool)

// WithQueueSize sets the task queue size.
func WithQueueSize(size int) PoolOption {
	return func(p *WorkerPool) {
		if size > 0 {
			p.queueSize = size
		}
	}
}

// WithPanicHandler sets the handler invoked when a task panics.
func WithPanicHandler(h PanicHandler) PoolOption {
	return func(p *WorkerPool) {
		p.panicHandler = h
	}
}

// NewWorkerPool creates and starts a worker pool. A non-positive worker
// count selects runtime.NumCPU().
func NewWorkerPool(workers int, opts ...PoolOption) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &WorkerPool{
		workers:   workers,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.queue = make(chan Task, p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit adds a task to the queue.
// Returns ErrQueueFull if the queue is at capacity and ErrNotRunning once
// Stop has been called.
func (p *WorkerPool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return ErrNotRunning
	}

	select {
	case p.queue <- task:
		p.submitted.Add(1)
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// Stop stops the pool gracefully.
// Queued tasks are still executed; Stop waits for them to finish or until
// the context is done. Calling Stop on a stopped pool returns ErrNotRunning.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker processes tasks from the queue until it is closed.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	executor := NewExecutor(WithExecutorPanicHandler(p.panicHandler))

	for task := range p.queue {
		result := executor.Execute(task)

		p.processed.Add(1)
		p.totalTimeNs.Add(result.Duration.Nanoseconds())
		if result.Panicked {
			p.panicked.Add(1)
		} else {
			p.succeeded.Add(1)
		}
	}
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true until Stop is called.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueueDepth returns the current number of tasks in the queue.
func (p *WorkerPool) QueueDepth() int {
	return len(p.queue)
}

// Stats returns pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	processed := p.processed.Load()
	totalNs := p.totalTimeNs.Load()

	var avgNs int64
	if processed > 0 {
		avgNs = totalNs / int64(processed)
	}

	return PoolStats{
		Workers:       p.workers,
		Submitted:     p.submitted.Load(),
		Processed:     processed,
		Succeeded:     p.succeeded.Load(),
		Panicked:      p.panicked.Load(),
		Dropped:       p.dropped.Load(),
		QueueDepth:    p.QueueDepth(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}
