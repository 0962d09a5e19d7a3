package event

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dshills/eventhub/internal/event/dispatch"
)

// Hub is a type-indexed publish/subscribe dispatcher backed by a
// replaceable worker pool. All methods are safe for concurrent use.
type Hub struct {
	// mu serializes registry access and pool swaps.
	mu       sync.Mutex
	registry *Registry
	pool     dispatch.Pool
	stopped  bool

	factory dispatch.Factory
	config  hubConfig
	logger  *slog.Logger

	// retiring tracks pools replaced by ResetPool that are still draining.
	retiring sync.WaitGroup

	dispatches     atomic.Uint64
	submitted      atomic.Uint64
	submitFailures atomic.Uint64
	poolResets     atomic.Uint64
}

// Stats contains hub statistics.
type Stats struct {
	// Dispatches is the number of Dispatch calls.
	Dispatches uint64

	// Submitted is the number of delivery tasks accepted by a pool.
	Submitted uint64

	// SubmitFailures is the number of delivery tasks a pool rejected.
	SubmitFailures uint64

	// PoolResets is the number of successful ResetPool calls.
	PoolResets uint64

	// Listeners is the number of registered listeners.
	Listeners int

	// Pool holds statistics of the active pool.
	Pool dispatch.PoolStats
}

// New creates a hub and its initial worker pool.
func New(opts ...Option) (*Hub, error) {
	config := defaultHubConfig()
	for _, opt := range opts {
		opt(&config)
	}

	h := &Hub{
		registry: NewRegistry(),
		config:   config,
		logger:   config.logger,
	}

	h.factory = config.factory
	if h.factory == nil {
		h.factory = dispatch.NewWorkerPoolFactory(
			dispatch.WithQueueSize(config.queueSize),
			dispatch.WithPanicHandler(h.logPanic),
		)
	}

	pool, err := h.newPool(config.workers)
	if err != nil {
		return nil, err
	}
	h.pool = pool

	h.logger.Debug("event hub created", slog.Int("workers", pool.Workers()))
	return h, nil
}

// Subscribe registers fn for payloads of type T dispatched under id.
// A nil fn registers nothing and returns the zero Subscription.
func Subscribe[T any](h *Hub, id ID, fn func(ID, *T)) Subscription {
	if fn == nil {
		return Subscription{}
	}
	return h.add(newEntry(id, TagOf[T](), typedListener[T]{fn: fn}))
}

// SubscribeAny registers fn for every payload dispatched under id,
// whatever its type. fn receives a pointer to the payload as an untyped
// value and must check the dynamic type itself.
// A nil fn registers nothing and returns the zero Subscription.
func (h *Hub) SubscribeAny(id ID, fn func(ID, any)) Subscription {
	if fn == nil {
		return Subscription{}
	}
	return h.add(newEntry(id, Wildcard, wildcardListener{fn: fn}))
}

func (h *Hub) add(e *entry) Subscription {
	h.mu.Lock()
	h.registry.Add(e)
	h.mu.Unlock()
	return e.subscription()
}

// Unsubscribe removes the registration identified by sub from event id.
// Unknown, zero, already-removed, or foreign handles are ignored.
// Deliveries already submitted for the registration still run.
func (h *Hub) Unsubscribe(id ID, sub Subscription) {
	if sub.IsZero() {
		return
	}

	h.mu.Lock()
	h.registry.Remove(id, sub.tag, sub.token)
	h.mu.Unlock()
}

// Dispatch delivers a copy of payload to every listener registered for id
// with payload type T, and to every wildcard listener for id. Each delivery
// runs as its own task on the worker pool; Dispatch does not wait for them.
//
// Dispatch returns false if the pool rejected at least one delivery. The
// remaining deliveries are still submitted. A dispatch matching no
// listeners returns true.
func Dispatch[T any](h *Hub, id ID, payload T) bool {
	p := new(T)
	*p = payload
	return h.dispatch(id, TagOf[T](), p)
}

// DispatchAny is Dispatch for a payload whose static type is not known.
// Typed listeners are matched on the dynamic type of payload. A nil
// payload reaches wildcard listeners only, as a nil pointer.
func (h *Hub) DispatchAny(id ID, payload any) bool {
	tag := tagOfValue(payload)
	if tag.IsWildcard() {
		return h.dispatch(id, tag, nil)
	}

	p := reflect.New(tag.t)
	p.Elem().Set(reflect.ValueOf(payload))
	return h.dispatch(id, tag, p.Interface())
}

// dispatch fans payload, a pointer to the hub's private copy, out to the
// matching listeners.
func (h *Hub) dispatch(id ID, tag TypeTag, payload any) bool {
	h.dispatches.Add(1)

	h.mu.Lock()
	defer h.mu.Unlock()

	targets := h.registry.Match(id, tag)
	if len(targets) == 0 {
		return true
	}

	ok := true
	for _, e := range targets {
		l := e.listener
		err := h.pool.Submit(func() {
			l.deliver(id, payload)
		})
		if err != nil {
			ok = false
			h.submitFailures.Add(1)
			h.logger.Debug("event delivery rejected",
				slog.Any("event", id),
				slog.String("type", tag.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		h.submitted.Add(1)
	}
	return ok
}

// ResetPool replaces the worker pool with a new one of the given size.
// Zero selects the pool default. Work already submitted to the previous
// pool stays there; the previous pool is stopped in the background and
// drains within the configured drain timeout. If the new pool cannot be
// built, the current pool is kept and the error returned.
func (h *Hub) ResetPool(workers int) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return ErrHubStopped
	}

	pool, err := h.newPool(workers)
	if err != nil {
		h.mu.Unlock()
		return err
	}

	old := h.pool
	h.pool = pool
	h.retiring.Add(1)
	h.mu.Unlock()

	h.poolResets.Add(1)
	h.logger.Debug("worker pool replaced",
		slog.Int("workers", pool.Workers()),
		slog.Int("previous_workers", old.Workers()),
	)

	go h.retire(old)
	return nil
}

// retire stops a replaced pool.
func (h *Hub) retire(pool dispatch.Pool) {
	defer h.retiring.Done()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.drainTimeout)
	defer cancel()

	if err := pool.Stop(ctx); err != nil {
		h.logger.Warn("replaced worker pool did not drain",
			slog.Int("workers", pool.Workers()),
			slog.String("error", err.Error()),
		)
	}
}

// Stop stops the active pool, draining its queued deliveries, and waits
// for pools replaced earlier to finish draining, or until ctx is done.
// Dispatches after Stop submit nothing and return false when they match
// any listener.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return ErrHubStopped
	}
	h.stopped = true
	pool := h.pool
	h.mu.Unlock()

	if err := pool.Stop(ctx); err != nil && err != dispatch.ErrNotRunning {
		return fmt.Errorf("stopping worker pool: %w", err)
	}

	done := make(chan struct{})
	go func() {
		h.retiring.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Debug("event hub stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsStopped returns true once Stop has been called.
func (h *Hub) IsStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Workers returns the worker count of the active pool.
func (h *Hub) Workers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pool.Workers()
}

// Count returns the number of registered listeners.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Count()
}

// CountEvent returns the number of listeners registered for id, typed and
// wildcard.
func (h *Hub) CountEvent(id ID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.CountEvent(id)
}

// Clear removes every registration.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.Clear()
}

// Stats returns hub statistics.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	listeners := h.registry.Count()
	pool := h.pool
	h.mu.Unlock()

	return Stats{
		Dispatches:     h.dispatches.Load(),
		Submitted:      h.submitted.Load(),
		SubmitFailures: h.submitFailures.Load(),
		PoolResets:     h.poolResets.Load(),
		Listeners:      listeners,
		Pool:           pool.Stats(),
	}
}

func (h *Hub) newPool(workers int) (dispatch.Pool, error) {
	pool, err := h.factory(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	if pool == nil {
		return nil, ErrNilPool
	}
	return pool, nil
}

func (h *Hub) logPanic(value any, stack []byte) {
	h.logger.Error("event listener panicked",
		slog.Any("panic", value),
		slog.String("stack", string(stack)),
	)
}
