package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dshills/eventhub/internal/event"
)

// soakEvent is the event number every soak listener subscribes to.
const soakEvent event.ID = 1

// churnListeners is how many short-lived listeners each iteration adds and
// removes.
const churnListeners = 5

// Sample is the struct payload dispatched by the soak loop.
type Sample struct {
	A int
}

// soak repeatedly resizes the pool, churns subscriptions and dispatches
// against a fixed set of long-lived listeners.
type soak struct {
	app    *Application
	hub    *event.Hub
	logger *slog.Logger
	sample Sample
}

func newSoak(app *Application) *soak {
	return &soak{
		app:    app,
		hub:    app.hub,
		logger: app.logger.With(slog.String("component", "soak")),
		sample: Sample{A: 3},
	}
}

// run returns nil when ctx is cancelled mid-run.
func (s *soak) run(ctx context.Context) error {
	s.subscribePersistent()

	for i := 0; s.app.opts.Iterations == 0 || i < s.app.opts.Iterations; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.iterate(); err != nil {
			return err
		}
		if !sleep(ctx, s.app.opts.Interval) {
			return nil
		}
	}
	return nil
}

// subscribePersistent registers the listeners that live for the whole run:
// one for Sample payloads, one for int payloads and one wildcard.
func (s *soak) subscribePersistent() {
	event.Subscribe(s.hub, soakEvent, s.onSample)
	event.Subscribe(s.hub, soakEvent, func(id event.ID, v *int) {
		s.app.deliveries.Add(1)
		s.logger.Debug("int delivered", slog.Any("event", id), slog.Int("value", *v))
	})
	s.hub.SubscribeAny(soakEvent, func(id event.ID, payload any) {
		s.app.deliveries.Add(1)
		s.logger.Debug("wildcard delivered", slog.Any("event", id), slog.Any("payload", payload))
	})
}

func (s *soak) onSample(id event.ID, v *Sample) {
	s.app.deliveries.Add(1)
	s.logger.Debug("sample delivered", slog.Any("event", id), slog.Int("a", v.A))
}

func (s *soak) iterate() error {
	if n := s.app.opts.MaxPoolSize; n > 0 {
		if err := s.hub.ResetPool(rand.IntN(n)); err != nil {
			return err
		}
	}

	subs := make([]event.Subscription, 0, churnListeners)
	for range churnListeners {
		subs = append(subs, event.Subscribe(s.hub, soakEvent, s.onSample))
	}
	for _, sub := range subs {
		s.hub.Unsubscribe(sub.Event(), sub)
	}

	ok := event.Dispatch(s.hub, soakEvent, s.sample)
	ok = event.Dispatch(s.hub, soakEvent, 1) && ok
	if !ok {
		s.app.failures.Add(1)
		s.logger.Warn("dispatch failed", slog.Any("event", soakEvent))
	}
	return nil
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
