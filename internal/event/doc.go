// Package event provides the type-indexed event hub.
//
// The hub routes a payload published under an event ID to every listener
// registered for that ID and the payload's Go type, plus every wildcard
// listener for that ID. Delivery is asynchronous: each matching listener
// becomes one task on a worker pool, and Dispatch returns as soon as the
// tasks are submitted.
//
// # Architecture
//
//	         Subscribe / Unsubscribe
//	                   │
//	                   ▼
//	┌─────────────────────────────────────┐
//	│              Registry               │
//	│  ID → TypeTag → []entry             │
//	│  token → entry                      │
//	└─────────────────────────────────────┘
//	                   │ snapshot (under hub lock)
//	                   ▼
//	┌─────────────────────────────────────┐
//	│             Dispatch                │──── one Task per listener
//	└─────────────────────────────────────┘            │
//	                                                   ▼
//	                                     ┌────────────────────────────┐
//	                                     │  dispatch.Pool (swappable) │
//	                                     └────────────────────────────┘
//
// # Typed and Wildcard Listeners
//
// Typed listeners receive a *T and are only ever handed payloads of type T:
//
//	sub := event.Subscribe(hub, 7, func(id event.ID, p *Foo) {
//	    fmt.Println(p.X)
//	})
//	event.Dispatch(hub, 7, Foo{X: 5})
//
// Wildcard listeners receive every payload dispatched for their ID as an
// untyped pointer. No type check is performed; the listener is responsible
// for asserting the dynamic type it expects:
//
//	hub.SubscribeAny(7, func(id event.ID, p any) {
//	    if s, ok := p.(*string); ok {
//	        fmt.Println(*s)
//	    }
//	})
//
// # Payload Sharing
//
// Dispatch copies the payload once. All listeners for that dispatch share
// the same pointer and must treat it as read-only.
//
// # Subscriptions
//
// Subscribe returns a Subscription handle. Passing it to Unsubscribe
// removes exactly that registration. Unsubscribing an unknown, zero, or
// already-used handle does nothing. Revoking a subscription does not
// retract deliveries already submitted to the pool.
//
// # Resizing the Pool
//
// ResetPool replaces the worker pool with a fresh one of the requested
// size. The previous pool is stopped in the background and drains the work
// already queued on it; that work is never moved to the new pool.
package event
