package event

// listener is a type-erased callback. The payload is always a pointer to
// the hub's private copy of the dispatched value.
type listener interface {
	deliver(id ID, payload any)
}

// typedListener only sees payloads of type T.
type typedListener[T any] struct {
	fn func(ID, *T)
}

func (l typedListener[T]) deliver(id ID, payload any) {
	// Bucketing guarantees *T; a mismatch is dropped.
	p, ok := payload.(*T)
	if !ok {
		return
	}
	l.fn(id, p)
}

// wildcardListener sees every payload for its event as an untyped pointer.
type wildcardListener struct {
	fn func(ID, any)
}

func (l wildcardListener) deliver(id ID, payload any) {
	l.fn(id, payload)
}
