package event

import "github.com/google/uuid"

// Subscription is the handle returned by Subscribe. It identifies one
// registration and is consumed by Unsubscribe; using it again afterwards
// has no effect. The zero Subscription is valid and refers to nothing.
type Subscription struct {
	event ID
	tag   TypeTag
	token uuid.UUID
}

// Event returns the event ID the subscription was registered for.
func (s Subscription) Event() ID {
	return s.event
}

// IsZero returns true if the subscription refers to no registration.
func (s Subscription) IsZero() bool {
	return s.token == uuid.Nil
}

// entry is one registered listener. It is owned by the Registry.
type entry struct {
	event    ID
	tag      TypeTag
	token    uuid.UUID
	listener listener
}

// newEntry creates an entry with a fresh token.
func newEntry(id ID, tag TypeTag, l listener) *entry {
	return &entry{
		event:    id,
		tag:      tag,
		token:    uuid.New(),
		listener: l,
	}
}

// subscription returns the handle for the entry.
func (e *entry) subscription() Subscription {
	return Subscription{event: e.event, tag: e.tag, token: e.token}
}
