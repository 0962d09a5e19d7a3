package event

import (
	"slices"

	"github.com/google/uuid"
)

// Registry stores listener entries bucketed by event ID and payload type.
// It is not safe for concurrent use; the Hub serializes access.
type Registry struct {
	buckets map[ID]map[TypeTag][]*entry
	byToken map[uuid.UUID]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		buckets: make(map[ID]map[TypeTag][]*entry),
		byToken: make(map[uuid.UUID]*entry),
	}
}

// Add inserts an entry into its (event, tag) bucket.
func (r *Registry) Add(e *entry) {
	tags, ok := r.buckets[e.event]
	if !ok {
		tags = make(map[TypeTag][]*entry)
		r.buckets[e.event] = tags
	}
	tags[e.tag] = append(tags[e.tag], e)
	r.byToken[e.token] = e
}

// Remove deletes the entry registered under token, provided it belongs to
// the (id, tag) bucket. Returns false if no such entry exists.
func (r *Registry) Remove(id ID, tag TypeTag, token uuid.UUID) bool {
	target, ok := r.byToken[token]
	if !ok || target.event != id || target.tag != tag {
		return false
	}

	tags := r.buckets[id]
	list := tags[tag]
	for i, e := range list {
		if e != target {
			continue
		}
		// slices.Delete zeroes the vacated tail slot.
		next := slices.Delete(list, i, i+1)
		if len(next) == 0 {
			delete(tags, tag)
		} else {
			tags[tag] = next
		}
		if len(tags) == 0 {
			delete(r.buckets, id)
		}
		delete(r.byToken, token)
		return true
	}

	// Indexed but missing from its bucket; drop the dangling index entry.
	delete(r.byToken, token)
	return false
}

// Match returns the entries that should receive a payload tagged tag for
// event id: the exact-type bucket followed by the wildcard bucket. The
// returned slice is a copy.
func (r *Registry) Match(id ID, tag TypeTag) []*entry {
	tags, ok := r.buckets[id]
	if !ok {
		return nil
	}

	var typed []*entry
	if !tag.IsWildcard() {
		typed = tags[tag]
	}
	wild := tags[Wildcard]
	if len(typed)+len(wild) == 0 {
		return nil
	}

	result := make([]*entry, 0, len(typed)+len(wild))
	result = append(result, typed...)
	result = append(result, wild...)
	return result
}

// Count returns the total number of registered entries.
func (r *Registry) Count() int {
	return len(r.byToken)
}

// CountEvent returns the number of entries registered for event id across
// all payload types, wildcards included.
func (r *Registry) CountEvent(id ID) int {
	count := 0
	for _, list := range r.buckets[id] {
		count += len(list)
	}
	return count
}

// CountBucket returns the number of entries in the (id, tag) bucket.
func (r *Registry) CountBucket(id ID, tag TypeTag) int {
	return len(r.buckets[id][tag])
}

// Clear removes all entries.
func (r *Registry) Clear() {
	r.buckets = make(map[ID]map[TypeTag][]*entry)
	r.byToken = make(map[uuid.UUID]*entry)
}
