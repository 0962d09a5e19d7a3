package event

import "reflect"

// ID identifies a class of events listeners subscribe to.
type ID uint32

// TypeTag identifies the payload type a listener bucket accepts.
// The zero TypeTag is Wildcard.
type TypeTag struct {
	t reflect.Type
}

// Wildcard is the tag of listeners that accept every payload type.
var Wildcard TypeTag

// TagOf returns the tag for payload type T.
func TagOf[T any]() TypeTag {
	return TypeTag{t: reflect.TypeFor[T]()}
}

// tagOfValue returns the tag for the dynamic type of v. A nil interface
// yields Wildcard, which only wildcard listeners match.
func tagOfValue(v any) TypeTag {
	if v == nil {
		return Wildcard
	}
	return TypeTag{t: reflect.TypeOf(v)}
}

// IsWildcard returns true for the Wildcard tag.
func (t TypeTag) IsWildcard() bool {
	return t.t == nil
}

// Type returns the payload type, or nil for Wildcard.
func (t TypeTag) Type() reflect.Type {
	return t.t
}

// String returns the payload type name, or "*" for Wildcard.
func (t TypeTag) String() string {
	if t.t == nil {
		return "*"
	}
	return t.t.String()
}
