package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrNotFound indicates a referenced person or edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference indicates an edge endpoint that does not exist.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrSelfReference indicates an edge whose two endpoints are the same person.
	ErrSelfReference = errors.New("self reference")

	// ErrDuplicateEdge indicates an identical edge is already recorded.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrCycle indicates a parent-child edge that would make someone their own ancestor.
	ErrCycle = errors.New("cycle violation")

	// ErrNotConnected is returned by pathfinding when no link exists.
	// It is a normal query outcome, not a fault.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidAttributes indicates malformed person or edge attributes.
	ErrInvalidAttributes = errors.New("invalid attributes")
)

// RefError reports a lookup failure for a specific identifier.
// Unwraps to ErrNotFound or ErrInvalidReference.
type RefError struct {
	ID  string
	Err error
}

func (e *RefError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.ID)
}

func (e *RefError) Unwrap() error { return e.Err }

// ViolationError reports a structural rule rejected by the Enforcer.
// Unwraps to ErrSelfReference, ErrDuplicateEdge or ErrCycle.
type ViolationError struct {
	Rule error
	Kind EdgeKind
	From PersonID
	To   PersonID
}

func (e *ViolationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %s -> %s", e.Rule.Error(), e.Kind, e.From, e.To)
}

func (e *ViolationError) Unwrap() error { return e.Rule }

func notFound(id string) error {
	return &RefError{ID: id, Err: ErrNotFound}
}

func invalidRef(id string) error {
	return &RefError{ID: id, Err: ErrInvalidReference}
}

func invalidAttrs(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAttributes, fmt.Sprintf(format, args...))
}
