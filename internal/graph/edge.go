package graph

import (
	"fmt"
	"time"
)

// EdgeID is an opaque, stable identifier for a relationship edge.
type EdgeID string

// EdgeKind is the closed set of relationship kinds. Every switch over it
// must handle both kinds explicitly.
type EdgeKind string

const (
	KindParentChild EdgeKind = "parent_child"
	KindPartnership EdgeKind = "partnership"
)

// ParseEdgeKind accepts the canonical names plus a few common aliases.
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch s {
	case "parent_child", "parent-child", "parent":
		return KindParentChild, nil
	case "partnership", "partner", "spouse":
		return KindPartnership, nil
	}
	return "", invalidAttrs("unknown relationship kind %q", s)
}

// Valid reports whether k is one of the known kinds.
func (k EdgeKind) Valid() bool {
	switch k {
	case KindParentChild, KindPartnership:
		return true
	}
	return false
}

// Edge is a typed relationship. Parent-child edges are directed From the
// parent To the child; partnership edges are undirected.
type Edge struct {
	ID       EdgeID
	Kind     EdgeKind
	From     PersonID
	To       PersonID
	Married  *time.Time
	Divorced *time.Time
	Notes    string
}

// EdgeAttrs carries optional edge attributes.
type EdgeAttrs struct {
	Married  *time.Time
	Divorced *time.Time
	Notes    string
}

// Touches reports whether id is an endpoint of e.
func (e Edge) Touches(id PersonID) bool {
	return e.From == id || e.To == id
}

// Other returns the endpoint of e that is not id.
func (e Edge) Other(id PersonID) PersonID {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Validate checks the attributes against the edge kind.
func (a EdgeAttrs) Validate(kind EdgeKind) error {
	switch kind {
	case KindParentChild:
		if a.Married != nil || a.Divorced != nil {
			return invalidAttrs("marriage dates only apply to partnerships")
		}
	case KindPartnership:
		if a.Married != nil && a.Divorced != nil && a.Divorced.Before(*a.Married) {
			return invalidAttrs("divorce %s precedes marriage %s", FormatDate(a.Divorced), FormatDate(a.Married))
		}
	default:
		return invalidAttrs("unknown relationship kind %q", kind)
	}
	return nil
}

func (e Edge) String() string {
	return fmt.Sprintf("%s(%s, %s)", e.Kind, e.From, e.To)
}

func (e Edge) clone() Edge {
	e.Married = copyDate(e.Married)
	e.Divorced = copyDate(e.Divorced)
	return e
}
