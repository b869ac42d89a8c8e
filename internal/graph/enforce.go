package graph

// Advisory is a non-blocking observation about an accepted mutation.
type Advisory string

const (
	// AdvisoryExtraParent: the child now has more than two recorded parents.
	AdvisoryExtraParent Advisory = "extra_parent"

	// AdvisoryBirthOrder: the parent was born after the child.
	AdvisoryBirthOrder Advisory = "birth_order"
)

// Enforcer authorizes or rejects structural mutations. All checks are pure
// reads of the Graph; the Enforcer never mutates it.
type Enforcer struct {
	g *Graph
}

// NewEnforcer returns an Enforcer reading g.
func NewEnforcer(g *Graph) Enforcer {
	return Enforcer{g: g}
}

// Check returns nil if an edge of kind from -> to may be added.
func (e Enforcer) Check(kind EdgeKind, from, to PersonID) error {
	if !e.g.Has(from) {
		return invalidRef(string(from))
	}
	if !e.g.Has(to) {
		return invalidRef(string(to))
	}
	switch kind {
	case KindParentChild:
		return e.checkParentChild(from, to)
	case KindPartnership:
		return e.checkPartnership(from, to)
	default:
		return invalidAttrs("unknown relationship kind %q", kind)
	}
}

func (e Enforcer) checkParentChild(parent, child PersonID) error {
	if parent == child {
		return &ViolationError{Rule: ErrSelfReference, Kind: KindParentChild, From: parent, To: child}
	}
	if _, dup := e.g.FindEdge(KindParentChild, parent, child); dup {
		return &ViolationError{Rule: ErrDuplicateEdge, Kind: KindParentChild, From: parent, To: child}
	}
	if e.reachesAncestor(parent, child) {
		return &ViolationError{Rule: ErrCycle, Kind: KindParentChild, From: parent, To: child}
	}
	return nil
}

func (e Enforcer) checkPartnership(a, b PersonID) error {
	if a == b {
		return &ViolationError{Rule: ErrSelfReference, Kind: KindPartnership, From: a, To: b}
	}
	if _, dup := e.g.FindEdge(KindPartnership, a, b); dup {
		return &ViolationError{Rule: ErrDuplicateEdge, Kind: KindPartnership, From: a, To: b}
	}
	return nil
}

// reachesAncestor walks upward from start breadth-first and reports whether
// target is among its ancestors. It stops as soon as target is seen or the
// frontier is exhausted; the DAG invariant bounds the walk.
func (e Enforcer) reachesAncestor(start, target PersonID) bool {
	seen := map[PersonID]bool{start: true}
	frontier := []PersonID{start}
	for len(frontier) > 0 {
		var next []PersonID
		for _, id := range frontier {
			parents, _ := e.g.ParentsOf(id)
			for _, p := range parents {
				if p == target {
					return true
				}
				if !seen[p] {
					seen[p] = true
					next = append(next, p)
				}
			}
		}
		frontier = next
	}
	return false
}

// Advise returns the advisories an accepted edge of kind from -> to would
// raise. It assumes Check has passed.
func (e Enforcer) Advise(kind EdgeKind, from, to PersonID) []Advisory {
	var out []Advisory
	switch kind {
	case KindParentChild:
		parents, _ := e.g.ParentsOf(to)
		if len(parents) >= 2 {
			out = append(out, AdvisoryExtraParent)
		}
		p, perr := e.g.Person(from)
		c, cerr := e.g.Person(to)
		if perr == nil && cerr == nil && p.Born != nil && c.Born != nil && p.Born.After(*c.Born) {
			out = append(out, AdvisoryBirthOrder)
		}
	case KindPartnership:
	}
	return out
}
