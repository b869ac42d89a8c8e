// Package traverse computes ancestry, descent, common ancestors and shortest
// relationship paths over a family graph.
//
// All functions read through Source and never mutate it. Callers are
// responsible for holding whatever lock protects the underlying graph for the
// duration of a call.
package traverse

import (
	"sort"

	"github.com/lazypower/lineage/internal/graph"
)

// Source is the read view traversal needs. *graph.Graph satisfies it.
type Source interface {
	Has(id graph.PersonID) bool
	ParentsOf(id graph.PersonID) ([]graph.PersonID, error)
	ChildrenOf(id graph.PersonID) ([]graph.PersonID, error)
	PartnersOf(id graph.PersonID) ([]graph.PersonID, error)
	Rank(id graph.PersonID) int
}

// Relative is a person reached by traversal, at the minimal number of
// generations from the start.
type Relative struct {
	ID    graph.PersonID
	Depth int
}

// Set is an ordered set of relatives in breadth-first discovery order.
type Set struct {
	Members []Relative
	depth   map[graph.PersonID]int
}

func newSet() *Set {
	return &Set{depth: make(map[graph.PersonID]int)}
}

func (s *Set) add(id graph.PersonID, depth int) {
	s.depth[id] = depth
	s.Members = append(s.Members, Relative{ID: id, Depth: depth})
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.Members)
}

// Contains reports whether id is a member.
func (s *Set) Contains(id graph.PersonID) bool {
	_, ok := s.depth[id]
	return ok
}

// Depth returns the minimal depth of id.
func (s *Set) Depth(id graph.PersonID) (int, bool) {
	d, ok := s.depth[id]
	return d, ok
}

// IDs returns the member identifiers in discovery order.
func (s *Set) IDs() []graph.PersonID {
	out := make([]graph.PersonID, len(s.Members))
	for i, m := range s.Members {
		out[i] = m.ID
	}
	return out
}

type stepFunc func(graph.PersonID) ([]graph.PersonID, error)

// Ancestors returns everyone reachable upward from id through parent-child
// edges. maxDepth <= 0 means unbounded; the DAG invariant guarantees
// termination. id itself is never a member.
func Ancestors(src Source, id graph.PersonID, maxDepth int) (*Set, error) {
	if !src.Has(id) {
		return nil, &graph.RefError{ID: string(id), Err: graph.ErrNotFound}
	}
	return walk(id, maxDepth, false, src.ParentsOf), nil
}

// Descendants is the downward counterpart of Ancestors.
func Descendants(src Source, id graph.PersonID, maxDepth int) (*Set, error) {
	if !src.Has(id) {
		return nil, &graph.RefError{ID: string(id), Err: graph.ErrNotFound}
	}
	return walk(id, maxDepth, false, src.ChildrenOf), nil
}

// walk is a breadth-first traversal that records each node once, at the
// depth of its first visit.
func walk(start graph.PersonID, maxDepth int, includeStart bool, next stepFunc) *Set {
	set := newSet()
	if includeStart {
		set.add(start, 0)
	}
	seen := map[graph.PersonID]bool{start: true}
	frontier := []graph.PersonID{start}
	for depth := 1; len(frontier) > 0; depth++ {
		if maxDepth > 0 && depth > maxDepth {
			break
		}
		var level []graph.PersonID
		for _, id := range frontier {
			ids, _ := next(id)
			for _, n := range ids {
				if seen[n] {
					continue
				}
				seen[n] = true
				set.add(n, depth)
				level = append(level, n)
			}
		}
		frontier = level
	}
	return set
}

// Shared is a common ancestor with its minimal depth from each side.
type Shared struct {
	ID     graph.PersonID
	DepthA int
	DepthB int
}

// Common is the result of a common-ancestor query.
type Common struct {
	// All common ancestors, ordered by insertion rank.
	All []Shared
	// Lowest is the subset of All with no descendant also in All.
	Lowest []Shared
}

// IDs returns the identifiers of All.
func (c *Common) IDs() []graph.PersonID {
	out := make([]graph.PersonID, len(c.All))
	for i, s := range c.All {
		out[i] = s.ID
	}
	return out
}

// CommonAncestors intersects the ancestor sets of a and b. The result is
// symmetric: swapping a and b yields the same members with DepthA and DepthB
// exchanged.
func CommonAncestors(src Source, a, b graph.PersonID) (*Common, error) {
	return common(src, a, b, false)
}

// CommonLineage is CommonAncestors with each person counted as their own
// ancestor at depth 0, so direct lines of descent share an ancestor.
func CommonLineage(src Source, a, b graph.PersonID) (*Common, error) {
	return common(src, a, b, true)
}

func common(src Source, a, b graph.PersonID, includeSelf bool) (*Common, error) {
	for _, id := range []graph.PersonID{a, b} {
		if !src.Has(id) {
			return nil, &graph.RefError{ID: string(id), Err: graph.ErrNotFound}
		}
	}
	upA := walk(a, 0, includeSelf, src.ParentsOf)
	upB := walk(b, 0, includeSelf, src.ParentsOf)

	out := &Common{}
	for _, m := range upA.Members {
		if db, ok := upB.Depth(m.ID); ok {
			out.All = append(out.All, Shared{ID: m.ID, DepthA: m.Depth, DepthB: db})
		}
	}
	sort.SliceStable(out.All, func(i, j int) bool {
		return src.Rank(out.All[i].ID) < src.Rank(out.All[j].ID)
	})

	// Anything that is an ancestor of another common ancestor is not lowest.
	shadowed := make(map[graph.PersonID]bool)
	for _, s := range out.All {
		if shadowed[s.ID] {
			continue
		}
		for _, up := range walk(s.ID, 0, false, src.ParentsOf).Members {
			shadowed[up.ID] = true
		}
	}
	for _, s := range out.All {
		if !shadowed[s.ID] {
			out.Lowest = append(out.Lowest, s)
		}
	}
	return out, nil
}
