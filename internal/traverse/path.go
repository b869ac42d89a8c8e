package traverse

import (
	"github.com/lazypower/lineage/internal/graph"
)

// Direction describes how one step of a path moves through the tree.
type Direction string

const (
	Up     Direction = "up"     // to a parent
	Down   Direction = "down"   // to a child
	Across Direction = "across" // to a partner
)

func (d Direction) flip() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return d
	}
}

// Step is one edge of a relationship path, oriented From -> To.
type Step struct {
	From      graph.PersonID
	To        graph.PersonID
	Kind      graph.EdgeKind
	Direction Direction
}

func (s Step) reversed() Step {
	return Step{From: s.To, To: s.From, Kind: s.Kind, Direction: s.Direction.flip()}
}

// Path is a connecting route between two people. People has one more element
// than Steps.
type Path struct {
	People []graph.PersonID
	Steps  []Step
}

// Len returns the number of edges on the path.
func (p Path) Len() int {
	return len(p.Steps)
}

// Partnerships counts the partnership edges on the path.
func (p Path) Partnerships() int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind == graph.KindPartnership {
			n++
		}
	}
	return n
}

// neighbors lists every edge leaving id, treating the graph as undirected.
func neighbors(src Source, id graph.PersonID) []Step {
	var out []Step
	parents, _ := src.ParentsOf(id)
	for _, p := range parents {
		out = append(out, Step{From: id, To: p, Kind: graph.KindParentChild, Direction: Up})
	}
	children, _ := src.ChildrenOf(id)
	for _, c := range children {
		out = append(out, Step{From: id, To: c, Kind: graph.KindParentChild, Direction: Down})
	}
	partners, _ := src.PartnersOf(id)
	for _, p := range partners {
		out = append(out, Step{From: id, To: p, Kind: graph.KindPartnership, Direction: Across})
	}
	return out
}

type mark struct {
	dist  int
	cross int // partnership steps on the best route at this dist
	via   Step
	root  bool
}

type search struct {
	marks    map[graph.PersonID]*mark
	frontier []graph.PersonID
	level    int
}

func newSearch(root graph.PersonID) *search {
	return &search{
		marks:    map[graph.PersonID]*mark{root: {root: true}},
		frontier: []graph.PersonID{root},
	}
}

// expand advances the search by one full level. Nodes first reached at this
// level keep the route with the fewest partnership steps.
func (s *search) expand(src Source) []graph.PersonID {
	s.level++
	var next []graph.PersonID
	for _, u := range s.frontier {
		base := s.marks[u].cross
		for _, st := range neighbors(src, u) {
			cross := base
			if st.Kind == graph.KindPartnership {
				cross++
			}
			m, seen := s.marks[st.To]
			switch {
			case !seen:
				s.marks[st.To] = &mark{dist: s.level, cross: cross, via: st}
				next = append(next, st.To)
			case m.dist == s.level && cross < m.cross:
				m.cross = cross
				m.via = st
			}
		}
	}
	s.frontier = next
	return next
}

// chain returns the steps from the search root to id.
func (s *search) chain(id graph.PersonID) []Step {
	var steps []Step
	for cur := id; !s.marks[cur].root; {
		st := s.marks[cur].via
		steps = append(steps, st)
		cur = st.From
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// ShortestPath finds a shortest connecting path from a to b through the
// combined parent-child and partnership graph, treated as undirected. It
// searches from both ends one level at a time, always advancing the smaller
// frontier. Among shortest paths it prefers fewer partnership steps, then the
// meeting person with the lowest insertion rank. Returns graph.ErrNotConnected
// when a and b lie in different components.
func ShortestPath(src Source, a, b graph.PersonID) (Path, error) {
	for _, id := range []graph.PersonID{a, b} {
		if !src.Has(id) {
			return Path{}, &graph.RefError{ID: string(id), Err: graph.ErrNotFound}
		}
	}
	if a == b {
		return Path{People: []graph.PersonID{a}}, nil
	}

	fromA, fromB := newSearch(a), newSearch(b)
	for len(fromA.frontier) > 0 && len(fromB.frontier) > 0 {
		grow, other := fromA, fromB
		if len(fromB.frontier) < len(fromA.frontier) {
			grow, other = fromB, fromA
		}
		reached := grow.expand(src)

		var meet graph.PersonID
		best := -1
		for _, v := range reached {
			om, ok := other.marks[v]
			if !ok {
				continue
			}
			cross := grow.marks[v].cross + om.cross
			if best < 0 || cross < best || (cross == best && src.Rank(v) < src.Rank(meet)) {
				best = cross
				meet = v
			}
		}
		if best >= 0 {
			return join(a, fromA.chain(meet), fromB.chain(meet)), nil
		}
	}
	return Path{}, graph.ErrNotConnected
}

// join stitches a->meet steps with b->meet steps into one a->b path.
func join(a graph.PersonID, left, right []Step) Path {
	steps := make([]Step, 0, len(left)+len(right))
	steps = append(steps, left...)
	for i := len(right) - 1; i >= 0; i-- {
		steps = append(steps, right[i].reversed())
	}
	people := make([]graph.PersonID, 0, len(steps)+1)
	people = append(people, a)
	for _, st := range steps {
		people = append(people, st.To)
	}
	return Path{People: people, Steps: steps}
}
