package engine

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/lazypower/lineage/internal/graph"
	"github.com/lazypower/lineage/internal/kinship"
	"github.com/lazypower/lineage/internal/traverse"
)

// Relative is a person found by an ancestry or descent query, at the
// minimal number of generations from the start.
type Relative struct {
	Person graph.Person
	Depth  int
}

// SharedAncestor is a common ancestor with its distance from each side.
type SharedAncestor struct {
	Person graph.Person
	DepthA int
	DepthB int
}

// CommonResult lists every common ancestor and the lowest of them.
type CommonResult struct {
	All    []SharedAncestor
	Lowest []SharedAncestor
}

// PathResult is a relationship path from A to B. Connected is false when
// no path exists; that is an answer, not an error. Description reads from
// A: B is A's Description.
type PathResult struct {
	Connected   bool
	People      []graph.Person
	Steps       []traverse.Step
	Description string
}

// Len returns the number of edges on the path.
func (p PathResult) Len() int {
	return len(p.Steps)
}

// KinshipResult is a kinship label with the path it summarizes. The label
// reads from B's side (A is B's Label) while Path runs from A to B.
type KinshipResult struct {
	Label kinship.Label
	Path  PathResult
}

// Person returns one person.
func (e *Engine) Person(id graph.PersonID) (graph.Person, error) {
	start := time.Now()
	var p graph.Person
	err := e.read(func(g *graph.Graph) error {
		var err error
		p, err = g.Person(id)
		return err
	})
	observe("person", start, err)
	return p, err
}

// People returns everyone in insertion order.
func (e *Engine) People() []graph.Person {
	start := time.Now()
	var out []graph.Person
	e.read(func(g *graph.Graph) error {
		out = g.People()
		return nil
	})
	observe("people", start, nil)
	return out
}

// Search returns people whose name, birthplace or occupation contains q,
// case-insensitively. Exact name matches sort first, then insertion order.
// An empty query matches everyone. When nothing contains q, people with a
// similar name are returned instead, closest first.
func (e *Engine) Search(q string) []graph.Person {
	start := time.Now()
	q = strings.ToLower(strings.TrimSpace(q))
	var out []graph.Person
	e.read(func(g *graph.Graph) error {
		all := g.People()
		for _, p := range all {
			if q == "" || matches(p, q) {
				out = append(out, p)
			}
		}
		if len(out) == 0 && q != "" {
			out = nearNames(all, q)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) == q && strings.ToLower(out[j].Name) != q
	})
	observe("search", start, nil)
	return out
}

func matches(p graph.Person, q string) bool {
	for _, field := range []string{p.Name, p.BirthPlace, p.Occupation} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Parents returns the recorded parents of id.
func (e *Engine) Parents(id graph.PersonID) ([]graph.Person, error) {
	return e.adjacent("parents", id, (*graph.Graph).ParentsOf)
}

// Children returns the recorded children of id.
func (e *Engine) Children(id graph.PersonID) ([]graph.Person, error) {
	return e.adjacent("children", id, (*graph.Graph).ChildrenOf)
}

// Partners returns the recorded partners of id.
func (e *Engine) Partners(id graph.PersonID) ([]graph.Person, error) {
	return e.adjacent("partners", id, (*graph.Graph).PartnersOf)
}

func (e *Engine) adjacent(op string, id graph.PersonID, list func(*graph.Graph, graph.PersonID) ([]graph.PersonID, error)) ([]graph.Person, error) {
	start := time.Now()
	var out []graph.Person
	err := e.read(func(g *graph.Graph) error {
		ids, err := list(g, id)
		if err != nil {
			return err
		}
		out, err = people(g, ids)
		return err
	})
	observe(op, start, err)
	return out, err
}

// Ancestors returns everyone above id, each at minimal depth. maxDepth <= 0
// means unbounded.
func (e *Engine) Ancestors(id graph.PersonID, maxDepth int) ([]Relative, error) {
	return e.lineage("ancestors", id, maxDepth, traverse.Ancestors)
}

// Descendants returns everyone below id, each at minimal depth. maxDepth <= 0
// means unbounded.
func (e *Engine) Descendants(id graph.PersonID, maxDepth int) ([]Relative, error) {
	return e.lineage("descendants", id, maxDepth, traverse.Descendants)
}

func (e *Engine) lineage(op string, id graph.PersonID, maxDepth int, walk func(traverse.Source, graph.PersonID, int) (*traverse.Set, error)) ([]Relative, error) {
	start := time.Now()
	var out []Relative
	err := e.read(func(g *graph.Graph) error {
		set, err := walk(g, id, maxDepth)
		if err != nil {
			return err
		}
		out = make([]Relative, 0, set.Len())
		for _, m := range set.Members {
			p, err := g.Person(m.ID)
			if err != nil {
				return err
			}
			out = append(out, Relative{Person: p, Depth: m.Depth})
		}
		return nil
	})
	observe(op, start, err)
	return out, err
}

// CommonAncestors returns the ancestors shared by a and b.
func (e *Engine) CommonAncestors(a, b graph.PersonID) (CommonResult, error) {
	start := time.Now()
	var res CommonResult
	err := e.read(func(g *graph.Graph) error {
		c, err := traverse.CommonAncestors(g, a, b)
		if err != nil {
			return err
		}
		if res.All, err = shared(g, c.All); err != nil {
			return err
		}
		res.Lowest, err = shared(g, c.Lowest)
		return err
	})
	observe("common", start, err)
	return res, err
}

func shared(g *graph.Graph, in []traverse.Shared) ([]SharedAncestor, error) {
	out := make([]SharedAncestor, 0, len(in))
	for _, s := range in {
		p, err := g.Person(s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SharedAncestor{Person: p, DepthA: s.DepthA, DepthB: s.DepthB})
	}
	return out, nil
}

// RelationshipPath finds a shortest path from a to b.
func (e *Engine) RelationshipPath(a, b graph.PersonID) (PathResult, error) {
	start := time.Now()
	var res PathResult
	err := e.read(func(g *graph.Graph) error {
		var err error
		res, err = pathResult(g, a, b)
		return err
	})
	observe("path", start, err)
	return res, err
}

func pathResult(g *graph.Graph, a, b graph.PersonID) (PathResult, error) {
	p, err := traverse.ShortestPath(g, a, b)
	if errors.Is(err, graph.ErrNotConnected) {
		return PathResult{Connected: false}, nil
	}
	if err != nil {
		return PathResult{}, err
	}
	ps, err := people(g, p.People)
	if err != nil {
		return PathResult{}, err
	}
	return PathResult{
		Connected:   true,
		People:      ps,
		Steps:       p.Steps,
		Description: kinship.Describe(p, g.SexOf),
	}, nil
}

// Kinship labels how a relates to b.
func (e *Engine) Kinship(a, b graph.PersonID) (KinshipResult, error) {
	start := time.Now()
	var res KinshipResult
	err := e.read(func(g *graph.Graph) error {
		l, err := kinship.Classify(g, a, b)
		if err != nil {
			return err
		}
		res.Label = l
		res.Path, err = pathResult(g, a, b)
		return err
	})
	observe("kinship", start, err)
	return res, err
}
