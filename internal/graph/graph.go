// Package graph is the in-memory store for a loaded family tree: an arena of
// people addressed by opaque identifiers, with typed relationship edges kept
// as per-person adjacency lists.
//
// Graph itself is not safe for concurrent use; the engine package wraps it
// with a reader-writer lock. Structural rules (acyclicity, duplicates,
// self-reference) are checked by Enforcer before any edge reaches the Graph.
package graph

import (
	"strings"

	"github.com/google/uuid"
)

// Graph owns every Person and Edge of one family tree.
type Graph struct {
	people    map[PersonID]*Person
	rank      map[PersonID]int
	order     []PersonID
	edges     map[EdgeID]*Edge
	edgeOrder []EdgeID
	incident  map[PersonID][]EdgeID // insertion order
	nextRank  int
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		people:   make(map[PersonID]*Person),
		rank:     make(map[PersonID]int),
		edges:    make(map[EdgeID]*Edge),
		incident: make(map[PersonID][]EdgeID),
	}
}

// Len returns the number of people.
func (g *Graph) Len() int {
	return len(g.people)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Has reports whether id exists.
func (g *Graph) Has(id PersonID) bool {
	_, ok := g.people[id]
	return ok
}

// AddPerson inserts a new person and returns its fresh identifier.
func (g *Graph) AddPerson(attrs PersonAttrs) (PersonID, error) {
	if err := attrs.Validate(); err != nil {
		return "", err
	}
	id := PersonID(uuid.NewString())
	p := &Person{ID: id}
	attrs.apply(p)
	g.insertPerson(p)
	return id, nil
}

// PutPerson inserts p with its existing identifier. Used when restoring a
// snapshot from a persistence provider.
func (g *Graph) PutPerson(p Person) error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return invalidAttrs("person id required")
	}
	if g.Has(p.ID) {
		return invalidAttrs("duplicate person id %q", p.ID)
	}
	if err := p.Attrs().Validate(); err != nil {
		return err
	}
	cp := &Person{ID: p.ID}
	p.Attrs().apply(cp)
	g.insertPerson(cp)
	return nil
}

func (g *Graph) insertPerson(p *Person) {
	g.people[p.ID] = p
	g.rank[p.ID] = g.nextRank
	g.nextRank++
	g.order = append(g.order, p.ID)
}

// UpdatePerson replaces the mutable attributes of id.
func (g *Graph) UpdatePerson(id PersonID, attrs PersonAttrs) error {
	p, ok := g.people[id]
	if !ok {
		return notFound(string(id))
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	attrs.apply(p)
	return nil
}

// Person returns a copy of the person with the given id.
func (g *Graph) Person(id PersonID) (Person, error) {
	p, ok := g.people[id]
	if !ok {
		return Person{}, notFound(string(id))
	}
	return p.clone(), nil
}

// People returns copies of all people in insertion order.
func (g *Graph) People() []Person {
	out := make([]Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.people[id].clone())
	}
	return out
}

// Rank returns the insertion rank of id, or -1 if absent. Lower ranks were
// inserted earlier; traversal uses this to break ties deterministically.
func (g *Graph) Rank(id PersonID) int {
	r, ok := g.rank[id]
	if !ok {
		return -1
	}
	return r
}

// SexOf returns the recorded sex of id, SexUnknown if absent.
func (g *Graph) SexOf(id PersonID) Sex {
	if p, ok := g.people[id]; ok {
		return p.Sex
	}
	return SexUnknown
}

// RemovePerson removes id and every edge touching it.
func (g *Graph) RemovePerson(id PersonID) error {
	if !g.Has(id) {
		return notFound(string(id))
	}
	for _, eid := range g.incident[id] {
		e := g.edges[eid]
		if other := e.Other(id); other != id {
			g.incident[other] = without(g.incident[other], eid)
		}
		delete(g.edges, eid)
	}
	g.edgeOrder = g.compactEdgeOrder()
	delete(g.incident, id)
	delete(g.people, id)
	delete(g.rank, id)
	for i, pid := range g.order {
		if pid == id {
			g.order = append(g.order[:i:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddEdge records a relationship between two existing people. It does not
// check structural rules; callers run Enforcer.Check first.
func (g *Graph) AddEdge(kind EdgeKind, from, to PersonID, attrs EdgeAttrs) (EdgeID, error) {
	if err := attrs.Validate(kind); err != nil {
		return "", err
	}
	if !g.Has(from) {
		return "", invalidRef(string(from))
	}
	if !g.Has(to) {
		return "", invalidRef(string(to))
	}
	e := &Edge{
		ID:       EdgeID(uuid.NewString()),
		Kind:     kind,
		From:     from,
		To:       to,
		Married:  copyDate(attrs.Married),
		Divorced: copyDate(attrs.Divorced),
		Notes:    attrs.Notes,
	}
	g.insertEdge(e)
	return e.ID, nil
}

// PutEdge inserts e with its existing identifier.
func (g *Graph) PutEdge(e Edge) error {
	if strings.TrimSpace(string(e.ID)) == "" {
		return invalidAttrs("edge id required")
	}
	if _, dup := g.edges[e.ID]; dup {
		return invalidAttrs("duplicate edge id %q", e.ID)
	}
	if err := (EdgeAttrs{Married: e.Married, Divorced: e.Divorced}).Validate(e.Kind); err != nil {
		return err
	}
	if !g.Has(e.From) {
		return invalidRef(string(e.From))
	}
	if !g.Has(e.To) {
		return invalidRef(string(e.To))
	}
	cp := e.clone()
	g.insertEdge(&cp)
	return nil
}

func (g *Graph) insertEdge(e *Edge) {
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.incident[e.From] = append(g.incident[e.From], e.ID)
	if e.To != e.From {
		g.incident[e.To] = append(g.incident[e.To], e.ID)
	}
}

// RemoveEdge deletes a single edge.
func (g *Graph) RemoveEdge(id EdgeID) error {
	e, ok := g.edges[id]
	if !ok {
		return notFound(string(id))
	}
	g.incident[e.From] = without(g.incident[e.From], id)
	g.incident[e.To] = without(g.incident[e.To], id)
	delete(g.edges, id)
	g.edgeOrder = without(g.edgeOrder, id)
	return nil
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, error) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, notFound(string(id))
	}
	return e.clone(), nil
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id].clone())
	}
	return out
}

// EdgesOf returns copies of the edges touching id in insertion order.
func (g *Graph) EdgesOf(id PersonID) ([]Edge, error) {
	if !g.Has(id) {
		return nil, notFound(string(id))
	}
	ids := g.incident[id]
	out := make([]Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid].clone())
	}
	return out, nil
}

// FindEdge returns the first edge of kind between from and to. Parent-child
// edges match the ordered pair; partnerships match either order.
func (g *Graph) FindEdge(kind EdgeKind, from, to PersonID) (Edge, bool) {
	for _, eid := range g.incident[from] {
		e := g.edges[eid]
		if e.Kind != kind {
			continue
		}
		switch kind {
		case KindParentChild:
			if e.From == from && e.To == to {
				return e.clone(), true
			}
		case KindPartnership:
			if e.Other(from) == to {
				return e.clone(), true
			}
		}
	}
	return Edge{}, false
}

// ParentsOf returns the recorded parents of id in edge insertion order.
func (g *Graph) ParentsOf(id PersonID) ([]PersonID, error) {
	return g.related(id, func(e *Edge) (PersonID, bool) {
		return e.From, e.Kind == KindParentChild && e.To == id
	})
}

// ChildrenOf returns the recorded children of id in edge insertion order.
func (g *Graph) ChildrenOf(id PersonID) ([]PersonID, error) {
	return g.related(id, func(e *Edge) (PersonID, bool) {
		return e.To, e.Kind == KindParentChild && e.From == id
	})
}

// PartnersOf returns the recorded partners of id in edge insertion order.
func (g *Graph) PartnersOf(id PersonID) ([]PersonID, error) {
	return g.related(id, func(e *Edge) (PersonID, bool) {
		return e.Other(id), e.Kind == KindPartnership
	})
}

func (g *Graph) related(id PersonID, pick func(*Edge) (PersonID, bool)) ([]PersonID, error) {
	if !g.Has(id) {
		return nil, notFound(string(id))
	}
	out := []PersonID{}
	for _, eid := range g.incident[id] {
		if other, ok := pick(g.edges[eid]); ok {
			out = append(out, other)
		}
	}
	return out, nil
}

func (g *Graph) compactEdgeOrder() []EdgeID {
	out := g.edgeOrder[:0]
	for _, id := range g.edgeOrder {
		if _, ok := g.edges[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func without[T comparable](s []T, v T) []T {
	for i, x := range s {
		if x == v {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}
