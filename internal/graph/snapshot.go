package graph

import "fmt"

// Snapshot is the bulk import/export form of a Graph exchanged with
// persistence providers. People and Edges are in insertion order.
type Snapshot struct {
	People []Person
	Edges  []Edge
}

// Snapshot copies the whole graph.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{People: g.People(), Edges: g.Edges()}
}

// FromSnapshot builds a fresh Graph from s, running every edge through the
// Enforcer. Any violation aborts the whole restore.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for _, p := range s.People {
		if err := g.PutPerson(p); err != nil {
			return nil, fmt.Errorf("restore person %s: %w", p.ID, err)
		}
	}
	enf := NewEnforcer(g)
	for _, e := range s.Edges {
		if err := enf.Check(e.Kind, e.From, e.To); err != nil {
			return nil, fmt.Errorf("restore edge %s: %w", e.ID, err)
		}
		if err := g.PutEdge(e); err != nil {
			return nil, fmt.Errorf("restore edge %s: %w", e.ID, err)
		}
	}
	return g, nil
}
