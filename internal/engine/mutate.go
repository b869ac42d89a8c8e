package engine

import (
	"fmt"
	"log"

	"github.com/lazypower/lineage/internal/graph"
)

// EdgeResult is the outcome of an accepted relationship mutation.
type EdgeResult struct {
	Edge       graph.Edge
	Advisories []graph.Advisory
}

// AddPerson inserts a person and returns the stored record.
func (e *Engine) AddPerson(attrs graph.PersonAttrs) (graph.Person, error) {
	var p graph.Person
	err := e.write(func(g *graph.Graph) error {
		id, err := g.AddPerson(attrs)
		if err != nil {
			return err
		}
		p, err = g.Person(id)
		return err
	})
	mutated("add_person", err)
	return p, err
}

// UpdatePerson replaces a person's attributes.
func (e *Engine) UpdatePerson(id graph.PersonID, attrs graph.PersonAttrs) (graph.Person, error) {
	var p graph.Person
	err := e.write(func(g *graph.Graph) error {
		if err := g.UpdatePerson(id, attrs); err != nil {
			return err
		}
		var err error
		p, err = g.Person(id)
		return err
	})
	mutated("update_person", err)
	return p, err
}

// EditPerson applies fn to the current attributes of id and stores the
// result, all under one write lock.
func (e *Engine) EditPerson(id graph.PersonID, fn func(*graph.PersonAttrs) error) (graph.Person, error) {
	var p graph.Person
	err := e.write(func(g *graph.Graph) error {
		cur, err := g.Person(id)
		if err != nil {
			return err
		}
		attrs := cur.Attrs()
		if err := fn(&attrs); err != nil {
			return err
		}
		if err := g.UpdatePerson(id, attrs); err != nil {
			return err
		}
		p, err = g.Person(id)
		return err
	})
	mutated("update_person", err)
	return p, err
}

// RemovePerson deletes a person together with every incident relationship.
func (e *Engine) RemovePerson(id graph.PersonID) error {
	err := e.write(func(g *graph.Graph) error {
		return g.RemovePerson(id)
	})
	mutated("remove_person", err)
	return err
}

// AddRelationship validates and inserts an edge of the given kind. Rejected
// edges leave the graph untouched. Accepted edges may carry advisories.
func (e *Engine) AddRelationship(kind graph.EdgeKind, from, to graph.PersonID, attrs graph.EdgeAttrs) (EdgeResult, error) {
	var res EdgeResult
	err := e.write(func(g *graph.Graph) error {
		switch kind {
		case graph.KindParentChild, graph.KindPartnership:
		default:
			return fmt.Errorf("%w: unknown relationship kind %q", graph.ErrInvalidAttributes, kind)
		}
		if err := attrs.Validate(kind); err != nil {
			return err
		}
		enf := graph.NewEnforcer(g)
		if err := enf.Check(kind, from, to); err != nil {
			return err
		}
		advisories := enf.Advise(kind, from, to)
		id, err := g.AddEdge(kind, from, to, attrs)
		if err != nil {
			return err
		}
		edge, err := g.Edge(id)
		if err != nil {
			return err
		}
		res = EdgeResult{Edge: edge, Advisories: advisories}
		return nil
	})
	if err != nil {
		log.Printf("engine: rejected %s %s -> %s: %v", kind, from, to, err)
	}
	for _, a := range res.Advisories {
		log.Printf("engine: advisory %s on %s", a, res.Edge)
	}
	mutated("add_"+string(kind), err)
	return res, err
}

// AddParentChild records parent as a parent of child.
func (e *Engine) AddParentChild(parent, child graph.PersonID) (EdgeResult, error) {
	return e.AddRelationship(graph.KindParentChild, parent, child, graph.EdgeAttrs{})
}

// AddPartnership records a partnership between a and b.
func (e *Engine) AddPartnership(a, b graph.PersonID, attrs graph.EdgeAttrs) (EdgeResult, error) {
	return e.AddRelationship(graph.KindPartnership, a, b, attrs)
}

// RemoveRelationship deletes one edge.
func (e *Engine) RemoveRelationship(id graph.EdgeID) error {
	err := e.write(func(g *graph.Graph) error {
		return g.RemoveEdge(id)
	})
	mutated("remove_relationship", err)
	return err
}
