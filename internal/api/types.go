// Package api defines the plain data shapes exchanged with the presentation
// layer: the HTTP JSON API, its client and family files.
package api

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lazypower/lineage/internal/graph"
)

// Person is the wire form of a person. Dates are YYYY-MM-DD.
type Person struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Sex        string `json:"sex,omitempty" yaml:"sex,omitempty"`
	Born       string `json:"born,omitempty" yaml:"born,omitempty"`
	Died       string `json:"died,omitempty" yaml:"died,omitempty"`
	BirthPlace string `json:"birth_place,omitempty" yaml:"birth_place,omitempty"`
	Occupation string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Living     bool   `json:"living" yaml:"-"`
}

// FromPerson converts a stored person.
func FromPerson(p graph.Person) Person {
	return Person{
		ID:         string(p.ID),
		Name:       p.Name,
		Sex:        string(p.Sex),
		Born:       graph.FormatDate(p.Born),
		Died:       graph.FormatDate(p.Died),
		BirthPlace: p.BirthPlace,
		Occupation: p.Occupation,
		Notes:      p.Notes,
		Living:     p.Living(),
	}
}

// FromPeople converts a slice of stored people.
func FromPeople(ps []graph.Person) []Person {
	out := make([]Person, len(ps))
	for i, p := range ps {
		out[i] = FromPerson(p)
	}
	return out
}

// Attrs parses the mutable attributes.
func (p Person) Attrs() (graph.PersonAttrs, error) {
	sex, err := graph.ParseSex(p.Sex)
	if err != nil {
		return graph.PersonAttrs{}, err
	}
	born, err := graph.ParseDate(p.Born)
	if err != nil {
		return graph.PersonAttrs{}, err
	}
	died, err := graph.ParseDate(p.Died)
	if err != nil {
		return graph.PersonAttrs{}, err
	}
	return graph.PersonAttrs{
		Name:       p.Name,
		Sex:        sex,
		Born:       born,
		Died:       died,
		BirthPlace: p.BirthPlace,
		Occupation: p.Occupation,
		Notes:      p.Notes,
	}, nil
}

// Record parses p into a stored person, keeping its ID.
func (p Person) Record() (graph.Person, error) {
	attrs, err := p.Attrs()
	if err != nil {
		return graph.Person{}, fmt.Errorf("person %s: %w", p.ID, err)
	}
	if err := attrs.Validate(); err != nil {
		return graph.Person{}, fmt.Errorf("person %s: %w", p.ID, err)
	}
	return graph.Person{
		ID:         graph.PersonID(p.ID),
		Name:       attrs.Name,
		Sex:        attrs.Sex,
		Born:       attrs.Born,
		Died:       attrs.Died,
		BirthPlace: attrs.BirthPlace,
		Occupation: attrs.Occupation,
		Notes:      attrs.Notes,
	}, nil
}

// PersonPatch is a partial update; nil fields are left alone.
type PersonPatch struct {
	Name       *string `json:"name,omitempty"`
	Sex        *string `json:"sex,omitempty"`
	Born       *string `json:"born,omitempty"`
	Died       *string `json:"died,omitempty"`
	BirthPlace *string `json:"birth_place,omitempty"`
	Occupation *string `json:"occupation,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// Apply writes the set fields onto attrs.
func (p PersonPatch) Apply(attrs *graph.PersonAttrs) error {
	if p.Name != nil {
		attrs.Name = *p.Name
	}
	if p.Sex != nil {
		sex, err := graph.ParseSex(*p.Sex)
		if err != nil {
			return err
		}
		attrs.Sex = sex
	}
	if p.Born != nil {
		born, err := graph.ParseDate(*p.Born)
		if err != nil {
			return err
		}
		attrs.Born = born
	}
	if p.Died != nil {
		died, err := graph.ParseDate(*p.Died)
		if err != nil {
			return err
		}
		attrs.Died = died
	}
	if p.BirthPlace != nil {
		attrs.BirthPlace = *p.BirthPlace
	}
	if p.Occupation != nil {
		attrs.Occupation = *p.Occupation
	}
	if p.Notes != nil {
		attrs.Notes = *p.Notes
	}
	return nil
}

// Empty reports whether no field is set.
func (p PersonPatch) Empty() bool {
	return p == PersonPatch{}
}

// Relationship is the wire form of an edge. From is the parent for
// parent_child relationships.
type Relationship struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Married  string `json:"married,omitempty" yaml:"married,omitempty"`
	Divorced string `json:"divorced,omitempty" yaml:"divorced,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// FromEdge converts a stored edge.
func FromEdge(e graph.Edge) Relationship {
	return Relationship{
		ID:       string(e.ID),
		Kind:     string(e.Kind),
		From:     string(e.From),
		To:       string(e.To),
		Married:  graph.FormatDate(e.Married),
		Divorced: graph.FormatDate(e.Divorced),
		Notes:    e.Notes,
	}
}

// Parse returns the edge kind, endpoints and attributes.
func (r Relationship) Parse() (graph.EdgeKind, graph.PersonID, graph.PersonID, graph.EdgeAttrs, error) {
	kind, err := graph.ParseEdgeKind(r.Kind)
	if err != nil {
		return "", "", "", graph.EdgeAttrs{}, err
	}
	married, err := graph.ParseDate(r.Married)
	if err != nil {
		return "", "", "", graph.EdgeAttrs{}, err
	}
	divorced, err := graph.ParseDate(r.Divorced)
	if err != nil {
		return "", "", "", graph.EdgeAttrs{}, err
	}
	attrs := graph.EdgeAttrs{Married: married, Divorced: divorced, Notes: r.Notes}
	return kind, graph.PersonID(r.From), graph.PersonID(r.To), attrs, nil
}

// Record parses r into a stored edge, keeping its ID.
func (r Relationship) Record() (graph.Edge, error) {
	kind, from, to, attrs, err := r.Parse()
	if err != nil {
		return graph.Edge{}, fmt.Errorf("relationship %s: %w", r.ID, err)
	}
	return graph.Edge{
		ID:       graph.EdgeID(r.ID),
		Kind:     kind,
		From:     from,
		To:       to,
		Married:  attrs.Married,
		Divorced: attrs.Divorced,
		Notes:    attrs.Notes,
	}, nil
}

// Family is a whole graph: the body of family files and import/export.
type Family struct {
	People        []Person       `json:"people" yaml:"people"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// FromSnapshot converts a graph snapshot.
func FromSnapshot(s graph.Snapshot) Family {
	f := Family{
		People:        FromPeople(s.People),
		Relationships: make([]Relationship, len(s.Edges)),
	}
	for i, e := range s.Edges {
		f.Relationships[i] = FromEdge(e)
	}
	return f
}

// Snapshot parses f into a graph snapshot. Relationships without an ID get
// a fresh one. Structural rules are checked later, when the snapshot is
// restored.
func (f Family) Snapshot() (graph.Snapshot, error) {
	s := graph.Snapshot{
		People: make([]graph.Person, 0, len(f.People)),
		Edges:  make([]graph.Edge, 0, len(f.Relationships)),
	}
	for _, p := range f.People {
		rec, err := p.Record()
		if err != nil {
			return graph.Snapshot{}, err
		}
		s.People = append(s.People, rec)
	}
	for _, r := range f.Relationships {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		rec, err := r.Record()
		if err != nil {
			return graph.Snapshot{}, err
		}
		s.Edges = append(s.Edges, rec)
	}
	return s, nil
}
