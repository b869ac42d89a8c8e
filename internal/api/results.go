package api

import (
	"errors"

	"github.com/lazypower/lineage/internal/engine"
	"github.com/lazypower/lineage/internal/graph"
)

// RelationshipResult answers a relationship mutation.
type RelationshipResult struct {
	Relationship Relationship `json:"relationship"`
	Advisories   []string     `json:"advisories,omitempty"`
}

// FromEdgeResult converts an accepted mutation.
func FromEdgeResult(r engine.EdgeResult) RelationshipResult {
	out := RelationshipResult{Relationship: FromEdge(r.Edge)}
	for _, a := range r.Advisories {
		out.Advisories = append(out.Advisories, string(a))
	}
	return out
}

// Relative is a person at a generational depth.
type Relative struct {
	Person Person `json:"person"`
	Depth  int    `json:"depth"`
}

// FromRelatives converts an ancestry or descent result.
func FromRelatives(rs []engine.Relative) []Relative {
	out := make([]Relative, len(rs))
	for i, r := range rs {
		out[i] = Relative{Person: FromPerson(r.Person), Depth: r.Depth}
	}
	return out
}

// SharedAncestor is a common ancestor with its depth from each side.
type SharedAncestor struct {
	Person Person `json:"person"`
	DepthA int    `json:"depth_a"`
	DepthB int    `json:"depth_b"`
}

// CommonAncestors answers a common-ancestor query.
type CommonAncestors struct {
	All    []SharedAncestor `json:"all"`
	Lowest []SharedAncestor `json:"lowest"`
}

// FromCommon converts a common-ancestor result.
func FromCommon(c engine.CommonResult) CommonAncestors {
	conv := func(in []engine.SharedAncestor) []SharedAncestor {
		out := make([]SharedAncestor, len(in))
		for i, s := range in {
			out[i] = SharedAncestor{Person: FromPerson(s.Person), DepthA: s.DepthA, DepthB: s.DepthB}
		}
		return out
	}
	return CommonAncestors{All: conv(c.All), Lowest: conv(c.Lowest)}
}

// Step is one edge of a path, oriented along the path.
type Step struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Kind      string `json:"kind"`
	Direction string `json:"direction"`
}

// Path answers a relationship-path query from a to b. Connected false
// means the two people share no path. Description reads from a: b is a's
// description.
type Path struct {
	Connected   bool     `json:"connected"`
	People      []Person `json:"people,omitempty"`
	Steps       []Step   `json:"steps,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FromPath converts a path result.
func FromPath(p engine.PathResult) Path {
	out := Path{Connected: p.Connected, People: FromPeople(p.People), Description: p.Description}
	for _, s := range p.Steps {
		out.Steps = append(out.Steps, Step{
			From:      string(s.From),
			To:        string(s.To),
			Kind:      string(s.Kind),
			Direction: string(s.Direction),
		})
	}
	return out
}

// Kinship answers a kinship query for a and b. Label names a relative to b
// ("a is b's label"); Path runs from a to b and its description names b
// relative to a.
type Kinship struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Degree   int    `json:"degree"`
	Removal  int    `json:"removal"`
	DepthA   int    `json:"depth_a"`
	DepthB   int    `json:"depth_b"`
	Ancestor string `json:"ancestor,omitempty"`
	Through  string `json:"through,omitempty"`
	Path     Path   `json:"path"`
}

// FromKinship converts a kinship result.
func FromKinship(k engine.KinshipResult) Kinship {
	return Kinship{
		Kind:     string(k.Label.Kind),
		Label:    k.Label.Text,
		Degree:   k.Label.Degree,
		Removal:  k.Label.Removal,
		DepthA:   k.Label.DepthA,
		DepthB:   k.Label.DepthB,
		Ancestor: string(k.Label.Ancestor),
		Through:  string(k.Label.Through),
		Path:     FromPath(k.Path),
	}
}

// Stats summarizes the graph.
type Stats struct {
	People        int        `json:"people"`
	Living        int        `json:"living"`
	Deceased      int        `json:"deceased"`
	ParentChild   int        `json:"parent_child"`
	Partnerships  int        `json:"partnerships"`
	Roots         int        `json:"roots"`
	Generations   int        `json:"generations"`
	ExtraParented int        `json:"extra_parented"`
	RootIDs       []string   `json:"root_ids"`
	BirthPlaces   []Count    `json:"birth_places"`
	Occupations   []Count    `json:"occupations"`
	BirthYears    BirthYears `json:"birth_years"`
}

// Count is how many people share a value.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// BirthYears is the span of known birth years with a per-year tally.
type BirthYears struct {
	Min    int         `json:"min,omitempty"`
	Max    int         `json:"max,omitempty"`
	Counts map[int]int `json:"counts"`
}

// FromStats converts engine stats.
func FromStats(s engine.Stats) Stats {
	out := Stats{
		People:        s.People,
		Living:        s.Living,
		Deceased:      s.Deceased,
		ParentChild:   s.ParentChild,
		Partnerships:  s.Partnerships,
		Roots:         s.Roots,
		Generations:   s.Generations,
		ExtraParented: s.ExtraParented,
		RootIDs:       make([]string, len(s.RootIDs)),
		BirthPlaces:   counts(s.BirthPlaces),
		Occupations:   counts(s.Occupations),
		BirthYears:    BirthYears{Min: s.BirthYears.Min, Max: s.BirthYears.Max, Counts: s.BirthYears.Counts},
	}
	for i, id := range s.RootIDs {
		out.RootIDs[i] = string(id)
	}
	if out.BirthYears.Counts == nil {
		out.BirthYears.Counts = map[int]int{}
	}
	return out
}

func counts(in []engine.Count) []Count {
	out := make([]Count, len(in))
	for i, c := range in {
		out[i] = Count(c)
	}
	return out
}

// Health is the /api/health body.
type Health struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"`
	People  int     `json:"people"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ErrorKind names the error class of err for clients.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

var errorKinds = []struct {
	err  error
	name string
}{
	{graph.ErrNotFound, "not_found"},
	{graph.ErrInvalidReference, "invalid_reference"},
	{graph.ErrSelfReference, "self_reference"},
	{graph.ErrDuplicateEdge, "duplicate_edge"},
	{graph.ErrCycle, "cycle_violation"},
	{graph.ErrInvalidAttributes, "invalid_attributes"},
}

// KindError returns the sentinel error for an error kind name, or nil.
func KindError(name string) error {
	for _, k := range errorKinds {
		if k.name == name {
			return k.err
		}
	}
	return nil
}
