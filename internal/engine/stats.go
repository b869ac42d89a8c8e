package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/lazypower/lineage/internal/graph"
)

// Stats summarizes the graph for dashboards.
type Stats struct {
	People        int
	Living        int
	Deceased      int
	ParentChild   int
	Partnerships  int
	Roots         int // people with no recorded parents
	Generations   int // people on the longest ancestor chain
	ExtraParented int // children with more than two recorded parents

	RootIDs     []graph.PersonID // the root generation, in insertion order
	BirthPlaces []Count          // most common birthplaces, at most topN
	Occupations []Count          // most common occupations, at most topN
	BirthYears  BirthYears
}

// topN bounds the birthplace and occupation distributions.
const topN = 10

// Count is how many people share a value.
type Count struct {
	Value string
	Count int
}

// BirthYears is the span and per-year tally of known birth dates. All
// fields are zero when no birth date is recorded.
type BirthYears struct {
	Min    int
	Max    int
	Counts map[int]int
}

// Stats computes summary counts over the current graph.
func (e *Engine) Stats() Stats {
	start := time.Now()
	var s Stats
	e.read(func(g *graph.Graph) error {
		s = stats(g)
		return nil
	})
	observe("stats", start, nil)
	return s
}

func stats(g *graph.Graph) Stats {
	var s Stats
	for _, e := range g.Edges() {
		switch e.Kind {
		case graph.KindParentChild:
			s.ParentChild++
		case graph.KindPartnership:
			s.Partnerships++
		}
	}

	depth := make(map[graph.PersonID]int, g.Len())
	var generation func(id graph.PersonID) int
	generation = func(id graph.PersonID) int {
		if d, ok := depth[id]; ok {
			return d
		}
		d := 1
		parents, _ := g.ParentsOf(id)
		for _, p := range parents {
			d = max(d, generation(p)+1)
		}
		depth[id] = d
		return d
	}

	var places, jobs tally
	for _, p := range g.People() {
		s.People++
		if p.Living() {
			s.Living++
		} else {
			s.Deceased++
		}
		if p.Born != nil {
			y := p.Born.Year()
			if s.BirthYears.Counts == nil {
				s.BirthYears = BirthYears{Min: y, Max: y, Counts: map[int]int{}}
			}
			s.BirthYears.Min = min(s.BirthYears.Min, y)
			s.BirthYears.Max = max(s.BirthYears.Max, y)
			s.BirthYears.Counts[y]++
		}
		places.add(p.BirthPlace)
		jobs.add(p.Occupation)

		parents, _ := g.ParentsOf(p.ID)
		switch {
		case len(parents) == 0:
			s.Roots++
			s.RootIDs = append(s.RootIDs, p.ID)
		case len(parents) > 2:
			s.ExtraParented++
		}
		s.Generations = max(s.Generations, generation(p.ID))
	}
	s.BirthPlaces = places.top(topN)
	s.Occupations = jobs.top(topN)
	return s
}

// tally counts non-blank values, remembering first-seen order.
type tally struct {
	order []string
	n     map[string]int
}

func (t *tally) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if t.n == nil {
		t.n = map[string]int{}
	}
	if t.n[v] == 0 {
		t.order = append(t.order, v)
	}
	t.n[v]++
}

// top returns the k most frequent values, ties in first-seen order.
func (t *tally) top(k int) []Count {
	out := make([]Count, len(t.order))
	for i, v := range t.order {
		out[i] = Count{Value: v, Count: t.n[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > k {
		out = out[:k]
	}
	return out
}
