package engine

import (
	"sort"
	"strings"

	"github.com/lazypower/lineage/internal/graph"
)

// minNameSimilarity is the bigram Jaccard score a name needs to be offered
// as a near match.
const minNameSimilarity = 0.4

// nameSimilarity scores two names by shared character bigrams (Jaccard
// index), ignoring case and surrounding space.
func nameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	shared := 0
	for bg := range ba {
		if bb[bg] {
			shared++
		}
	}
	return float64(shared) / float64(len(ba)+len(bb)-shared)
}

func bigrams(s string) map[string]bool {
	r := []rune(s)
	if len(r) < 2 {
		return nil
	}
	m := make(map[string]bool, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		m[string(r[i:i+2])] = true
	}
	return m
}

// nearNames returns people whose name is close to q, best first.
func nearNames(people []graph.Person, q string) []graph.Person {
	type scored struct {
		p     graph.Person
		score float64
	}
	var hits []scored
	for _, p := range people {
		if s := nameSimilarity(p.Name, q); s >= minNameSimilarity {
			hits = append(hits, scored{p, s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	out := make([]graph.Person, len(hits))
	for i, h := range hits {
		out[i] = h.p
	}
	return out
}
