package kinship

import (
	"strings"

	"github.com/lazypower/lineage/internal/graph"
	"github.com/lazypower/lineage/internal/traverse"
)

// Describe spells out a path as a possessive chain read from its first
// person, so the last person is the first person's <result>. A step up
// followed by a step down to another child of that parent reads as a
// sibling: "mother's sister's husband". An empty path is "self".
func Describe(p traverse.Path, sexOf func(graph.PersonID) graph.Sex) string {
	if p.Len() == 0 {
		return "self"
	}
	words := make([]string, 0, p.Len())
	for i := 0; i < len(p.Steps); i++ {
		st := p.Steps[i]
		if i+1 < len(p.Steps) && isSiblingHop(st, p.Steps[i+1]) {
			next := p.Steps[i+1]
			words = append(words, sexed(sexOf(next.To), "sister", "brother", "sibling"))
			i++
			continue
		}
		words = append(words, stepWord(st, sexOf(st.To)))
	}
	return strings.Join(words, "'s ")
}

func isSiblingHop(up, down traverse.Step) bool {
	return up.Direction == traverse.Up && down.Direction == traverse.Down && down.To != up.From
}

func stepWord(st traverse.Step, sex graph.Sex) string {
	switch st.Direction {
	case traverse.Up:
		return sexed(sex, "mother", "father", "parent")
	case traverse.Down:
		return sexed(sex, "daughter", "son", "child")
	default:
		return sexed(sex, "wife", "husband", "partner")
	}
}
