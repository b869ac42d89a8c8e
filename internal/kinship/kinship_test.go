package kinship

import (
	"errors"
	"strings"
	"testing"

	"github.com/lazypower/lineage/internal/graph"
	"github.com/lazypower/lineage/internal/traverse"
)

type tree struct {
	t  *testing.T
	g  *graph.Graph
	id map[string]graph.PersonID
}

// newTree adds people by name. A ":f" or ":m" suffix sets their sex.
func newTree(t *testing.T, people ...string) *tree {
	t.Helper()
	tr := &tree{t: t, g: graph.New(), id: make(map[string]graph.PersonID)}
	for _, p := range people {
		name, sex, _ := strings.Cut(p, ":")
		attrs := graph.PersonAttrs{Name: name}
		switch sex {
		case "f":
			attrs.Sex = graph.SexFemale
		case "m":
			attrs.Sex = graph.SexMale
		}
		id, err := tr.g.AddPerson(attrs)
		if err != nil {
			t.Fatalf("AddPerson(%s): %v", name, err)
		}
		tr.id[name] = id
	}
	return tr
}

func (tr *tree) parent(p string, children ...string) {
	tr.t.Helper()
	for _, c := range children {
		tr.link(graph.KindParentChild, p, c)
	}
}

func (tr *tree) partner(a, b string) {
	tr.t.Helper()
	tr.link(graph.KindPartnership, a, b)
}

func (tr *tree) link(kind graph.EdgeKind, a, b string) {
	tr.t.Helper()
	if err := graph.NewEnforcer(tr.g).Check(kind, tr.id[a], tr.id[b]); err != nil {
		tr.t.Fatalf("Check(%s %s->%s): %v", kind, a, b, err)
	}
	if _, err := tr.g.AddEdge(kind, tr.id[a], tr.id[b], graph.EdgeAttrs{}); err != nil {
		tr.t.Fatalf("AddEdge: %v", err)
	}
}

func (tr *tree) classify(a, b string) Label {
	tr.t.Helper()
	l, err := Classify(tr.g, tr.id[a], tr.id[b])
	if err != nil {
		tr.t.Fatalf("Classify(%s, %s): %v", a, b, err)
	}
	return l
}

func TestFromDepths(t *testing.T) {
	tests := []struct {
		dA, dB int
		sex    graph.Sex
		kind   Kind
		text   string
	}{
		{0, 0, graph.SexUnknown, KindSelf, "Self"},
		{0, 1, graph.SexFemale, KindAncestor, "Mother"},
		{0, 2, graph.SexMale, KindAncestor, "Grandfather"},
		{0, 3, graph.SexFemale, KindAncestor, "Great-grandmother"},
		{0, 5, graph.SexUnknown, KindAncestor, "Great-great-great-grandparent"},
		{1, 0, graph.SexMale, KindDescendant, "Son"},
		{2, 0, graph.SexUnknown, KindDescendant, "Grandchild"},
		{1, 1, graph.SexFemale, KindSibling, "Siblings"},
		{1, 2, graph.SexFemale, KindAuntUncle, "Aunt"},
		{1, 3, graph.SexFemale, KindAuntUncle, "Great-aunt"},
		{1, 4, graph.SexMale, KindAuntUncle, "Great-great-uncle"},
		{2, 1, graph.SexMale, KindNieceNephew, "Nephew"},
		{3, 1, graph.SexUnknown, KindNieceNephew, "Great-niece/nephew"},
		{2, 2, graph.SexUnknown, KindCousin, "First cousins, 0 times removed"},
		{2, 3, graph.SexUnknown, KindCousin, "First cousins, 1 time removed"},
		{3, 3, graph.SexUnknown, KindCousin, "Second cousins, 0 times removed"},
		{5, 3, graph.SexUnknown, KindCousin, "Second cousins, 2 times removed"},
		{13, 13, graph.SexUnknown, KindCousin, "12th cousins, 0 times removed"},
	}
	for _, tt := range tests {
		l := FromDepths(tt.dA, tt.dB, tt.sex)
		if l.Kind != tt.kind || l.Text != tt.text {
			t.Errorf("FromDepths(%d, %d) = %s %q, want %s %q", tt.dA, tt.dB, l.Kind, l.Text, tt.kind, tt.text)
		}
	}
}

func TestFromDepthsDegreeAndRemoval(t *testing.T) {
	l := FromDepths(4, 2, graph.SexUnknown)
	if l.Degree != 1 || l.Removal != 2 {
		t.Errorf("degree, removal = %d, %d want 1, 2", l.Degree, l.Removal)
	}
	if !l.Blood() {
		t.Error("cousin label should be blood")
	}
}

func TestClassifySiblings(t *testing.T) {
	tr := newTree(t, "Carol:f", "Dave:m", "Alice:f", "Bob:m")
	tr.parent("Carol", "Alice", "Bob")
	tr.parent("Dave", "Alice", "Bob")

	l := tr.classify("Alice", "Bob")
	if l.Text != "Siblings" {
		t.Errorf("Alice/Bob = %q, want Siblings", l.Text)
	}
	if l.Ancestor != tr.id["Carol"] {
		t.Errorf("ancestor = %s, want Carol (lower insertion rank)", l.Ancestor)
	}
}

func TestClassifyFirstCousins(t *testing.T) {
	tr := newTree(t, "Carol:f", "Alice:f", "Eve:f", "Frank:m", "Grace:f")
	tr.parent("Carol", "Alice", "Eve")
	tr.parent("Alice", "Frank")
	tr.parent("Eve", "Grace")

	if l := tr.classify("Frank", "Grace"); l.Text != "First cousins, 0 times removed" {
		t.Errorf("Frank/Grace = %q", l.Text)
	}
	if l := tr.classify("Grace", "Frank"); l.Text != "First cousins, 0 times removed" {
		t.Errorf("Grace/Frank = %q", l.Text)
	}
	if l := tr.classify("Carol", "Frank"); l.Text != "Grandmother" {
		t.Errorf("Carol/Frank = %q, want Grandmother", l.Text)
	}
	if l := tr.classify("Frank", "Carol"); l.Text != "Grandson" {
		t.Errorf("Frank/Carol = %q, want Grandson", l.Text)
	}
	if l := tr.classify("Eve", "Frank"); l.Text != "Aunt" {
		t.Errorf("Eve/Frank = %q, want Aunt", l.Text)
	}
}

func TestClassifyGreatAunt(t *testing.T) {
	tr := newTree(t, "Root", "Carol:f", "Rita:f", "Alice:f", "Frank:m")
	tr.parent("Root", "Carol", "Rita")
	tr.parent("Carol", "Alice")
	tr.parent("Alice", "Frank")

	l := tr.classify("Rita", "Frank")
	if l.Kind != KindAuntUncle || l.Text != "Great-aunt" {
		t.Errorf("Rita/Frank = %s %q, want Great-aunt", l.Kind, l.Text)
	}
	if l := tr.classify("Frank", "Rita"); l.Text != "Great-nephew" {
		t.Errorf("Frank/Rita = %q, want Great-nephew", l.Text)
	}
}

func TestClassifyPrefersBalancedAncestor(t *testing.T) {
	// A and B share parent X at (1,1) and Y at (1,2); Y has the lower rank.
	tr := newTree(t, "Y", "X", "W", "A", "B")
	tr.parent("Y", "A", "W")
	tr.parent("X", "A", "B")
	tr.parent("W", "B")

	l := tr.classify("A", "B")
	if l.Text != "Siblings" || l.Ancestor != tr.id["X"] {
		t.Errorf("A/B = %q via %s, want Siblings via X", l.Text, l.Ancestor)
	}
}

func TestClassifyUnrelated(t *testing.T) {
	tr := newTree(t, "A", "B", "C")
	tr.parent("A", "B")

	l := tr.classify("A", "C")
	if l.Kind != KindUnrelated || l.Text != "Unrelated" {
		t.Errorf("A/C = %s %q, want Unrelated", l.Kind, l.Text)
	}
}

func TestClassifySelfAndPartner(t *testing.T) {
	tr := newTree(t, "A", "B")
	tr.partner("A", "B")

	if l := tr.classify("A", "A"); l.Kind != KindSelf {
		t.Errorf("A/A = %s, want self", l.Kind)
	}
	if l := tr.classify("B", "A"); l.Kind != KindPartner || l.Text != "Partner" {
		t.Errorf("B/A = %s %q, want Partner", l.Kind, l.Text)
	}
}

func TestClassifyInLaws(t *testing.T) {
	tr := newTree(t, "Mia:f", "Bob:m", "Sue:f", "Ann:f", "Gus:m", "Kid:m", "Zed:m")
	tr.parent("Gus", "Mia")
	tr.parent("Mia", "Bob", "Sue")
	tr.partner("Bob", "Ann")
	tr.parent("Bob", "Kid")
	tr.parent("Kid", "Zed")

	tests := []struct {
		a, b string
		kind Kind
		text string
	}{
		{"Mia", "Ann", KindInLaw, "Mother-in-law"},
		{"Gus", "Ann", KindInLaw, "Grandfather-in-law"},
		{"Sue", "Ann", KindInLaw, "Sister-in-law"},
		{"Ann", "Mia", KindInLaw, "Daughter-in-law"},
		{"Ann", "Gus", KindInLaw, "Granddaughter-in-law"},
		{"Ann", "Sue", KindInLaw, "Sister-in-law"},
		{"Ann", "Kid", KindStep, "Stepmother"},
		{"Ann", "Zed", KindStep, "Step-grandmother"},
		{"Kid", "Ann", KindStep, "Stepson"},
		{"Zed", "Ann", KindStep, "Step-grandson"},
	}
	for _, tt := range tests {
		l := tr.classify(tt.a, tt.b)
		if l.Kind != tt.kind || l.Text != tt.text {
			t.Errorf("%s/%s = %s %q, want %s %q", tt.a, tt.b, l.Kind, l.Text, tt.kind, tt.text)
		}
		if l.Through != tr.id["Bob"] {
			t.Errorf("%s/%s through %s, want Bob", tt.a, tt.b, l.Through)
		}
	}
}

func TestClassifyCoParentAndMarriage(t *testing.T) {
	tr := newTree(t, "P", "X", "Y", "Z", "Ann", "Bob", "Sue", "Tom")
	tr.parent("X", "Z")
	tr.parent("Y", "Z")
	tr.parent("P", "Bob", "Sue")
	tr.partner("Ann", "Bob")
	tr.partner("Sue", "Tom")

	if l := tr.classify("X", "Y"); l.Kind != KindCoParent {
		t.Errorf("X/Y = %s %q, want co-parent", l.Kind, l.Text)
	}
	if l := tr.classify("Ann", "Tom"); l.Kind != KindRelated || l.Text != "Related by marriage" {
		t.Errorf("Ann/Tom = %s %q, want Related by marriage", l.Kind, l.Text)
	}
}

func TestClassifyNotFound(t *testing.T) {
	tr := newTree(t, "A")
	if _, err := Classify(tr.g, tr.id["A"], "ghost"); !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDescribe(t *testing.T) {
	tr := newTree(t, "Gran:f", "Mum:f", "Me:m", "Aunt:f", "Uncle:m", "Cousin:f", "Bro:m", "Kid")
	tr.parent("Gran", "Mum", "Aunt")
	tr.parent("Mum", "Me", "Bro")
	tr.parent("Aunt", "Cousin")
	tr.parent("Bro", "Kid")
	tr.partner("Aunt", "Uncle")

	tests := []struct {
		from, to string
		want     string
	}{
		{"Me", "Mum", "mother"},
		{"Me", "Bro", "brother"},
		{"Me", "Uncle", "mother's sister's husband"},
		{"Me", "Cousin", "mother's sister's daughter"},
		{"Me", "Kid", "brother's child"},
		{"Uncle", "Me", "wife's sister's son"},
		{"Gran", "Cousin", "daughter's daughter"},
		{"Me", "Me", "self"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			p, err := traverse.ShortestPath(tr.g, tr.id[tt.from], tr.id[tt.to])
			if err != nil {
				t.Fatalf("ShortestPath: %v", err)
			}
			if got := Describe(p, tr.g.SexOf); got != tt.want {
				t.Errorf("Describe = %q, want %q", got, tt.want)
			}
		})
	}
}
