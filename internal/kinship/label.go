package kinship

import (
	"fmt"
	"strings"

	"github.com/lazypower/lineage/internal/graph"
)

// Kind is the broad class of a kinship label.
type Kind string

const (
	KindSelf        Kind = "self"
	KindAncestor    Kind = "ancestor"
	KindDescendant  Kind = "descendant"
	KindSibling     Kind = "sibling"
	KindAuntUncle   Kind = "aunt_uncle"
	KindNieceNephew Kind = "niece_nephew"
	KindCousin      Kind = "cousin"
	KindPartner     Kind = "partner"
	KindInLaw       Kind = "in_law"
	KindStep        Kind = "step"
	KindCoParent    Kind = "co_parent"
	KindRelated     Kind = "related"
	KindUnrelated   Kind = "unrelated"
)

// Label describes how person A relates to person B. Text reads as
// "A is B's <Text>" except for the symmetric sibling and cousin forms.
type Label struct {
	Kind    Kind
	Text    string
	DepthA  int
	DepthB  int
	Degree  int
	Removal int
	// Ancestor is the lowest common ancestor the label was derived from.
	Ancestor graph.PersonID
	// Through is the partner linking A and B for in-law and step labels.
	Through graph.PersonID
}

// Blood reports whether the label comes from a shared ancestor.
func (l Label) Blood() bool {
	switch l.Kind {
	case KindSelf, KindAncestor, KindDescendant, KindSibling, KindAuntUncle, KindNieceNephew, KindCousin:
		return true
	}
	return false
}

// Generations returns the number of generations separating a direct-line
// ancestor or descendant; 0 for other kinds.
func (l Label) Generations() int {
	switch l.Kind {
	case KindAncestor, KindDescendant:
		return abs(l.DepthA - l.DepthB)
	}
	return 0
}

// FromDepths classifies a blood relationship given the generational distance
// of A (dA) and B (dB) to a lowest common ancestor. sexA only affects phrasing.
func FromDepths(dA, dB int, sexA graph.Sex) Label {
	l := Label{DepthA: dA, DepthB: dB}
	switch {
	case dA == 0 && dB == 0:
		l.Kind, l.Text = KindSelf, "Self"
	case dA == 0:
		l.Kind = KindAncestor
		l.Text = lineal(dB, sexA, [3]string{"Mother", "Father", "Parent"})
	case dB == 0:
		l.Kind = KindDescendant
		l.Text = lineal(dA, sexA, [3]string{"Daughter", "Son", "Child"})
	default:
		l.Degree = min(dA, dB) - 1
		l.Removal = abs(dA - dB)
		switch {
		case l.Degree == 0 && l.Removal == 0:
			l.Kind, l.Text = KindSibling, "Siblings"
		case l.Degree == 0 && dA < dB:
			l.Kind = KindAuntUncle
			l.Text = withGreats(l.Removal-1, sexed(sexA, "Aunt", "Uncle", "Aunt/Uncle"))
		case l.Degree == 0:
			l.Kind = KindNieceNephew
			l.Text = withGreats(l.Removal-1, sexed(sexA, "Niece", "Nephew", "Niece/Nephew"))
		default:
			l.Kind = KindCousin
			l.Text = fmt.Sprintf("%s cousins, %s removed", ordinal(l.Degree), times(l.Removal))
		}
	}
	return l
}

// singular phrases a blood label as a single noun ("Sister", "First cousin,
// 1 time removed") for composition into in-law forms.
func singular(l Label, sex graph.Sex) string {
	switch l.Kind {
	case KindSibling:
		return sexed(sex, "Sister", "Brother", "Sibling")
	case KindCousin:
		s := ordinal(l.Degree) + " cousin"
		if l.Removal > 0 {
			s += ", " + times(l.Removal) + " removed"
		}
		return s
	default:
		return l.Text
	}
}

// lineal names a direct ancestor or descendant n generations away.
func lineal(n int, sex graph.Sex, base [3]string) string {
	word := sexed(sex, base[0], base[1], base[2])
	if n == 1 {
		return word
	}
	return withGreats(n-2, "Grand"+strings.ToLower(word))
}

// withGreats prefixes word with n "great-" generations: "Great-great-aunt".
func withGreats(n int, word string) string {
	if n <= 0 {
		return word
	}
	return "Great-" + strings.Repeat("great-", n-1) + strings.ToLower(word)
}

func sexed(sex graph.Sex, female, male, neutral string) string {
	switch sex {
	case graph.SexFemale:
		return female
	case graph.SexMale:
		return male
	default:
		return neutral
	}
}

var ordinals = []string{"", "First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth", "Tenth"}

func ordinal(n int) string {
	if n > 0 && n < len(ordinals) {
		return ordinals[n]
	}
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func times(n int) string {
	if n == 1 {
		return "1 time"
	}
	return fmt.Sprintf("%d times", n)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
