// Package kinship turns relationship structure into human-readable labels:
// siblings, cousins with degree and removal, aunts and great-aunts, in-laws
// and step relations.
package kinship

import (
	"errors"
	"strings"

	"github.com/lazypower/lineage/internal/graph"
	"github.com/lazypower/lineage/internal/traverse"
)

// Source is the read view the classifier needs. *graph.Graph satisfies it.
type Source interface {
	traverse.Source
	SexOf(id graph.PersonID) graph.Sex
}

// Classify labels how a relates to b.
//
// Blood relations come from the lowest common ancestor minimizing |dA-dB|,
// ties broken by insertion rank. Without a common ancestor, partners and the
// partners' blood relatives yield partner, in-law and step labels. Anything
// else that is still connected is a co-parent or a relative by marriage; with
// no path at all the result is KindUnrelated.
func Classify(src Source, a, b graph.PersonID) (Label, error) {
	for _, id := range []graph.PersonID{a, b} {
		if !src.Has(id) {
			return Label{}, &graph.RefError{ID: string(id), Err: graph.ErrNotFound}
		}
	}
	if l, ok := blood(src, a, b); ok {
		return l, nil
	}

	partnersA, _ := src.PartnersOf(a)
	for _, p := range partnersA {
		if p == b {
			return Label{Kind: KindPartner, Text: "Partner", Through: b}, nil
		}
	}

	if l, ok := byMarriage(src, a, b, partnersA); ok {
		return l, nil
	}

	path, err := traverse.ShortestPath(src, a, b)
	switch {
	case errors.Is(err, graph.ErrNotConnected):
		return Label{Kind: KindUnrelated, Text: "Unrelated"}, nil
	case err != nil:
		return Label{}, err
	}
	if path.Len() == 2 && path.Steps[0].Direction == traverse.Down && path.Steps[1].Direction == traverse.Up {
		return Label{Kind: KindCoParent, Text: "Co-parent", Through: path.People[1]}, nil
	}
	text := "Distant relative"
	if path.Partnerships() > 0 {
		text = "Related by marriage"
	}
	return Label{Kind: KindRelated, Text: text}, nil
}

// blood labels a and b from their common lineage, if any.
func blood(src Source, a, b graph.PersonID) (Label, bool) {
	c, err := traverse.CommonLineage(src, a, b)
	if err != nil || len(c.Lowest) == 0 {
		return Label{}, false
	}
	// Lowest is already in insertion-rank order, so the first minimum wins ties.
	best := c.Lowest[0]
	for _, s := range c.Lowest[1:] {
		if abs(s.DepthA-s.DepthB) < abs(best.DepthA-best.DepthB) {
			best = s
		}
	}
	l := FromDepths(best.DepthA, best.DepthB, src.SexOf(a))
	l.Ancestor = best.ID
	return l, true
}

type candidate struct {
	label    Label
	distance int
}

// byMarriage looks one partnership away on either side: a related by blood
// to one of b's partners, or a partnered with one of b's blood relatives.
// The closest blood link wins; ties prefer b's side, then partner order.
func byMarriage(src Source, a, b graph.PersonID, partnersA []graph.PersonID) (Label, bool) {
	var best *candidate
	consider := func(c candidate) {
		if best == nil || c.distance < best.distance {
			best = &c
		}
	}

	sexA := src.SexOf(a)
	partnersB, _ := src.PartnersOf(b)
	for _, p := range partnersB {
		if p == a {
			continue
		}
		if l, ok := blood(src, a, p); ok && l.Kind != KindSelf {
			consider(candidate{label: viaPartnerOfB(l, sexA, p), distance: l.DepthA + l.DepthB})
		}
	}
	for _, p := range partnersA {
		if p == b {
			continue
		}
		if l, ok := blood(src, p, b); ok && l.Kind != KindSelf {
			// rephrase with a's sex: a stands in p's place
			l2 := FromDepths(l.DepthA, l.DepthB, sexA)
			l2.Ancestor = l.Ancestor
			consider(candidate{label: viaPartnerOfA(l2, sexA, p), distance: l.DepthA + l.DepthB})
		}
	}
	if best == nil {
		return Label{}, false
	}
	return best.label, true
}

// viaPartnerOfB: a relates to b's partner p by blood label l.
func viaPartnerOfB(l Label, sexA graph.Sex, p graph.PersonID) Label {
	out := Label{Kind: KindInLaw, DepthA: l.DepthA, DepthB: l.DepthB, Degree: l.Degree, Removal: l.Removal, Ancestor: l.Ancestor, Through: p}
	switch {
	case l.Kind == KindAncestor:
		out.Text = l.Text + "-in-law"
	case l.Kind == KindSibling:
		out.Text = singular(l, sexA) + "-in-law"
	case l.Kind == KindDescendant && l.Generations() == 1:
		out.Kind = KindStep
		out.Text = "Step" + strings.ToLower(l.Text)
	case l.Kind == KindDescendant:
		out.Kind = KindStep
		out.Text = "Step-" + strings.ToLower(l.Text)
	default:
		out.Text = singular(l, sexA) + " by marriage"
	}
	return out
}

// viaPartnerOfA: a's partner p relates to b by blood label l (phrased with
// a's sex).
func viaPartnerOfA(l Label, sexA graph.Sex, p graph.PersonID) Label {
	out := Label{Kind: KindInLaw, DepthA: l.DepthA, DepthB: l.DepthB, Degree: l.Degree, Removal: l.Removal, Ancestor: l.Ancestor, Through: p}
	switch {
	case l.Kind == KindAncestor && l.Generations() == 1:
		out.Kind = KindStep
		out.Text = "Step" + strings.ToLower(l.Text)
	case l.Kind == KindAncestor:
		out.Kind = KindStep
		out.Text = "Step-" + strings.ToLower(l.Text)
	case l.Kind == KindSibling:
		out.Text = singular(l, sexA) + "-in-law"
	case l.Kind == KindDescendant:
		out.Text = l.Text + "-in-law"
	default:
		out.Text = singular(l, sexA) + " by marriage"
	}
	return out
}
