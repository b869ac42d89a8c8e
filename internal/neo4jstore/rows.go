package neo4jstore

import (
	"fmt"

	"github.com/lazypower/lineage/internal/graph"
)

// personRows flattens people into Cypher parameter maps. Absent dates are
// omitted so the node property is never set.
func personRows(people []graph.Person) []map[string]any {
	rows := make([]map[string]any, 0, len(people))
	for i, p := range people {
		row := map[string]any{
			"id":          string(p.ID),
			"seq":         int64(i),
			"name":        p.Name,
			"sex":         string(p.Sex),
			"birth_place": p.BirthPlace,
			"occupation":  p.Occupation,
			"notes":       p.Notes,
		}
		if p.Born != nil {
			row["born"] = graph.FormatDate(p.Born)
		}
		if p.Died != nil {
			row["died"] = graph.FormatDate(p.Died)
		}
		rows = append(rows, row)
	}
	return rows
}

// edgeRows splits edges by relationship type. seq is the position in the
// full edge list so mixed kinds load back in their original order.
func edgeRows(edges []graph.Edge) (parents, partners []map[string]any) {
	parents = []map[string]any{}
	partners = []map[string]any{}
	for i, e := range edges {
		row := map[string]any{
			"id":    string(e.ID),
			"seq":   int64(i),
			"from":  string(e.From),
			"to":    string(e.To),
			"notes": e.Notes,
		}
		switch e.Kind {
		case graph.KindParentChild:
			parents = append(parents, row)
		case graph.KindPartnership:
			row["married"] = nullableDate(graph.FormatDate(e.Married))
			row["divorced"] = nullableDate(graph.FormatDate(e.Divorced))
			partners = append(partners, row)
		default:
			panic(fmt.Sprintf("neo4jstore: unhandled edge kind %q", e.Kind))
		}
	}
	return parents, partners
}

func nullableDate(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func personFromRow(row map[string]any) (graph.Person, error) {
	p := graph.Person{
		ID:         graph.PersonID(str(row["id"])),
		Name:       str(row["name"]),
		Sex:        graph.Sex(str(row["sex"])),
		BirthPlace: str(row["birth_place"]),
		Occupation: str(row["occupation"]),
		Notes:      str(row["notes"]),
	}
	var err error
	if p.Born, err = graph.ParseDate(str(row["born"])); err != nil {
		return p, fmt.Errorf("person %s born: %w", p.ID, err)
	}
	if p.Died, err = graph.ParseDate(str(row["died"])); err != nil {
		return p, fmt.Errorf("person %s died: %w", p.ID, err)
	}
	return p, nil
}

func edgeFromRow(row map[string]any) (graph.Edge, error) {
	e := graph.Edge{
		ID:    graph.EdgeID(str(row["id"])),
		From:  graph.PersonID(str(row["from"])),
		To:    graph.PersonID(str(row["to"])),
		Notes: str(row["notes"]),
	}
	switch t := str(row["type"]); t {
	case relParent:
		e.Kind = graph.KindParentChild
	case relPartner:
		e.Kind = graph.KindPartnership
	default:
		return e, fmt.Errorf("relationship %s: unknown type %q", e.ID, t)
	}
	var err error
	if e.Married, err = graph.ParseDate(str(row["married"])); err != nil {
		return e, fmt.Errorf("relationship %s married: %w", e.ID, err)
	}
	if e.Divorced, err = graph.ParseDate(str(row["divorced"])); err != nil {
		return e, fmt.Errorf("relationship %s divorced: %w", e.ID, err)
	}
	return e, nil
}

// str reads an optional string property; missing or null values are "".
func str(v any) string {
	s, _ := v.(string)
	return s
}
