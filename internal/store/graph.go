package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lazypower/lineage/internal/graph"
)

// LoadGraph reads every person and relationship in insertion order.
func (db *DB) LoadGraph(ctx context.Context) (graph.Snapshot, error) {
	var (
		s   graph.Snapshot
		err error
	)
	if s.People, err = db.loadPeople(ctx); err != nil {
		return graph.Snapshot{}, err
	}
	if s.Edges, err = db.loadRelationships(ctx); err != nil {
		return graph.Snapshot{}, err
	}
	return s, nil
}

func (db *DB) loadPeople(ctx context.Context) ([]graph.Person, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, sex, born, died, birth_place, occupation, notes
		FROM people ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var out []graph.Person
	for rows.Next() {
		var (
			p          graph.Person
			id, sex    string
			born, died sql.NullString
		)
		if err := rows.Scan(&id, &p.Name, &sex, &born, &died, &p.BirthPlace, &p.Occupation, &p.Notes); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.ID = graph.PersonID(id)
		p.Sex = graph.Sex(sex)
		if p.Born, err = parseDate(born); err != nil {
			return nil, fmt.Errorf("person %s born: %w", id, err)
		}
		if p.Died, err = parseDate(died); err != nil {
			return nil, fmt.Errorf("person %s died: %w", id, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return out, nil
}

func (db *DB) loadRelationships(ctx context.Context) ([]graph.Edge, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, kind, from_id, to_id, married, divorced, notes
		FROM relationships ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var (
			e                 graph.Edge
			id, kind          string
			from, to          string
			married, divorced sql.NullString
		)
		if err := rows.Scan(&id, &kind, &from, &to, &married, &divorced, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		e.ID = graph.EdgeID(id)
		e.Kind = graph.EdgeKind(kind)
		e.From = graph.PersonID(from)
		e.To = graph.PersonID(to)
		if e.Married, err = parseDate(married); err != nil {
			return nil, fmt.Errorf("relationship %s married: %w", id, err)
		}
		if e.Divorced, err = parseDate(divorced); err != nil {
			return nil, fmt.Errorf("relationship %s divorced: %w", id, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return out, nil
}

// SaveGraph replaces the stored graph with s in a single transaction.
func (db *DB) SaveGraph(ctx context.Context, s graph.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"relationships", "people"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	now := time.Now().UnixMilli()
	insPerson, err := tx.PrepareContext(ctx, `
		INSERT INTO people (id, seq, name, sex, born, died, birth_place, occupation, notes, saved_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare person insert: %w", err)
	}
	defer insPerson.Close()

	for i, p := range s.People {
		if _, err := insPerson.ExecContext(ctx, string(p.ID), i, p.Name, string(p.Sex),
			graph.FormatDate(p.Born), graph.FormatDate(p.Died),
			p.BirthPlace, p.Occupation, p.Notes, now); err != nil {
			return fmt.Errorf("insert person %s: %w", p.ID, err)
		}
	}

	insEdge, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (id, seq, kind, from_id, to_id, married, divorced, notes, saved_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare relationship insert: %w", err)
	}
	defer insEdge.Close()

	for i, e := range s.Edges {
		if _, err := insEdge.ExecContext(ctx, string(e.ID), i, string(e.Kind), string(e.From), string(e.To),
			graph.FormatDate(e.Married), graph.FormatDate(e.Divorced), e.Notes, now); err != nil {
			return fmt.Errorf("insert relationship %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Counts returns the number of stored people and relationships.
func (db *DB) Counts(ctx context.Context) (people, relationships int, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM people), (SELECT COUNT(*) FROM relationships)
	`).Scan(&people, &relationships)
	if err != nil {
		return 0, 0, fmt.Errorf("count graph: %w", err)
	}
	return people, relationships, nil
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	return graph.ParseDate(s.String)
}
