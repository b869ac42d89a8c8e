// Package neo4jstore persists family graphs in Neo4j. People are :Person
// nodes; relationships are :PARENT_OF (parent to child) and :PARTNER_OF
// edges. Every save rewrites the whole graph in one write transaction.
package neo4jstore

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lazypower/lineage/internal/graph"
)

// Config holds plain connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Store is a graph provider backed by a Neo4j database.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// Open connects to Neo4j, verifies connectivity and ensures the id
// constraint exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect neo4j %s: %w", cfg.URI, err)
	}
	s := &Store{driver: driver, database: cfg.Database}
	if err := s.ensureSchema(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	log.Printf("neo4jstore: connected to %s", cfg.URI)
	return s, nil
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Store) ensureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE`, nil)
	if err != nil {
		return fmt.Errorf("create person constraint: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("create person constraint: %w", err)
	}
	return nil
}

const (
	relParent  = "PARENT_OF"
	relPartner = "PARTNER_OF"
)

// LoadGraph reads every person and relationship in insertion order.
func (s *Store) LoadGraph(ctx context.Context) (graph.Snapshot, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var snap graph.Snapshot

		people, err := tx.Run(ctx, `
			MATCH (p:Person)
			RETURN p.id AS id, p.name AS name, p.sex AS sex, p.born AS born, p.died AS died,
			       p.birth_place AS birth_place, p.occupation AS occupation, p.notes AS notes
			ORDER BY p.seq
		`, nil)
		if err != nil {
			return nil, fmt.Errorf("query people: %w", err)
		}
		for people.Next(ctx) {
			p, err := personFromRow(people.Record().AsMap())
			if err != nil {
				return nil, err
			}
			snap.People = append(snap.People, p)
		}
		if err := people.Err(); err != nil {
			return nil, fmt.Errorf("iterate people: %w", err)
		}

		edges, err := tx.Run(ctx, `
			MATCH (a:Person)-[r:PARENT_OF|PARTNER_OF]->(b:Person)
			RETURN r.id AS id, type(r) AS type, a.id AS from, b.id AS to,
			       r.married AS married, r.divorced AS divorced, r.notes AS notes
			ORDER BY r.seq
		`, nil)
		if err != nil {
			return nil, fmt.Errorf("query relationships: %w", err)
		}
		for edges.Next(ctx) {
			e, err := edgeFromRow(edges.Record().AsMap())
			if err != nil {
				return nil, err
			}
			snap.Edges = append(snap.Edges, e)
		}
		if err := edges.Err(); err != nil {
			return nil, fmt.Errorf("iterate relationships: %w", err)
		}
		return snap, nil
	})
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("load neo4j graph: %w", err)
	}
	return out.(graph.Snapshot), nil
}

// SaveGraph replaces every :Person node and its relationships with s.
func (s *Store) SaveGraph(ctx context.Context, snap graph.Snapshot) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	parents, partners := edgeRows(snap.Edges)
	statements := []struct {
		what   string
		cypher string
		params map[string]any
	}{
		{"clear graph", `MATCH (p:Person) DETACH DELETE p`, nil},
		{"create people", `
			UNWIND $rows AS row
			CREATE (p:Person)
			SET p = row
		`, map[string]any{"rows": personRows(snap.People)}},
		{"create parent edges", `
			UNWIND $rows AS row
			MATCH (a:Person {id: row.from}), (b:Person {id: row.to})
			CREATE (a)-[r:PARENT_OF]->(b)
			SET r.id = row.id, r.seq = row.seq, r.notes = row.notes
		`, map[string]any{"rows": parents}},
		{"create partner edges", `
			UNWIND $rows AS row
			MATCH (a:Person {id: row.from}), (b:Person {id: row.to})
			CREATE (a)-[r:PARTNER_OF]->(b)
			SET r.id = row.id, r.seq = row.seq, r.notes = row.notes,
			    r.married = row.married, r.divorced = row.divorced
		`, map[string]any{"rows": partners}},
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range statements {
			result, err := tx.Run(ctx, st.cypher, st.params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", st.what, err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, fmt.Errorf("%s: %w", st.what, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("save neo4j graph: %w", err)
	}
	return nil
}
