package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lazypower/lineage/internal/graph"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMemory(t *testing.T) {
	db := testDB(t)
	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := testDB(t)

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d, want %d", v, len(migrations))
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, _ := db.SchemaVersion()
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d after re-migrate", v)
	}
}

func TestTablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"schema_versions", "people", "relationships"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestRelationshipConstraints(t *testing.T) {
	db := testDB(t)

	_, err := db.Exec(`INSERT INTO people (id, seq, name, saved_at) VALUES ('a', 0, 'A', 0), ('b', 1, 'B', 0)`)
	if err != nil {
		t.Fatalf("insert people: %v", err)
	}

	tests := []struct {
		name string
		sql  string
	}{
		{"self reference", `INSERT INTO relationships (id, seq, kind, from_id, to_id, saved_at) VALUES ('r1', 0, 'parent_child', 'a', 'a', 0)`},
		{"unknown kind", `INSERT INTO relationships (id, seq, kind, from_id, to_id, saved_at) VALUES ('r2', 1, 'sibling', 'a', 'b', 0)`},
		{"dangling endpoint", `INSERT INTO relationships (id, seq, kind, from_id, to_id, saved_at) VALUES ('r3', 2, 'parent_child', 'a', 'ghost', 0)`},
		{"blank name", `INSERT INTO people (id, seq, name, saved_at) VALUES ('c', 9, '  ', 0)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Exec(tt.sql); err == nil {
				t.Error("expected constraint violation")
			}
		})
	}
}

func sampleSnapshot(t *testing.T) graph.Snapshot {
	t.Helper()
	born, _ := graph.ParseDate("1931-04-02")
	died, _ := graph.ParseDate("2001-11-30")
	married, _ := graph.ParseDate("1955-06-18")
	return graph.Snapshot{
		People: []graph.Person{
			{ID: "carol", Name: "Carol", Sex: graph.SexFemale, Born: born, Died: died, BirthPlace: "Leeds", Occupation: "Weaver"},
			{ID: "dave", Name: "Dave", Sex: graph.SexMale},
			{ID: "alice", Name: "Alice", Notes: "eldest"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Kind: graph.KindPartnership, From: "carol", To: "dave", Married: married},
			{ID: "e2", Kind: graph.KindParentChild, From: "carol", To: "alice"},
			{ID: "e3", Kind: graph.KindParentChild, From: "dave", To: "alice", Notes: "adoptive"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	want := sampleSnapshot(t)

	if err := db.SaveGraph(ctx, want); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	got, err := db.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	if len(got.People) != len(want.People) || len(got.Edges) != len(want.Edges) {
		t.Fatalf("loaded %d people, %d edges", len(got.People), len(got.Edges))
	}
	for i, p := range got.People {
		w := want.People[i]
		if p.ID != w.ID || p.Name != w.Name || p.Sex != w.Sex || p.BirthPlace != w.BirthPlace ||
			p.Occupation != w.Occupation || p.Notes != w.Notes ||
			graph.FormatDate(p.Born) != graph.FormatDate(w.Born) || graph.FormatDate(p.Died) != graph.FormatDate(w.Died) {
			t.Errorf("person %d = %+v, want %+v", i, p, w)
		}
	}
	for i, e := range got.Edges {
		w := want.Edges[i]
		if e.ID != w.ID || e.Kind != w.Kind || e.From != w.From || e.To != w.To || e.Notes != w.Notes ||
			graph.FormatDate(e.Married) != graph.FormatDate(w.Married) {
			t.Errorf("edge %d = %+v, want %+v", i, e, w)
		}
	}

	if _, err := graph.FromSnapshot(got); err != nil {
		t.Errorf("loaded snapshot does not restore: %v", err)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	if err := db.SaveGraph(ctx, sampleSnapshot(t)); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	small := graph.Snapshot{People: []graph.Person{{ID: "solo", Name: "Solo"}}}
	if err := db.SaveGraph(ctx, small); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}

	people, rels, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if people != 1 || rels != 0 {
		t.Errorf("Counts = %d, %d want 1, 0", people, rels)
	}
}

func TestSaveFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	if err := db.SaveGraph(ctx, sampleSnapshot(t)); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	bad := graph.Snapshot{
		People: []graph.Person{{ID: "x", Name: "X"}},
		Edges:  []graph.Edge{{ID: "e", Kind: graph.KindParentChild, From: "x", To: "missing"}},
	}
	if err := db.SaveGraph(ctx, bad); err == nil {
		t.Fatal("expected save of dangling edge to fail")
	}

	people, rels, _ := db.Counts(ctx)
	if people != 3 || rels != 3 {
		t.Errorf("Counts after failed save = %d, %d want 3, 3", people, rels)
	}
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "lineage.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.SaveGraph(ctx, sampleSnapshot(t)); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	s, err := db.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if len(s.People) != 3 {
		t.Errorf("reopened graph has %d people", len(s.People))
	}
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "lineage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	// Hold two connections at once so the pool has to open a second one.
	c1, err := db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c1.Close()
	c2, err := db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	for i, c := range []*sql.Conn{c1, c2} {
		var fk, timeout int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if fk != 1 || timeout != 5000 {
			t.Errorf("conn %d: foreign_keys=%d busy_timeout=%d", i, fk, timeout)
		}
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/x.db")
	if !strings.HasPrefix(got, "file:/tmp/x.db?") || !strings.Contains(got, "_pragma=foreign_keys%281%29") {
		t.Errorf("dsn = %q", got)
	}
}
