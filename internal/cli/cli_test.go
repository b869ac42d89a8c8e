package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/codec"
	"github.com/lazypower/lineage/internal/graph"
)

// fileWorkspace points the CLI at a family file in a temp dir.
func fileWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	family := filepath.Join(dir, "family.yaml")
	cfg := "storage:\n  driver: file\n  path: " + family + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	configPath, remote, jsonOut = cfgPath, false, true
	t.Cleanup(func() { configPath, jsonOut = "", false })
	return family
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCommandsPersistToFamilyFile(t *testing.T) {
	family := fileWorkspace(t)

	for _, args := range [][]string{
		{"person", "add", "Carol"},
		{"person", "add", "Alice"},
		{"relate", "parent", "Carol", "Alice"},
		{"kin", "Carol", "Alice"},
	} {
		if err := run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	f, err := codec.NewFile(family)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := f.LoadGraph(context.Background())
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if len(snap.People) != 2 || len(snap.Edges) != 1 || snap.Edges[0].Kind != graph.KindParentChild {
		t.Errorf("family file = %+v", snap)
	}

	if err := run(t, "relate", "parent", "Alice", "Carol"); !errors.Is(err, graph.ErrCycle) {
		t.Errorf("cycle err = %v", err)
	}
}

func TestResolve(t *testing.T) {
	fileWorkspace(t)
	b, done, err := openBackend(context.Background())
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer done()

	one, _ := b.AddPerson(api.Person{Name: "John"})
	b.AddPerson(api.Person{Name: "Mary"})
	b.AddPerson(api.Person{Name: "Mary"})

	if p, err := resolve(b, one.ID); err != nil || p.Name != "John" {
		t.Errorf("resolve(id) = %+v, %v", p, err)
	}
	if p, err := resolve(b, "john"); err != nil || p.ID != one.ID {
		t.Errorf("resolve(name) = %+v, %v", p, err)
	}
	if _, err := resolve(b, "Mary"); err == nil {
		t.Error("ambiguous name resolved")
	}
	if _, err := resolve(b, "Nobody"); !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("resolve(missing) = %v", err)
	}
}

func TestImportExport(t *testing.T) {
	fileWorkspace(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	doc := `{"people":[{"id":"a","name":"A"},{"id":"b","name":"B"}],"relationships":[{"kind":"spouse","from":"a","to":"b"}]}`
	if err := os.WriteFile(in, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "import", in); err != nil {
		t.Fatalf("import: %v", err)
	}
	out := filepath.Join(dir, "out.yaml")
	if err := run(t, "export", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, _ := codec.NewFile(out)
	snap, err := f.LoadGraph(context.Background())
	if err != nil || len(snap.People) != 2 || len(snap.Edges) != 1 {
		t.Errorf("exported = %+v, %v", snap, err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"people":[{"id":"a","name":"A"}],"relationships":[{"kind":"parent","from":"a","to":"a"}]}`), 0644)
	if err := run(t, "import", bad); !errors.Is(err, graph.ErrSelfReference) {
		t.Errorf("bad import err = %v", err)
	}
}
