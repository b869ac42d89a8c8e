package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/client"
	"github.com/lazypower/lineage/internal/codec"
	"github.com/lazypower/lineage/internal/config"
	"github.com/lazypower/lineage/internal/engine"
	"github.com/lazypower/lineage/internal/graph"
	"github.com/lazypower/lineage/internal/neo4jstore"
	"github.com/lazypower/lineage/internal/store"
)

// backend is what the commands need, served either by a local engine or by
// a running server.
type backend interface {
	Person(id string) (api.Person, error)
	Search(q string) ([]api.Person, error)
	AddPerson(p api.Person) (api.Person, error)
	EditPerson(id string, patch api.PersonPatch) (api.Person, error)
	RemovePerson(id string) error
	Parents(id string) ([]api.Person, error)
	Children(id string) ([]api.Person, error)
	Partners(id string) ([]api.Person, error)
	Relate(r api.Relationship) (api.RelationshipResult, error)
	Unrelate(id string) error
	Ancestors(id string, maxDepth int) ([]api.Relative, error)
	Descendants(id string, maxDepth int) ([]api.Relative, error)
	Common(a, b string) (api.CommonAncestors, error)
	Path(a, b string) (api.Path, error)
	Kinship(a, b string) (api.Kinship, error)
	Stats() (api.Stats, error)
	Save() error
}

var _ backend = (*client.Client)(nil)

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".lineage", "config.yaml")
		}
	}
	return config.Load(path)
}

// openProvider opens the storage named by cfg. The returned func closes it.
func openProvider(ctx context.Context, cfg config.Config) (engine.Provider, string, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		path := cfg.Storage.Path
		if path == "" {
			var err error
			if path, err = store.DefaultDBPath(); err != nil {
				return nil, "", nil, fmt.Errorf("resolve db path: %w", err)
			}
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open database: %w", err)
		}
		return db, "sqlite " + path, func() { db.Close() }, nil
	case config.DriverNeo4j:
		s, err := neo4jstore.Open(ctx, neo4jstore.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, "", nil, fmt.Errorf("open neo4j: %w", err)
		}
		return s, "neo4j " + cfg.Neo4j.URI, func() { s.Close(context.Background()) }, nil
	case config.DriverFile:
		f, err := codec.NewFile(cfg.Storage.Path)
		if err != nil {
			return nil, "", nil, err
		}
		return f, "file " + cfg.Storage.Path, func() {}, nil
	}
	return nil, "", nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// openBackend returns the backend for this invocation and a func that
// releases it. Local mutations are saved by Save.
func openBackend(ctx context.Context) (backend, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if remote {
		u := os.Getenv("LINEAGE_URL")
		if u == "" {
			u = cfg.DefaultServerURL()
		}
		return client.New(u), func() {}, nil
	}
	p, _, closeFn, err := openProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	eng := engine.New()
	if err := eng.Load(ctx, p); err != nil {
		closeFn()
		return nil, nil, err
	}
	return &local{ctx: ctx, eng: eng, provider: p, maxDepth: cfg.Query.MaxDepth}, closeFn, nil
}

// local serves commands from an engine loaded out of storage.
type local struct {
	ctx      context.Context
	eng      *engine.Engine
	provider engine.Provider
	maxDepth int
}

func (l *local) Person(id string) (api.Person, error) {
	p, err := l.eng.Person(graph.PersonID(id))
	return api.FromPerson(p), err
}

func (l *local) Search(q string) ([]api.Person, error) {
	return api.FromPeople(l.eng.Search(q)), nil
}

func (l *local) AddPerson(p api.Person) (api.Person, error) {
	attrs, err := p.Attrs()
	if err != nil {
		return api.Person{}, err
	}
	out, err := l.eng.AddPerson(attrs)
	return api.FromPerson(out), err
}

func (l *local) EditPerson(id string, patch api.PersonPatch) (api.Person, error) {
	p, err := l.eng.EditPerson(graph.PersonID(id), patch.Apply)
	return api.FromPerson(p), err
}

func (l *local) RemovePerson(id string) error {
	return l.eng.RemovePerson(graph.PersonID(id))
}

func (l *local) Parents(id string) ([]api.Person, error) {
	ps, err := l.eng.Parents(graph.PersonID(id))
	return api.FromPeople(ps), err
}

func (l *local) Children(id string) ([]api.Person, error) {
	ps, err := l.eng.Children(graph.PersonID(id))
	return api.FromPeople(ps), err
}

func (l *local) Partners(id string) ([]api.Person, error) {
	ps, err := l.eng.Partners(graph.PersonID(id))
	return api.FromPeople(ps), err
}

func (l *local) Relate(r api.Relationship) (api.RelationshipResult, error) {
	kind, from, to, attrs, err := r.Parse()
	if err != nil {
		return api.RelationshipResult{}, err
	}
	res, err := l.eng.AddRelationship(kind, from, to, attrs)
	if err != nil {
		return api.RelationshipResult{}, err
	}
	return api.FromEdgeResult(res), nil
}

func (l *local) Unrelate(id string) error {
	return l.eng.RemoveRelationship(graph.EdgeID(id))
}

func (l *local) depth(d int) int {
	if d == 0 {
		return l.maxDepth
	}
	return d
}

func (l *local) Ancestors(id string, maxDepth int) ([]api.Relative, error) {
	rs, err := l.eng.Ancestors(graph.PersonID(id), l.depth(maxDepth))
	return api.FromRelatives(rs), err
}

func (l *local) Descendants(id string, maxDepth int) ([]api.Relative, error) {
	rs, err := l.eng.Descendants(graph.PersonID(id), l.depth(maxDepth))
	return api.FromRelatives(rs), err
}

func (l *local) Common(a, b string) (api.CommonAncestors, error) {
	c, err := l.eng.CommonAncestors(graph.PersonID(a), graph.PersonID(b))
	return api.FromCommon(c), err
}

func (l *local) Path(a, b string) (api.Path, error) {
	p, err := l.eng.RelationshipPath(graph.PersonID(a), graph.PersonID(b))
	return api.FromPath(p), err
}

func (l *local) Kinship(a, b string) (api.Kinship, error) {
	k, err := l.eng.Kinship(graph.PersonID(a), graph.PersonID(b))
	return api.FromKinship(k), err
}

func (l *local) Stats() (api.Stats, error) {
	return api.FromStats(l.eng.Stats()), nil
}

func (l *local) Save() error {
	return l.eng.Save(l.ctx, l.provider)
}

// resolve accepts a person ID or an exact, unique name.
func resolve(b backend, ref string) (api.Person, error) {
	p, err := b.Person(ref)
	if err == nil || !errors.Is(err, graph.ErrNotFound) {
		return p, err
	}
	matches, serr := b.Search(ref)
	if serr != nil {
		return api.Person{}, serr
	}
	var found []api.Person
	for _, m := range matches {
		if strings.EqualFold(m.Name, ref) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		if len(matches) > 0 {
			return api.Person{}, fmt.Errorf("%w; did you mean %s?", err, suggest(matches))
		}
		return api.Person{}, err
	case 1:
		return found[0], nil
	}
	ids := make([]string, len(found))
	for i, f := range found {
		ids[i] = f.ID
	}
	return api.Person{}, fmt.Errorf("%q matches %d people (%s); use an id", ref, len(found), strings.Join(ids, ", "))
}

func resolvePair(b backend, refA, refB string) (api.Person, api.Person, error) {
	a, err := resolve(b, refA)
	if err != nil {
		return api.Person{}, api.Person{}, err
	}
	bp, err := resolve(b, refB)
	if err != nil {
		return api.Person{}, api.Person{}, err
	}
	return a, bp, nil
}

func suggest(ps []api.Person) string {
	if len(ps) > 3 {
		ps = ps[:3]
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = fmt.Sprintf("%q (%s)", p.Name, p.ID)
	}
	return strings.Join(names, " or ")
}
