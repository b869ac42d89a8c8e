// Package engine is the query API over a family graph. It owns the single
// in-memory graph, serializes writers against concurrent readers, routes every
// structural mutation through the Enforcer and exchanges whole snapshots with
// persistence providers.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/lazypower/lineage/internal/graph"
)

// Provider loads and saves whole graphs. Implementations live in store,
// neo4jstore and codec.
type Provider interface {
	LoadGraph(ctx context.Context) (graph.Snapshot, error)
	SaveGraph(ctx context.Context, s graph.Snapshot) error
}

// Engine holds one family graph. Readers share the lock; mutations, Load and
// Reset take it exclusively.
type Engine struct {
	mu sync.RWMutex
	g  *graph.Graph
}

// New creates an Engine with an empty graph.
func New() *Engine {
	return &Engine{g: graph.New()}
}

// Load replaces the current graph with the provider's snapshot. The snapshot
// is replayed through the Enforcer into a fresh graph; the current graph is
// kept if anything in it is rejected.
func (e *Engine) Load(ctx context.Context, p Provider) error {
	s, err := p.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	if err := e.Restore(s); err != nil {
		return err
	}
	log.Printf("engine: loaded %d people, %d relationships", len(s.People), len(s.Edges))
	return nil
}

// Restore swaps in a graph rebuilt from s.
func (e *Engine) Restore(s graph.Snapshot) error {
	g, err := graph.FromSnapshot(s)
	if err != nil {
		return fmt.Errorf("restore graph: %w", err)
	}
	e.mu.Lock()
	e.g = g
	e.mu.Unlock()
	return nil
}

// Save writes a snapshot of the current graph through p. The snapshot is
// taken under the read lock; provider I/O happens outside it.
func (e *Engine) Save(ctx context.Context, p Provider) error {
	s := e.Snapshot()
	if err := p.SaveGraph(ctx, s); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	log.Printf("engine: saved %d people, %d relationships", len(s.People), len(s.Edges))
	return nil
}

// Snapshot copies the current graph.
func (e *Engine) Snapshot() graph.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.g.Snapshot()
}

// Reset discards the current graph.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.g = graph.New()
	e.mu.Unlock()
}

// Len returns the number of people in the graph.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.g.Len()
}

// read runs fn under the read lock.
func (e *Engine) read(fn func(g *graph.Graph) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(e.g)
}

// write runs fn under the write lock.
func (e *Engine) write(fn func(g *graph.Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.g)
}

// people resolves ids to person records. Callers hold the lock.
func people(g *graph.Graph, ids []graph.PersonID) ([]graph.Person, error) {
	out := make([]graph.Person, 0, len(ids))
	for _, id := range ids {
		p, err := g.Person(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
