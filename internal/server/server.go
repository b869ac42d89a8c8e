// Package server exposes the engine over an HTTP JSON API.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/engine"
	"github.com/lazypower/lineage/internal/graph"
)

// Server is the lineage HTTP API server.
type Server struct {
	eng      *engine.Engine
	provider engine.Provider
	router   chi.Router
	version  string
	started  time.Time
	maxDepth int
}

// New creates a server over eng. provider backs POST /api/save and may be
// nil, in which case saving is refused.
func New(eng *engine.Engine, provider engine.Provider, version string) *Server {
	s := &Server{
		eng:      eng,
		provider: provider,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// WithMaxDepth sets the depth bound used when a lineage request gives none.
func (s *Server) WithMaxDepth(d int) *Server {
	s.maxDepth = d
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Post("/save", s.handleSave)

		r.Get("/people", s.handleListPeople)
		r.Post("/people", s.handleCreatePerson)
		r.Route("/people/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetPerson)
			r.Patch("/", s.handleUpdatePerson)
			r.Delete("/", s.handleDeletePerson)
			r.Get("/parents", s.handleAdjacent(s.eng.Parents))
			r.Get("/children", s.handleAdjacent(s.eng.Children))
			r.Get("/partners", s.handleAdjacent(s.eng.Partners))
			r.Get("/ancestors", s.handleLineage(s.eng.Ancestors))
			r.Get("/descendants", s.handleLineage(s.eng.Descendants))
		})

		r.Post("/relationships", s.handleCreateRelationship)
		r.Delete("/relationships/{id}", s.handleDeleteRelationship)

		r.Get("/common", s.handleCommon)
		r.Get("/path", s.handlePath)
		r.Get("/kinship", s.handleKinship)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Health{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.started).Seconds(),
		People:  s.eng.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps graph errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrInvalidReference):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrSelfReference),
		errors.Is(err, graph.ErrDuplicateEdge),
		errors.Is(err, graph.ErrCycle):
		status = http.StatusConflict
	case errors.Is(err, graph.ErrInvalidAttributes):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("server: %v", err)
	}
	writeJSON(w, status, api.Error{Error: err.Error(), Kind: api.ErrorKind(err)})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, api.Error{Error: msg})
}
