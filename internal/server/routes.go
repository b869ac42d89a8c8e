package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/engine"
	"github.com/lazypower/lineage/internal/graph"
)

func personID(r *http.Request) graph.PersonID {
	return graph.PersonID(chi.URLParam(r, "id"))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return false
	}
	return true
}

// pair reads the required a and b query parameters.
func pair(w http.ResponseWriter, r *http.Request) (graph.PersonID, graph.PersonID, bool) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		badRequest(w, "query parameters a and b are required")
		return "", "", false
	}
	return graph.PersonID(a), graph.PersonID(b), true
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.FromStats(s.eng.Stats()))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		writeJSON(w, http.StatusServiceUnavailable, api.Error{Error: "no storage configured"})
		return
	}
	if err := s.eng.Save(r.Context(), s.provider); err != nil {
		writeError(w, fmt.Errorf("save graph: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "saved", "people": s.eng.Len()})
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.FromPeople(s.eng.Search(r.URL.Query().Get("q"))))
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req api.Person
	if !decode(w, r, &req) {
		return
	}
	attrs, err := req.Attrs()
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.eng.AddPerson(attrs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.FromPerson(p))
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.Person(personID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromPerson(p))
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var patch api.PersonPatch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Empty() {
		badRequest(w, "no fields to update")
		return
	}
	p, err := s.eng.EditPerson(personID(r), patch.Apply)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromPerson(p))
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.RemovePerson(personID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdjacent(list func(graph.PersonID) ([]graph.Person, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		people, err := list(personID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, api.FromPeople(people))
	}
}

func (s *Server) handleLineage(walk func(graph.PersonID, int) ([]engine.Relative, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		depth := s.maxDepth
		if v := r.URL.Query().Get("max_depth"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				badRequest(w, "max_depth must be a non-negative integer")
				return
			}
			depth = n
		}
		rel, err := walk(personID(r), depth)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, api.FromRelatives(rel))
	}
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req api.Relationship
	if !decode(w, r, &req) {
		return
	}
	kind, from, to, attrs, err := req.Parse()
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.eng.AddRelationship(kind, from, to, attrs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.FromEdgeResult(res))
}

func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := graph.EdgeID(chi.URLParam(r, "id"))
	if err := s.eng.RemoveRelationship(id); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("server: removed relationship %s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommon(w http.ResponseWriter, r *http.Request) {
	a, b, ok := pair(w, r)
	if !ok {
		return
	}
	res, err := s.eng.CommonAncestors(a, b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromCommon(res))
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	a, b, ok := pair(w, r)
	if !ok {
		return
	}
	res, err := s.eng.RelationshipPath(a, b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromPath(res))
}

func (s *Server) handleKinship(w http.ResponseWriter, r *http.Request) {
	a, b, ok := pair(w, r)
	if !ok {
		return
	}
	res, err := s.eng.Kinship(a, b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromKinship(res))
}
