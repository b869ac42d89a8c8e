package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/lineage/internal/api"
	"github.com/lazypower/lineage/internal/engine"
	"github.com/lazypower/lineage/internal/store"
)

func testServer(t *testing.T) (*Server, *engine.Engine, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	eng := engine.New()
	return New(eng, db, "test-version"), eng, db
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return v
}

func createPerson(t *testing.T, srv *Server, p api.Person) api.Person {
	t.Helper()
	w := do(t, srv, "POST", "/api/people", p)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s: status = %d body=%s", p.Name, w.Code, w.Body.String())
	}
	return decodeBody[api.Person](t, w)
}

func relate(t *testing.T, srv *Server, kind, from, to string) api.RelationshipResult {
	t.Helper()
	w := do(t, srv, "POST", "/api/relationships", api.Relationship{Kind: kind, From: from, To: to})
	if w.Code != http.StatusCreated {
		t.Fatalf("relate %s %s->%s: status = %d body=%s", kind, from, to, w.Code, w.Body.String())
	}
	return decodeBody[api.RelationshipResult](t, w)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	w := do(t, srv, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	h := decodeBody[api.Health](t, w)
	if h.Status != "ok" || h.Version != "test-version" || h.People != 0 {
		t.Errorf("health = %+v", h)
	}
}

func TestPersonLifecycle(t *testing.T) {
	srv, _, _ := testServer(t)
	ada := createPerson(t, srv, api.Person{Name: "Ada", Sex: "f", Born: "1815-12-10"})
	if ada.ID == "" || ada.Sex != "female" || !ada.Living {
		t.Fatalf("created = %+v", ada)
	}

	w := do(t, srv, "GET", "/api/people/"+ada.ID, nil)
	if w.Code != http.StatusOK || decodeBody[api.Person](t, w).Name != "Ada" {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	died := "1852-11-27"
	w = do(t, srv, "PATCH", "/api/people/"+ada.ID, api.PersonPatch{Died: &died})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}
	if got := decodeBody[api.Person](t, w); got.Died != died || got.Living || got.Born != "1815-12-10" {
		t.Errorf("patched = %+v", got)
	}

	w = do(t, srv, "GET", "/api/people?q=ada", nil)
	if got := decodeBody[[]api.Person](t, w); len(got) != 1 {
		t.Errorf("search = %+v", got)
	}

	w = do(t, srv, "DELETE", "/api/people/"+ada.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	w = do(t, srv, "GET", "/api/people/"+ada.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: %d", w.Code)
	}
	if e := decodeBody[api.Error](t, w); e.Kind != "not_found" {
		t.Errorf("error kind = %q", e.Kind)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv, _, _ := testServer(t)
	a := createPerson(t, srv, api.Person{Name: "A"})
	b := createPerson(t, srv, api.Person{Name: "B"})
	relate(t, srv, "parent", a.ID, b.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"blank name", "POST", "/api/people", api.Person{Name: "  "}, 400, "invalid_attributes"},
		{"bad date", "POST", "/api/people", api.Person{Name: "X", Born: "yesterday"}, 400, "invalid_attributes"},
		{"unknown field", "POST", "/api/people", map[string]string{"nmae": "X"}, 400, ""},
		{"empty patch", "PATCH", "/api/people/" + a.ID, api.PersonPatch{}, 400, ""},
		{"missing person", "GET", "/api/people/nobody/parents", nil, 404, "not_found"},
		{"dangling ref", "POST", "/api/relationships", api.Relationship{Kind: "parent", From: a.ID, To: "ghost"}, 422, "invalid_reference"},
		{"self", "POST", "/api/relationships", api.Relationship{Kind: "spouse", From: a.ID, To: a.ID}, 409, "self_reference"},
		{"duplicate", "POST", "/api/relationships", api.Relationship{Kind: "parent", From: a.ID, To: b.ID}, 409, "duplicate_edge"},
		{"cycle", "POST", "/api/relationships", api.Relationship{Kind: "parent", From: b.ID, To: a.ID}, 409, "cycle_violation"},
		{"bad kind", "POST", "/api/relationships", api.Relationship{Kind: "cousin", From: a.ID, To: b.ID}, 400, "invalid_attributes"},
		{"missing pair", "GET", "/api/kinship?a=" + a.ID, nil, 400, ""},
		{"bad depth", "GET", "/api/people/" + a.ID + "/descendants?max_depth=x", nil, 400, ""},
		{"missing edge", "DELETE", "/api/relationships/nope", nil, 404, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			e := decodeBody[api.Error](t, w)
			if e.Error == "" || e.Kind != tt.kind {
				t.Errorf("error = %+v, want kind %q", e, tt.kind)
			}
		})
	}
}

func TestFamilyQueries(t *testing.T) {
	srv, _, _ := testServer(t)
	grandma := createPerson(t, srv, api.Person{Name: "Grandma", Sex: "female"})
	mom := createPerson(t, srv, api.Person{Name: "Mom", Sex: "female"})
	aunt := createPerson(t, srv, api.Person{Name: "Aunt", Sex: "female"})
	me := createPerson(t, srv, api.Person{Name: "Me", Sex: "male"})
	cousin := createPerson(t, srv, api.Person{Name: "Cousin", Sex: "female"})
	loner := createPerson(t, srv, api.Person{Name: "Loner"})
	relate(t, srv, "parent", grandma.ID, mom.ID)
	relate(t, srv, "parent", grandma.ID, aunt.ID)
	relate(t, srv, "parent", mom.ID, me.ID)
	relate(t, srv, "parent", aunt.ID, cousin.ID)

	w := do(t, srv, "GET", "/api/people/"+me.ID+"/ancestors", nil)
	anc := decodeBody[[]api.Relative](t, w)
	if len(anc) != 2 || anc[0].Person.Name != "Mom" || anc[1].Depth != 2 {
		t.Errorf("ancestors = %+v", anc)
	}

	w = do(t, srv, "GET", "/api/people/"+grandma.ID+"/descendants?max_depth=1", nil)
	if desc := decodeBody[[]api.Relative](t, w); len(desc) != 2 {
		t.Errorf("descendants depth 1 = %+v", desc)
	}

	w = do(t, srv, "GET", "/api/people/"+grandma.ID+"/children", nil)
	if kids := decodeBody[[]api.Person](t, w); len(kids) != 2 {
		t.Errorf("children = %+v", kids)
	}

	w = do(t, srv, "GET", "/api/common?a="+me.ID+"&b="+cousin.ID, nil)
	common := decodeBody[api.CommonAncestors](t, w)
	if len(common.Lowest) != 1 || common.Lowest[0].Person.ID != grandma.ID {
		t.Errorf("common = %+v", common)
	}

	w = do(t, srv, "GET", "/api/kinship?a="+me.ID+"&b="+cousin.ID, nil)
	k := decodeBody[api.Kinship](t, w)
	if k.Label != "First cousins, 0 times removed" || k.Degree != 1 || !k.Path.Connected || len(k.Path.Steps) != 4 {
		t.Errorf("kinship = %+v", k)
	}
	if k.Path.Description != "mother's sister's daughter" {
		t.Errorf("path description = %q", k.Path.Description)
	}

	w = do(t, srv, "GET", "/api/kinship?a="+mom.ID+"&b="+me.ID, nil)
	k = decodeBody[api.Kinship](t, w)
	if k.Label != "Mother" || k.Path.Description != "son" {
		t.Errorf("mom to me: label %q, description %q", k.Label, k.Path.Description)
	}

	w = do(t, srv, "GET", "/api/path?a="+me.ID+"&b="+loner.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("path status = %d", w.Code)
	}
	if p := decodeBody[api.Path](t, w); p.Connected {
		t.Errorf("path to loner = %+v", p)
	}

	w = do(t, srv, "GET", "/api/stats", nil)
	s := decodeBody[api.Stats](t, w)
	if s.People != 6 || s.ParentChild != 4 || s.Generations != 3 {
		t.Errorf("stats = %+v", s)
	}
	if len(s.RootIDs) != 2 || s.RootIDs[0] != grandma.ID || s.RootIDs[1] != loner.ID {
		t.Errorf("root ids = %v", s.RootIDs)
	}
	if len(s.BirthPlaces) != 0 || s.BirthYears.Counts == nil || len(s.BirthYears.Counts) != 0 {
		t.Errorf("distributions = %+v %+v", s.BirthPlaces, s.BirthYears)
	}
}

func TestExtraParentAdvisory(t *testing.T) {
	srv, _, _ := testServer(t)
	kid := createPerson(t, srv, api.Person{Name: "Kid"})
	for _, n := range []string{"P1", "P2"} {
		p := createPerson(t, srv, api.Person{Name: n})
		relate(t, srv, "parent", p.ID, kid.ID)
	}
	third := createPerson(t, srv, api.Person{Name: "P3"})
	res := relate(t, srv, "parent", third.ID, kid.ID)
	if len(res.Advisories) != 1 {
		t.Errorf("advisories = %v", res.Advisories)
	}
}

func TestDeleteRelationship(t *testing.T) {
	srv, _, _ := testServer(t)
	a := createPerson(t, srv, api.Person{Name: "A"})
	b := createPerson(t, srv, api.Person{Name: "B"})
	res := relate(t, srv, "spouse", a.ID, b.ID)

	w := do(t, srv, "DELETE", "/api/relationships/"+res.Relationship.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	w = do(t, srv, "GET", "/api/people/"+a.ID+"/partners", nil)
	if ps := decodeBody[[]api.Person](t, w); len(ps) != 0 {
		t.Errorf("partners after delete = %+v", ps)
	}
}

func TestSave(t *testing.T) {
	srv, _, db := testServer(t)
	createPerson(t, srv, api.Person{Name: "A"})
	w := do(t, srv, "POST", "/api/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	people, _, err := db.Counts(context.Background())
	if err != nil || people != 1 {
		t.Errorf("stored people = %d, %v", people, err)
	}
}

func TestSaveWithoutProvider(t *testing.T) {
	srv := New(engine.New(), nil, "v")
	w := do(t, srv, "POST", "/api/save", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := testServer(t)
	do(t, srv, "GET", "/api/people", nil)
	w := do(t, srv, "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lineage_query_total") {
		t.Error("metrics missing lineage_query_total")
	}
}

func TestDefaultMaxDepth(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.WithMaxDepth(1)
	a := createPerson(t, srv, api.Person{Name: "A"})
	b := createPerson(t, srv, api.Person{Name: "B"})
	c := createPerson(t, srv, api.Person{Name: "C"})
	relate(t, srv, "parent", a.ID, b.ID)
	relate(t, srv, "parent", b.ID, c.ID)

	w := do(t, srv, "GET", "/api/people/"+a.ID+"/descendants", nil)
	if got := decodeBody[[]api.Relative](t, w); len(got) != 1 {
		t.Errorf("default-bounded descendants = %+v", got)
	}
	w = do(t, srv, "GET", "/api/people/"+a.ID+"/descendants?max_depth=0", nil)
	if got := decodeBody[[]api.Relative](t, w); len(got) != 2 {
		t.Errorf("unbounded descendants = %+v", got)
	}
}
