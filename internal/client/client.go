// Package client talks to a running lineage server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/lazypower/lineage/internal/api"
)

const (
	defaultServerURL = "http://127.0.0.1:37780"
	httpTimeout      = 10 * time.Second
)

// Client talks to the lineage server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty URL falls back to
// LINEAGE_URL, then http://127.0.0.1:37780.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("LINEAGE_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

// StatusError is a non-2xx answer from the server. It unwraps to the graph
// sentinel named by Kind, so errors.Is works across the wire.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Kind    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	return api.KindError(e.Kind)
}

func (c *Client) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.serverURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		se := &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: string(data)}
		var e api.Error
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			se.Kind, se.Message = e.Kind, e.Error
		}
		return se
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	_, err := c.Health()
	return err == nil
}

func (c *Client) Health() (api.Health, error) {
	var h api.Health
	err := c.do(http.MethodGet, "/api/health", nil, &h)
	return h, err
}

func (c *Client) Stats() (api.Stats, error) {
	var s api.Stats
	err := c.do(http.MethodGet, "/api/stats", nil, &s)
	return s, err
}

// Save asks the server to persist its graph.
func (c *Client) Save() error {
	return c.do(http.MethodPost, "/api/save", nil, nil)
}

func (c *Client) Person(id string) (api.Person, error) {
	var p api.Person
	err := c.do(http.MethodGet, "/api/people/"+url.PathEscape(id), nil, &p)
	return p, err
}

// Search lists people matching q; an empty q lists everyone.
func (c *Client) Search(q string) ([]api.Person, error) {
	var ps []api.Person
	err := c.do(http.MethodGet, "/api/people?q="+url.QueryEscape(q), nil, &ps)
	return ps, err
}

func (c *Client) AddPerson(p api.Person) (api.Person, error) {
	var out api.Person
	err := c.do(http.MethodPost, "/api/people", p, &out)
	return out, err
}

func (c *Client) EditPerson(id string, patch api.PersonPatch) (api.Person, error) {
	var out api.Person
	err := c.do(http.MethodPatch, "/api/people/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) RemovePerson(id string) error {
	return c.do(http.MethodDelete, "/api/people/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Parents(id string) ([]api.Person, error) {
	return c.adjacent(id, "parents")
}

func (c *Client) Children(id string) ([]api.Person, error) {
	return c.adjacent(id, "children")
}

func (c *Client) Partners(id string) ([]api.Person, error) {
	return c.adjacent(id, "partners")
}

func (c *Client) adjacent(id, rel string) ([]api.Person, error) {
	var out []api.Person
	err := c.do(http.MethodGet, "/api/people/"+url.PathEscape(id)+"/"+rel, nil, &out)
	return out, err
}

func (c *Client) Relate(r api.Relationship) (api.RelationshipResult, error) {
	var out api.RelationshipResult
	err := c.do(http.MethodPost, "/api/relationships", r, &out)
	return out, err
}

func (c *Client) Unrelate(id string) error {
	return c.do(http.MethodDelete, "/api/relationships/"+url.PathEscape(id), nil, nil)
}

// Ancestors walks up from id; maxDepth 0 leaves the bound to the server.
func (c *Client) Ancestors(id string, maxDepth int) ([]api.Relative, error) {
	return c.lineage(id, "ancestors", maxDepth)
}

// Descendants walks down from id; maxDepth 0 leaves the bound to the server.
func (c *Client) Descendants(id string, maxDepth int) ([]api.Relative, error) {
	return c.lineage(id, "descendants", maxDepth)
}

func (c *Client) lineage(id, dir string, maxDepth int) ([]api.Relative, error) {
	path := "/api/people/" + url.PathEscape(id) + "/" + dir
	if maxDepth > 0 {
		path += "?max_depth=" + strconv.Itoa(maxDepth)
	}
	var out []api.Relative
	err := c.do(http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Common(a, b string) (api.CommonAncestors, error) {
	var out api.CommonAncestors
	err := c.do(http.MethodGet, "/api/common?"+pairQuery(a, b), nil, &out)
	return out, err
}

func (c *Client) Path(a, b string) (api.Path, error) {
	var out api.Path
	err := c.do(http.MethodGet, "/api/path?"+pairQuery(a, b), nil, &out)
	return out, err
}

func (c *Client) Kinship(a, b string) (api.Kinship, error) {
	var out api.Kinship
	err := c.do(http.MethodGet, "/api/kinship?"+pairQuery(a, b), nil, &out)
	return out, err
}

func pairQuery(a, b string) string {
	return url.Values{"a": {a}, "b": {b}}.Encode()
}
