// Package backendtest runs a scripted CRM API for tests.
package backendtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
)

// Call is a request the fake CRM received.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]any
}

// Server answers scripted routes and records every call.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// New starts a server that is closed with the test.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: map[string]http.HandlerFunc{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers a handler for an exact method and path.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

// JSON registers a canned JSON reply.
func (s *Server) JSON(method, path string, status int, body any) {
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		Reply(w, status, body)
	})
}

// Calls returns the recorded calls for method and path, or all calls when
// both are empty.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Call{}
	for _, c := range s.calls {
		if (method == "" || c.Method == method) && (path == "" || c.Path == path) {
			out = append(out, c)
		}
	}
	return out
}

// Client returns a backend client pointed at the server.
func (s *Server) Client(t *testing.T) *backend.Client {
	t.Helper()
	client, err := backend.NewClient(config.BackendConfig{BaseURL: s.URL})
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	return client
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	call := Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization")}
	if r.Header.Get("Content-Type") == "application/json" {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		Reply(w, http.StatusNotFound, map[string]string{"message": "Route not found"})
		return
	}
	h(w, r)
}

// Reply writes body as JSON with status.
func Reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
