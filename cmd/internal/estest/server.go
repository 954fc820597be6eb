// Package estest provides an in-process fake Elasticsearch for tests.
package estest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
)

// Request is a request received by the fake server.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Server records every request and answers pings itself. Other requests are
// passed to the handler given to NewServer.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake engine closed at the end of the test. A nil
// handler answers every request with an empty JSON object.
func NewServer(t testing.TB, handler http.HandlerFunc) *Server {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		s.mu.Unlock()

		// go-elasticsearch refuses to talk to servers without this header.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")

		if r.URL.Path == "/" && (r.Method == http.MethodHead || r.Method == http.MethodGet) {
			w.WriteHeader(http.StatusOK)
			return
		}
		if handler == nil {
			WriteJSON(w, http.StatusOK, map[string]interface{}{})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsWithPrefix returns the requests whose path starts with prefix.
func (s *Server) RequestsWithPrefix(prefix string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// Client returns a go-elasticsearch client pointed at the fake server.
func (s *Server) Client(t testing.TB) *elasticsearch.Client {
	t.Helper()

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{s.URL},
		DisableRetry: true,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

// WriteJSON writes body as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// SearchResponse builds a search response body with the given total and
// one hit per source document.
func SearchResponse(total int, sources ...map[string]interface{}) map[string]interface{} {
	hits := make([]interface{}, 0, len(sources))
	for i, source := range sources {
		hits = append(hits, map[string]interface{}{
			"_index":  "posts",
			"_id":     string(rune('a' + i)),
			"_score":  1.0,
			"_source": source,
		})
	}

	return map[string]interface{}{
		"took":      3,
		"timed_out": false,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": total, "relation": "eq"},
			"max_score": 1.0,
			"hits":      hits,
		},
	}
}
