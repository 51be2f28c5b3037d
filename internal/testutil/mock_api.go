// Package testutil provides testing utilities for the World Bank client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// route binds a path prefix to a handler; the longest matching prefix wins.
type route struct {
	prefix  string
	handler http.HandlerFunc
}

// MockAPI is a configurable mock World Bank API server for testing.
type MockAPI struct {
	server *httptest.Server
	mu     sync.RWMutex
	routes []route

	// Tracking
	RequestCount int
	requests     []string
}

// NewMockAPI creates a new mock API server. Unmatched paths receive an empty
// list envelope.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.requests = append(mock.requests, r.URL.RequestURI())
		mock.mu.Unlock()

		mock.mu.RLock()
		var best http.HandlerFunc
		bestLen := -1
		for _, rt := range mock.routes {
			if strings.HasPrefix(r.URL.Path, rt.prefix) && len(rt.prefix) > bestLen {
				best = rt.handler
				bestLen = len(rt.prefix)
			}
		}
		mock.mu.RUnlock()

		if best != nil {
			best(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking state and registered routes.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.requests = nil
	m.routes = nil
}

// Requests returns the request URIs seen so far, in order.
func (m *MockAPI) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// Handle registers a handler for all paths under the given prefix.
func (m *MockAPI) Handle(prefix string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{prefix: prefix, handler: handler})
}

// RespondJSON registers a fixed raw response for a path prefix.
func (m *MockAPI) RespondJSON(prefix string, status int, body string) {
	m.Handle(prefix, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// RespondPaged serves the given records under a path prefix as list-envelope
// pages, honoring the page and per_page query parameters.
func (m *MockAPI) RespondPaged(prefix string, records []map[string]any) {
	m.Handle(prefix, func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		perPage := queryInt(r, "per_page", 50)

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(records) {
			start = len(records)
		}
		if end > len(records) {
			end = len(records)
		}

		pages := (len(records) + perPage - 1) / perPage
		envelope := []any{
			map[string]any{
				"page":     page,
				"pages":    pages,
				"per_page": perPage,
				"total":    len(records),
			},
			records[start:end],
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope)
	})
}

// defaultHandler serves an empty list envelope.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`[{"page":1,"pages":1,"per_page":0,"total":0},[]]`))
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
