//go:build e2e && unix

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeAPI imitates the Pixabay search endpoint. Each query gets a
// deterministic page of hits; queries containing "fail" answer 503.
type fakeAPI struct {
	srv *httptest.Server

	mu      sync.Mutex
	queries []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

// URL returns the endpoint to pass with --endpoint
func (f *fakeAPI) URL() string {
	return f.srv.URL + "/api/"
}

// Queries returns the q parameter of every request received so far
func (f *fakeAPI) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if r.URL.Query().Get("key") != "e2e-key" {
		http.Error(w, "[ERROR 400] Invalid or missing API key", http.StatusBadRequest)
		return
	}
	if strings.Contains(q, "fail") {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	type hit struct {
		ID           int    `json:"id"`
		WebformatURL string `json:"webformatURL"`
		PageURL      string `json:"pageURL"`
		Tags         string `json:"tags"`
		User         string `json:"user"`
		Likes        int    `json:"likes"`
	}
	hits := []hit{}
	if q != "nothing" {
		// three hits with ids derived from the query so each query is recognizable
		base := 100 * (len(q) % 10)
		for i := 1; i <= 3; i++ {
			id := base + i
			hits = append(hits, hit{
				ID:           id,
				WebformatURL: fmt.Sprintf("https://cdn.example/%d.jpg", id),
				PageURL:      fmt.Sprintf("https://pixabay.example/photos/%d", id),
				Tags:         q,
				User:         fmt.Sprintf("user%d", i),
				Likes:        i * 10,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total":     len(hits),
		"totalHits": len(hits),
		"hits":      hits,
	})
}
