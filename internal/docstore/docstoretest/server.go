// Package docstoretest provides an in-memory document store speaking the same
// REST dialect as the remote backend, for use in tests.
package docstoretest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pagetrail/pagetrail-server/internal/id"
)

// Server is an httptest server holding collections in memory. Documents keep
// insertion order.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     map[string][]map[string]any
	calls    map[string]int
	failures map[string]int
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		docs:     make(map[string][]map[string]any),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.intercept)
	r.Get("/{collection}", s.handleList)
	r.Post("/{collection}", s.handleCreate)
	r.Get("/{collection}/{id}", s.handleGet)
	r.Put("/{collection}/{id}", s.handleReplace)
	r.Delete("/{collection}/{id}", s.handleDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed stores doc as-is and returns its id, assigning one when missing.
func (s *Server) Seed(collection string, doc any) string {
	m, err := toMap(doc)
	if err != nil {
		panic(fmt.Sprintf("docstoretest: seed %s: %v", collection, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(collection, m)
}

// Doc returns a copy of a stored document.
func (s *Server) Doc(collection, docID string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, docID)
	if i < 0 {
		return nil, false
	}
	out := make(map[string]any, len(s.docs[collection][i]))
	for k, v := range s.docs[collection][i] {
		out[k] = v
	}
	return out, true
}

// Count returns the number of documents in a collection.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

// Calls returns how many requests with method hit collection.
func (s *Server) Calls(method, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+collection]
}

// ResetCalls zeroes the request counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.calls)
}

// Fail makes every request with method on collection answer status until
// Recover is called.
func (s *Server) Fail(method, collection string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+collection] = status
}

// Recover clears all injected failures.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failures)
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		collection, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		key := r.Method + " " + collection

		s.mu.Lock()
		s.calls[key]++
		status := s.failures[key]
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	query := r.URL.Query()

	limit := -1
	if v := query.Get("_limit"); v != "" {
		limit, _ = strconv.Atoi(v) //nolint:errcheck // bad limits list everything
	}

	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.docs[collection]))
	for _, doc := range s.docs[collection] {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if matches(doc, query) {
			out = append(out, doc)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	delete(doc, "id")

	s.mu.Lock()
	s.insert(collection, doc)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	collection, docID := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	s.mu.Lock()
	i := s.index(collection, docID)
	var doc map[string]any
	if i >= 0 {
		doc = s.docs[collection][i]
	}
	s.mu.Unlock()

	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	collection, docID := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc["id"] = docID

	s.mu.Lock()
	i := s.index(collection, docID)
	if i >= 0 {
		s.docs[collection][i] = doc
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection, docID := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	s.mu.Lock()
	i := s.index(collection, docID)
	if i >= 0 {
		docs := s.docs[collection]
		s.docs[collection] = append(docs[:i:i], docs[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// insert must be called with mu held.
func (s *Server) insert(collection string, doc map[string]any) string {
	docID, _ := doc["id"].(string)
	if docID == "" {
		docID = id.MustGenerate(prefixFor(collection))
		doc["id"] = docID
	}
	s.docs[collection] = append(s.docs[collection], doc)
	return docID
}

// index must be called with mu held.
func (s *Server) index(collection, docID string) int {
	for i, doc := range s.docs[collection] {
		if fmt.Sprint(doc["id"]) == docID {
			return i
		}
	}
	return -1
}

func prefixFor(collection string) string {
	switch collection {
	case "books":
		return "book"
	case "lists":
		return "list"
	case "sessions":
		return "sess"
	default:
		return strings.TrimSuffix(collection, "s")
	}
}

func matches(doc map[string]any, query map[string][]string) bool {
	for field, values := range query {
		if strings.HasPrefix(field, "_") || len(values) == 0 {
			continue
		}
		if fmt.Sprint(doc[field]) != values[0] {
			return false
		}
	}
	return true
}

func toMap(doc any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test server
}
