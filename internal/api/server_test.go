package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/docstore/docstoretest"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/search"
	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

// stubProvider answers catalog calls from a fixed set of Google volumes.
type stubProvider struct {
	volumes []catalog.GoogleVolume
	err     error
}

func (p *stubProvider) Name() catalog.ProviderName { return catalog.GoogleBooks }

func (p *stubProvider) SearchByTitle(_ context.Context, _ string, limit int) ([]catalog.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]catalog.Record, 0, len(p.volumes))
	for _, v := range p.volumes[:min(limit, len(p.volumes))] {
		out = append(out, v)
	}
	return out, nil
}

func (p *stubProvider) SearchByISBN(_ context.Context, isbn string) (catalog.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	for _, v := range p.volumes {
		for _, id := range v.VolumeInfo.IndustryIdentifiers {
			if id.Identifier == isbn {
				return v, nil
			}
		}
	}
	return nil, catalog.WrapError(catalog.GoogleBooks, "searchByISBN", isbn, catalog.ErrNotFound)
}

func (p *stubProvider) GetDetails(_ context.Context, id string) (catalog.Record, error) {
	for _, v := range p.volumes {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, catalog.WrapError(catalog.GoogleBooks, "getDetails", id, catalog.ErrNotFound)
}

func duneVolume() catalog.GoogleVolume {
	return catalog.GoogleVolume{
		ID: "B1hSG45JCX4C",
		VolumeInfo: catalog.GoogleVolumeInfo{
			Title:       "Dune",
			Authors:     []string{"Frank Herbert"},
			PageCount:   412,
			Description: "<p>Set on the desert planet <b>Arrakis</b>.</p>",
			IndustryIdentifiers: []catalog.GoogleIdentifier{
				{Type: "ISBN_10", Identifier: "0441013597"},
				{Type: "ISBN_13", Identifier: "9780441013593"},
			},
		},
	}
}

type testServer struct {
	server   *Server
	api      humatest.TestAPI
	remote   *docstoretest.Server
	provider *stubProvider
}

func setupTestServer(t *testing.T, opts ...Options) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	remote := docstoretest.New(t)
	docs := docstore.NewStore(docstore.New(docstore.Config{BaseURL: remote.URL, Timeout: 5 * time.Second}, logger))

	cache, err := store.NewInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() }) //nolint:errcheck // Test cleanup

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() }) //nolint:errcheck // Test cleanup

	searchSvc := service.NewSearchService(index, logger)
	library := service.NewLibraryService(docs, cache, searchSvc, domain.StatusWishlist, logger)
	searchSvc.Attach(library)

	provider := &stubProvider{volumes: []catalog.GoogleVolume{duneVolume()}}
	services := &Services{
		Library: library,
		Lists:   service.NewListService(docs, cache, library, logger),
		Catalog: service.NewCatalogService(catalog.NewRegistry(catalog.GoogleBooks, provider), library, logger),
		Search:  searchSvc,
		Stats:   service.NewStatsService(library, logger),
	}
	checks := []HealthCheck{
		{Name: "docstore", Check: docs.Client.Ping},
		{Name: "cache", Critical: true, Check: cache.Ping},
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	server := NewServer(services, checks, o, logger)
	t.Cleanup(server.Close)

	return &testServer{
		server:   server,
		api:      humatest.Wrap(t, server.API()),
		remote:   remote,
		provider: provider,
	}
}

// envelope is the decoded response body.
type envelope struct {
	Version int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	assert.Equal(t, EnvelopeVersion, env.Version)
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func duneCandidate() map[string]any {
	return map[string]any{
		"title":      "Dune",
		"author":     "Frank Herbert",
		"isbn":       "9780441013593",
		"page_count": 412,
	}
}

func (ts *testServer) addBook(t *testing.T, body map[string]any) BookResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/books", map[string]any{"book": body})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.Code, resp.Body.String())

	var added AddBookResponse
	decode(t, resp, &added)
	return added.Book
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_RateLimit(t *testing.T) {
	ts := setupTestServer(t, Options{RateLimit: 60, RateLimitBurst: 2})

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.7:5123"
		rec := httptest.NewRecorder()
		ts.server.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("/api/v1/lists"))
	assert.Equal(t, http.StatusOK, send("/api/v1/lists"))
	assert.Equal(t, http.StatusTooManyRequests, send("/api/v1/lists"))

	// Health probes are never limited.
	assert.Equal(t, http.StatusOK, send(healthPath))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "10.0.0.2:80", "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.2:80", "198.51.100.2"},
		{"remote addr", nil, "198.51.100.3:4242", "198.51.100.3"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:4242", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
