package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/search"
)

func TestSearchLibrary(t *testing.T) {
	ts := setupTestServer(t)
	dune := ts.addBook(t, duneCandidate())
	ts.addBook(t, map[string]any{"title": "Emma", "author": "Jane Austen", "isbn": "9780141439587"})

	resp := ts.api.Get("/api/v1/library/search?q=herbert")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result search.SearchResult
	decode(t, resp, &result)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, dune.ID, result.Hits[0].ID)

	resp = ts.api.Get("/api/v1/library/search?status=someday")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReindexLibrary(t *testing.T) {
	ts := setupTestServer(t)
	ts.addBook(t, duneCandidate())

	resp := ts.api.Post("/api/v1/library/reindex")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out ReindexResponse
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Indexed)
}

func TestStats(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, duneCandidate())
	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/books/"+book.ID+"/progress", map[string]any{"current_page": 100}).Code)

	resp := ts.api.Get("/api/v1/stats?period=week")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var stats domain.ReadingStats
	decode(t, resp, &stats)
	assert.Equal(t, domain.StatsPeriodWeek, stats.Period)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 100, stats.PagesRead)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusReading])

	assert.Equal(t, http.StatusUnprocessableEntity, ts.api.Get("/api/v1/stats?period=decade").Code)
}
