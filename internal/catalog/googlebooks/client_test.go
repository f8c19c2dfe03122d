package googlebooks

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "load fixture %s", name)
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)

	client := New(Config{BaseURL: server.URL, APIKey: "test-key"}, limiter, slog.New(slog.DiscardHandler))
	client.http = server.Client()
	return client
}

func TestClient_SearchByTitle(t *testing.T) {
	fixture := loadFixture(t, "search_response.json")

	tests := []struct {
		name       string
		response   []byte
		statusCode int
		wantCount  int
		wantErr    error
	}{
		{name: "successful search", response: fixture, statusCode: http.StatusOK, wantCount: 2},
		{name: "empty results", response: []byte(`{"totalItems": 0}`), statusCode: http.StatusOK, wantCount: 0},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, wantErr: catalog.ErrRateLimited},
		{name: "server error", statusCode: http.StatusServiceUnavailable, wantErr: catalog.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery, gotKey string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/volumes", r.URL.Path)
				gotQuery = r.URL.Query().Get("q")
				gotKey = r.URL.Query().Get("key")
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					w.Write(tt.response)
				}
			})

			records, err := client.SearchByTitle(context.Background(), "google story", 0)

			assert.Equal(t, "intitle:google story", gotQuery)
			assert.Equal(t, "test-key", gotKey)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var catErr *catalog.Error
				require.ErrorAs(t, err, &catErr)
				assert.Equal(t, "searchByTitle", catErr.Op)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.wantCount)
		})
	}
}

func TestClient_SearchByTitle_RecordsNormalize(t *testing.T) {
	fixture := loadFixture(t, "search_response.json")
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(fixture)
	})

	records, err := client.SearchByTitle(context.Background(), "google", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := catalog.Normalize(records[0])
	assert.Equal(t, "The Google Story", first.Title)
	assert.Equal(t, "9780553804577", first.ISBN)
	assert.Equal(t, "https://books.google.com/books/content?id=zyTCAlFPjgYC&printsec=frontcover&img=1&zoom=1", first.CoverURL)

	second := catalog.Normalize(records[1])
	assert.Equal(t, "nggnmAEACAAJ", second.ISBN, "volume id stands in for a missing ISBN")
	assert.Equal(t, 2010, second.PublishYear)
}

func TestClient_SearchByTitle_EmptyTitle(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.SearchByTitle(context.Background(), "   ", 5)

	assert.ErrorIs(t, err, catalog.ErrBadRequest)
}

func TestClient_SearchByISBN(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "isbn:9780553804577", r.URL.Query().Get("q"))
			w.Write(loadFixture(t, "search_response.json"))
		})

		record, err := client.SearchByISBN(context.Background(), "9780553804577")
		require.NoError(t, err)

		vol, ok := record.(catalog.GoogleVolume)
		require.True(t, ok)
		assert.Equal(t, "zyTCAlFPjgYC", vol.ID)
	})

	t.Run("no items", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"kind": "books#volumes", "totalItems": 0}`))
		})

		_, err := client.SearchByISBN(context.Background(), "9780000000002")

		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

func TestClient_GetDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes/zyTCAlFPjgYC" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(loadFixture(t, "volume_response.json"))
	})

	record, err := client.GetDetails(context.Background(), "zyTCAlFPjgYC")
	require.NoError(t, err)
	book := catalog.Normalize(record)
	assert.Equal(t, "https://books.google.com/books/content?id=zyTCAlFPjgYC&zoom=4", book.CoverURL)

	_, err = client.GetDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = client.GetDetails(context.Background(), "../etc")
	assert.ErrorIs(t, err, catalog.ErrBadRequest)
}
