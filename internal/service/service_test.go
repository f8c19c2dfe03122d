package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/docstore/docstoretest"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/search"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

// testClock is a manually advanced clock shared by every service in a harness.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type harness struct {
	srv     *docstoretest.Server
	cache   *store.Store
	index   *search.SearchIndex
	clock   *testClock
	library *LibraryService
	lists   *ListService
	search  *SearchService
	stats   *StatsService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := testLogger()

	srv := docstoretest.New(t)
	remote := docstore.NewStore(docstore.New(docstore.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger))

	cache, err := store.NewInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() }) //nolint:errcheck // Test cleanup

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() }) //nolint:errcheck // Test cleanup

	clock := &testClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}

	searchSvc := NewSearchService(index, logger)
	library := NewLibraryService(remote, cache, searchSvc, domain.StatusWishlist, logger)
	library.now = clock.Now
	searchSvc.Attach(library)

	lists := NewListService(remote, cache, library, logger)
	lists.now = clock.Now

	stats := NewStatsService(library, logger)
	stats.now = clock.Now

	return &harness{
		srv:     srv,
		cache:   cache,
		index:   index,
		clock:   clock,
		library: library,
		lists:   lists,
		search:  searchSvc,
		stats:   stats,
	}
}

// seedBook stores a book directly in the remote store and returns its id.
func (h *harness) seedBook(b *domain.Book) string {
	if b.Status == "" {
		b.Status = domain.StatusWishlist
	}
	if b.DateAdded.IsZero() {
		b.DateAdded = h.clock.now.Add(-24 * time.Hour)
	}
	return h.srv.Seed(docstore.Books, docstore.NewBookRecord(b))
}

func candidate(title, author, isbn string, pages int) *domain.Book {
	return &domain.Book{Title: title, Author: author, ISBN: isbn, PageCount: pages}
}
