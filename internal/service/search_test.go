package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/search"
)

func searchIDs(result *search.SearchResult) []string {
	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}
	return ids
}

func TestSearch_ConfirmedWritesAreIndexed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	book, _, err := h.library.AddToLibrary(ctx, candidate("Dune", "Frank Herbert", "9780441013593", 412), "")
	require.NoError(t, err)

	result, err := h.search.Search(ctx, search.SearchParams{Query: "dune"})
	require.NoError(t, err)
	assert.Equal(t, []string{book.ID}, searchIDs(result))

	_, err = h.library.StartReading(ctx, ByID(book.ID))
	require.NoError(t, err)

	result, err = h.search.Search(ctx, search.SearchParams{Query: "dune", Status: "reading"})
	require.NoError(t, err)
	assert.Equal(t, []string{book.ID}, searchIDs(result))

	require.NoError(t, h.library.RemoveBook(ctx, book.ID))

	result, err = h.search.Search(ctx, search.SearchParams{Query: "dune"})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestSearch_ReindexFromRemote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 412))
	h.seedBook(candidate("The Hobbit", "J.R.R. Tolkien", "9780547928227", 320))

	count, err := h.index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count, "seeded documents bypass the index")

	n, err := h.search.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	result, err := h.search.Search(ctx, search.SearchParams{Query: "tolkien"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "The Hobbit", result.Hits[0].Title)
}

func TestSearch_StatusAliasAndValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	book := candidate("Dune", "Frank Herbert", "9780441013593", 412)
	book.Status = domain.StatusToRead
	h.seedBook(book)
	_, err := h.search.Reindex(ctx)
	require.NoError(t, err)

	result, err := h.search.Search(ctx, search.SearchParams{Status: "unread"})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)

	_, err = h.search.Search(ctx, search.SearchParams{Status: "borrowed"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}
