package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/color"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

func titles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestLists_CreateAndGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "  Summer  ", Color: "#ffaa00"})
	require.NoError(t, err)
	assert.NotEmpty(t, list.ID)
	assert.Equal(t, "Summer", list.Name)
	assert.Empty(t, list.BookIDs)

	raw, ok := h.srv.Doc(docstore.Lists, list.ID)
	require.True(t, ok)
	assert.Equal(t, []any{}, raw["bookIds"])

	got, err := h.lists.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.Name, got.Name)
	assert.Zero(t, h.srv.Calls(http.MethodGet, docstore.Lists), "served from cache")
}

func TestLists_CreateDerivesColor(t *testing.T) {
	h := newHarness(t)

	list, err := h.lists.CreateList(context.Background(), CreateListInput{Name: "Summer"})
	require.NoError(t, err)
	assert.Equal(t, color.ForList("Summer"), list.Color)
}

func TestLists_ListListsRecentlyUpdatedFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	older, err := h.lists.CreateList(ctx, CreateListInput{Name: "Older"})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	newer, err := h.lists.CreateList(ctx, CreateListInput{Name: "Newer"})
	require.NoError(t, err)

	lists, err := h.lists.ListLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, []string{newer.ID, older.ID}, []string{lists[0].ID, lists[1].ID})

	h.clock.Advance(time.Minute)
	renamed := "Oldest"
	_, err = h.lists.UpdateList(ctx, older.ID, UpdateListInput{Name: &renamed})
	require.NoError(t, err)

	lists, err = h.lists.ListLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, []string{older.ID, newer.ID}, []string{lists[0].ID, lists[1].ID})
}

func TestLists_CreateRejectsEmptyName(t *testing.T) {
	h := newHarness(t)

	_, err := h.lists.CreateList(context.Background(), CreateListInput{Name: "   "})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Zero(t, h.srv.Calls(http.MethodPost, docstore.Lists))
}

func TestLists_AddBookIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bookID := h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 412))
	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Sci-fi"})
	require.NoError(t, err)

	_, added, err := h.lists.AddBook(ctx, list.ID, bookID)
	require.NoError(t, err)
	assert.True(t, added)

	h.srv.ResetCalls()
	got, added, err := h.lists.AddBook(ctx, list.ID, bookID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []string{bookID}, got.BookIDs)
	assert.Zero(t, h.srv.Calls(http.MethodPut, docstore.Lists))
}

func TestLists_AddMissingBook(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Sci-fi"})
	require.NoError(t, err)

	_, _, err = h.lists.AddBook(ctx, list.ID, "book-missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLists_RemoveBook(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 412))
	b := h.seedBook(candidate("The Hobbit", "J.R.R. Tolkien", "9780547928227", 320))
	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Favorites"})
	require.NoError(t, err)
	for _, id := range []string{a, b} {
		_, _, err := h.lists.AddBook(ctx, list.ID, id)
		require.NoError(t, err)
	}

	got, removed, err := h.lists.RemoveBook(ctx, list.ID, a)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{b}, got.BookIDs)

	h.srv.ResetCalls()
	_, removed, err = h.lists.RemoveBook(ctx, list.ID, a)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, h.srv.Calls(http.MethodPut, docstore.Lists))

	_, err = h.library.GetBook(ctx, a)
	assert.NoError(t, err, "removing from a list keeps the book")
}

func TestLists_ListBooksKeepsOrderAndDropsDangling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	dune := h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 412))
	hobbit := h.seedBook(candidate("The Hobbit", "J.R.R. Tolkien", "9780547928227", 320))
	lefthand := h.seedBook(candidate("The Left Hand of Darkness", "Ursula K. Le Guin", "9780441478125", 304))

	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Shelf"})
	require.NoError(t, err)
	for _, id := range []string{lefthand, dune, hobbit} {
		_, _, err := h.lists.AddBook(ctx, list.ID, id)
		require.NoError(t, err)
	}

	books, err := h.lists.ListBooks(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Left Hand of Darkness", "Dune", "The Hobbit"}, titles(books))

	require.NoError(t, h.library.RemoveBook(ctx, dune))

	books, err = h.lists.ListBooks(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Left Hand of Darkness", "The Hobbit"}, titles(books))

	stored, err := h.lists.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.BookIDs, dune, "the dangling id stays on the list")
}

func TestLists_ListBooksFailsOnRemoteError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id := h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 412))
	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Shelf"})
	require.NoError(t, err)
	_, _, err = h.lists.AddBook(ctx, list.ID, id)
	require.NoError(t, err)

	require.NoError(t, h.cache.Purge())
	h.srv.Fail(http.MethodGet, docstore.Books, http.StatusInternalServerError)

	_, err = h.lists.ListBooks(ctx, list.ID)
	require.ErrorIs(t, err, domainerrors.ErrRemoteUnavailable)
}

func TestLists_AddToListFromCatalog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Wishlist"})
	require.NoError(t, err)

	got, book, err := h.lists.AddToListFromCatalog(ctx, list.ID, candidate("Dune", "Frank Herbert", "9780441013593", 412))
	require.NoError(t, err)
	assert.Equal(t, []string{book.ID}, got.BookIDs)
	assert.Equal(t, 1, h.srv.Count(docstore.Books))

	again, again2, err := h.lists.AddToListFromCatalog(ctx, list.ID, candidate("Dune", "Frank Herbert", "0441013597", 412))
	require.NoError(t, err)
	assert.Equal(t, book.ID, again2.ID)
	assert.Equal(t, []string{book.ID}, again.BookIDs)
	assert.Equal(t, 1, h.srv.Count(docstore.Books))
}

func TestLists_AddToListFromCatalogKeepsBookWhenListMissing(t *testing.T) {
	h := newHarness(t)

	_, book, err := h.lists.AddToListFromCatalog(context.Background(), "list-missing", candidate("Dune", "Frank Herbert", "9780441013593", 412))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.NotNil(t, book)
	assert.Equal(t, 1, h.srv.Count(docstore.Books))
}

func TestLists_UpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	bookID := h.seedBook(candidate("Dune", "Frank Herbert", "9780441013593", 412))
	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Old"})
	require.NoError(t, err)
	_, _, err = h.lists.AddBook(ctx, list.ID, bookID)
	require.NoError(t, err)

	name, icon := "New", "rocket"
	updated, err := h.lists.UpdateList(ctx, list.ID, UpdateListInput{Name: &name, Icon: &icon})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "rocket", updated.Icon)
	assert.Equal(t, []string{bookID}, updated.BookIDs)

	empty := " "
	_, err = h.lists.UpdateList(ctx, list.ID, UpdateListInput{Name: &empty})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	require.NoError(t, h.lists.DeleteList(ctx, list.ID))
	_, err = h.lists.GetList(ctx, list.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = h.library.GetBook(ctx, bookID)
	assert.NoError(t, err, "deleting a list keeps its books")

	all, err := h.lists.ListLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLists_DuplicateIDsFromRemoteAreCollapsed(t *testing.T) {
	h := newHarness(t)

	id := h.srv.Seed(docstore.Lists, map[string]any{
		"name":    "Hand edited",
		"bookIds": []string{"book-1", "book-2", "book-1"},
	})

	list, err := h.lists.GetList(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"book-1", "book-2"}, list.BookIDs)
}

func TestLists_InputValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.lists.CreateList(ctx, CreateListInput{Name: "Shelf", Color: "teal"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	list, err := h.lists.CreateList(ctx, CreateListInput{Name: "Shelf"})
	require.NoError(t, err)

	bad := "#12345z"
	_, err = h.lists.UpdateList(ctx, list.ID, UpdateListInput{Color: &bad})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Zero(t, h.srv.Calls(http.MethodPut, docstore.Lists))
}
