package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() }) //nolint:errcheck // Test cleanup

	return s
}

func testBook(id, isbn string) *domain.Book {
	return &domain.Book{
		ID:        id,
		Title:     "The Left Hand of Darkness",
		Author:    "Ursula K. Le Guin",
		ISBN:      isbn,
		PageCount: 304,
		Status:    domain.StatusWishlist,
		DateAdded: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStore_PutAndGetBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "9780441478125")
	require.NoError(t, s.PutBook(ctx, book))

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, book, got)
}

func TestStore_GetMissing(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_FindBookByISBN_EquivalentForms(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "0-306-40615-2")))

	got, err := s.FindBookByISBN(ctx, "9780306406157")
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.ID)
}

func TestStore_FindBookByISBN_TemporaryNeverMatches(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "tmp-1769932800000-abcdefgh")))

	_, err := s.FindBookByISBN(ctx, "tmp-1769932800000-abcdefgh")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_FindBookByTitleAuthor(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "")))

	candidate := &domain.Book{Title: "the left hand of darkness", Author: "Ursula K Le Guin"}
	got, err := s.FindBookByTitleAuthor(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.ID)

	_, err = s.FindBookByTitleAuthor(ctx, &domain.Book{Title: domain.UntitledTitle, Author: "Ursula K. Le Guin"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_PutReplacesIndexes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "9780306406157")
	require.NoError(t, s.PutBook(ctx, book))

	book.ISBN = "9780441478125"
	require.NoError(t, s.PutBook(ctx, book))

	_, err := s.FindBookByISBN(ctx, "9780306406157")
	assert.ErrorIs(t, err, store.ErrNotFound, "old isbn index is removed")

	got, err := s.FindBookByISBN(ctx, "9780441478125")
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.ID)
}

func TestStore_IndexTakeoverSurvivesOlderEviction(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "9780306406157")))
	require.NoError(t, s.PutBook(ctx, testBook("book-2", "9780306406157")))
	require.NoError(t, s.DeleteBook(ctx, "book-1"))

	got, err := s.FindBookByISBN(ctx, "9780306406157")
	require.NoError(t, err)
	assert.Equal(t, "book-2", got.ID)
}

func TestStore_DeleteBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "9780306406157")))
	require.NoError(t, s.DeleteBook(ctx, "book-1"))
	require.NoError(t, s.DeleteBook(ctx, "book-1"), "delete is idempotent")

	_, err := s.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.FindBookByISBN(ctx, "9780306406157")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ReplaceBooks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-old", "9780306406157")))
	require.NoError(t, s.ReplaceBooks(ctx, []*domain.Book{testBook("book-a", ""), testBook("book-b", "")}))

	var ids []string
	for b, err := range s.Books.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"book-a", "book-b"}, ids)

	_, err := s.FindBookByISBN(ctx, "9780306406157")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Lists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	list := &domain.BookList{ID: "list-1", Name: "Summer", BookIDs: []string{"book-1", "book-2"}}
	require.NoError(t, s.PutList(ctx, list))

	got, err := s.GetList(ctx, "list-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"book-1", "book-2"}, got.BookIDs)

	require.NoError(t, s.DeleteList(ctx, "list-1"))
	_, err = s.GetList(ctx, "list-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_PersistsOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	s, err := store.New(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.PutBook(ctx, testBook("book-1", "")))
	require.NoError(t, s.Close())

	s, err = store.New(path, nil)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // Test cleanup

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "book-1", got.ID)
}

func TestEntity_RejectsEmptyID(t *testing.T) {
	s := setupTestStore(t)

	err := s.PutBook(context.Background(), testBook("", ""))
	assert.Error(t, err)
}

func TestEntity_CancelledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, context.Canceled)
}
