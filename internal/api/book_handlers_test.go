package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBook_CreatedThenExisting(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{"book": duneCandidate(), "status": "unread"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var first AddBookResponse
	decode(t, resp, &first)
	assert.True(t, first.Created)
	assert.NotEmpty(t, first.Book.ID)
	assert.Equal(t, "toRead", first.Book.Status)

	// The ISBN-10 of the same edition resolves to the same entry.
	again := duneCandidate()
	again["isbn"] = "0441013597"
	resp = ts.api.Post("/api/v1/books", map[string]any{"book": again})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var second AddBookResponse
	decode(t, resp, &second)
	assert.False(t, second.Created)
	assert.Equal(t, first.Book.ID, second.Book.ID)
	assert.Equal(t, 1, ts.remote.Count("books"))
}

func TestAddBook_UnknownStatus(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{"book": duneCandidate(), "status": "someday"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decode(t, resp, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Zero(t, ts.remote.Calls(http.MethodPost, "books"))
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, duneCandidate())

	resp := ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var got BookResponse
	decode(t, resp, &got)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 412, got.PageCount)
	assert.Equal(t, "wishlist", got.Status)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decode(t, resp, nil)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.NotEmpty(t, env.Error)
}

func TestGetBook_RemoteFailure(t *testing.T) {
	ts := setupTestServer(t)
	ts.remote.Fail(http.MethodGet, "books", http.StatusInternalServerError)

	resp := ts.api.Get("/api/v1/books/book-1")
	assert.Equal(t, http.StatusBadGateway, resp.Code)

	env := decode(t, resp, nil)
	assert.Equal(t, "REMOTE_UNAVAILABLE", env.Code)
}

func TestListBooks_Filters(t *testing.T) {
	ts := setupTestServer(t)
	dune := ts.addBook(t, duneCandidate())
	ts.addBook(t, map[string]any{"title": "Emma", "author": "Jane Austen", "isbn": "9780141439587"})

	resp := ts.api.Post("/api/v1/books/" + dune.ID + "/favorite")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var all ListBooksResponse
	decode(t, ts.api.Get("/api/v1/books"), &all)
	assert.Equal(t, 2, all.Total)

	var favorites ListBooksResponse
	decode(t, ts.api.Get("/api/v1/books?favorite=true"), &favorites)
	require.Len(t, favorites.Books, 1)
	assert.Equal(t, dune.ID, favorites.Books[0].ID)

	resp = ts.api.Get("/api/v1/books?favorite=maybe")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRemoveBook(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.addBook(t, duneCandidate())

	resp := ts.api.Delete("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestToggleCandidateFavorite_CreatesEntry(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/favorites", map[string]any{"book": duneCandidate()})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var book BookResponse
	decode(t, resp, &book)
	assert.NotEmpty(t, book.ID)
	assert.True(t, book.IsFavorite)
	assert.Equal(t, "wishlist", book.Status)

	// Toggling the same candidate again unfavorites the existing entry.
	resp = ts.api.Post("/api/v1/favorites", map[string]any{"book": duneCandidate()})
	require.Equal(t, http.StatusOK, resp.Code)

	var again BookResponse
	decode(t, resp, &again)
	assert.Equal(t, book.ID, again.ID)
	assert.False(t, again.IsFavorite)
	assert.Equal(t, 1, ts.remote.Count("books"))
}
