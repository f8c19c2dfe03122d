package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Add book",
		Description: "Adds a catalog result to the library. Adding a book that is already there returns the existing entry.",
		Tags:        []string{"Books"},
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Lists library books, newest first, optionally filtered by status and favorite flag",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a library book by id",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removeBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Remove book",
		Description:   "Removes a book from the library. Its reading sessions are kept.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/favorite",
		Summary:     "Toggle favorite",
		Description: "Flips the favorite flag of a library book",
		Tags:        []string{"Favorites"},
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleCandidateFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/favorites",
		Summary:     "Favorite a catalog result",
		Description: "Flips the favorite flag of a catalog result, adding it to the library first when needed",
		Tags:        []string{"Favorites"},
	}, s.handleToggleCandidateFavorite)
}

// AddBookRequest is the request body for adding a book.
type AddBookRequest struct {
	Book   BookCandidate `json:"book" doc:"Catalog result to add"`
	Status string        `json:"status,omitempty" doc:"Initial status; defaults to the configured library status"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// AddBookResponse reports the library entry and whether it was created.
type AddBookResponse struct {
	Book    BookResponse `json:"book" doc:"Library entry"`
	Created bool         `json:"created" doc:"False when the book was already in the library"`
}

// AddBookOutput wraps the add book response for Huma.
type AddBookOutput struct {
	Status int
	Body   AddBookResponse
}

// ListBooksInput contains the library listing filters.
type ListBooksInput struct {
	Status   string `query:"status" doc:"Filter by status (wishlist, toRead, reading, read, abandoned)"`
	Favorite string `query:"favorite" doc:"Filter by favorite flag: true or false"`
}

// ListBooksResponse contains a library listing.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Library books"`
	Total int            `json:"total" doc:"Number of books returned"`
}

// ListBooksOutput wraps the listing response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// BookIDInput identifies a library book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book id"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// CandidateRequest names a catalog result.
type CandidateRequest struct {
	Book BookCandidate `json:"book" doc:"Catalog result"`
}

// CandidateInput wraps a candidate request for Huma.
type CandidateInput struct {
	Body CandidateRequest
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*AddBookOutput, error) {
	status, err := parseStatus(input.Body.Status)
	if err != nil {
		return nil, err
	}

	book, created, err := s.services.Library.AddToLibrary(ctx, input.Body.Book.toDomain(), status)
	if err != nil {
		return nil, err
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return &AddBookOutput{
		Status: code,
		Body:   AddBookResponse{Book: toBookResponse(book), Created: created},
	}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	favorite, err := parseFavorite(input.Favorite)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Library.ListBooks(ctx, service.BookFilter{
		Status:   status,
		Favorite: favorite,
	})
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{
		Body: ListBooksResponse{Books: toBookResponses(books), Total: len(books)},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleRemoveBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if err := s.services.Library.RemoveBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.ToggleFavorite(ctx, service.ByID(input.ID))
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleToggleCandidateFavorite(ctx context.Context, input *CandidateInput) (*BookOutput, error) {
	book, err := s.services.Library.ToggleFavorite(ctx, service.ByCandidate(input.Body.Book.toDomain()))
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}
