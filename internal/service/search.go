package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/search"
)

const maxSearchLimit = 100

// SearchService keeps the library search index in sync and queries it.
// It implements BookIndexer.
type SearchService struct {
	index  *search.SearchIndex
	books  func(context.Context) ([]*domain.Book, error)
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, logger: logger}
}

// Attach sets the source Reindex reads the library from. The library service
// itself depends on the indexer, so the link is made after construction.
func (s *SearchService) Attach(library *LibraryService) {
	s.books = func(ctx context.Context) ([]*domain.Book, error) {
		return library.ListBooks(ctx, BookFilter{})
	}
}

// IndexBook adds or replaces a confirmed book in the index.
func (s *SearchService) IndexBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.index.IndexDocument(search.BookToDocument(book))
}

// DeleteBook removes a book from the index.
func (s *SearchService) DeleteBook(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.index.DeleteDocument(bookID)
}

// Search queries the local library.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Status != "" {
		status, err := domain.ParseStatus(params.Status)
		if err != nil {
			return nil, domainerrors.Validationf("unknown status %q", params.Status)
		}
		params.Status = string(status)
	}
	if params.Limit <= 0 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	params.Limit = min(params.Limit, maxSearchLimit)
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Internal("library search failed").WithCause(err)
	}
	return result, nil
}

// Reindex rebuilds the index from the remote library.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if s.books == nil {
		return 0, domainerrors.Internal("search service has no library attached")
	}
	start := time.Now()

	books, err := s.books(ctx)
	if err != nil {
		return 0, err
	}
	docs := make([]*search.BookDocument, len(books))
	for i, b := range books {
		docs[i] = search.BookToDocument(b)
	}
	if err := s.index.Reindex(docs); err != nil {
		return 0, domainerrors.Internal("search reindex failed").WithCause(err)
	}

	s.logger.Info("library search index rebuilt", "books", len(docs), "elapsed", time.Since(start))
	return len(docs), nil
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
