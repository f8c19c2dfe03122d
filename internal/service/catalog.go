package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

const (
	defaultCatalogLimit = 20
	maxCatalogLimit     = 40
)

// CatalogResult is a normalized provider record. InLibrary holds the id of
// the matching library book, if the cache knows one.
type CatalogResult struct {
	Book      domain.Book
	InLibrary string
}

// CatalogService searches the external catalog providers and normalizes
// their records.
type CatalogService struct {
	providers *catalog.Registry
	library   *LibraryService
	logger    *slog.Logger
	now       func() time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(providers *catalog.Registry, library *LibraryService, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		providers: providers,
		library:   library,
		logger:    logger,
		now:       time.Now,
	}
}

// Providers lists the configured provider names.
func (s *CatalogService) Providers() []catalog.ProviderName {
	return s.providers.Names()
}

// DefaultProvider is the provider used when a request names none.
func (s *CatalogService) DefaultProvider() catalog.ProviderName {
	return s.providers.Default()
}

// SearchByTitle runs a title search. An empty provider selects the default.
func (s *CatalogService) SearchByTitle(ctx context.Context, provider catalog.ProviderName, title string, limit int) ([]CatalogResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainerrors.Validation("search query cannot be empty")
	}
	if limit <= 0 {
		limit = defaultCatalogLimit
	}
	limit = min(limit, maxCatalogLimit)

	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, catalogError(err, title)
	}

	records, err := p.SearchByTitle(ctx, title, limit)
	if err != nil {
		s.logger.Warn("catalog search failed", "provider", p.Name(), "query", title, "error", err)
		return nil, catalogError(err, title)
	}

	now := s.now()
	results := make([]CatalogResult, 0, len(records))
	for _, rec := range records {
		results = append(results, s.result(ctx, catalog.NormalizeAt(rec, now)))
	}

	s.logger.Debug("catalog search", "provider", p.Name(), "query", title, "results", len(results))
	return results, nil
}

// SearchByISBN looks up a single edition. The ISBN is validated before any
// provider call.
func (s *CatalogService) SearchByISBN(ctx context.Context, provider catalog.ProviderName, raw string) (*CatalogResult, error) {
	isbn, err := domain.ParseISBN(raw)
	if err != nil {
		return nil, domainerrors.Validationf("invalid isbn %q", raw).WithCause(err)
	}

	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, catalogError(err, isbn)
	}

	rec, err := p.SearchByISBN(ctx, isbn)
	if err != nil {
		s.logger.Warn("catalog isbn lookup failed", "provider", p.Name(), "isbn", isbn, "error", err)
		return nil, catalogError(err, isbn)
	}

	result := s.result(ctx, catalog.NormalizeAt(rec, s.now()))
	return &result, nil
}

// Details fetches a provider record by its native id.
func (s *CatalogService) Details(ctx context.Context, provider catalog.ProviderName, id string) (*CatalogResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domainerrors.Validation("catalog id is required")
	}

	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, catalogError(err, id)
	}

	rec, err := p.GetDetails(ctx, id)
	if err != nil {
		s.logger.Warn("catalog details failed", "provider", p.Name(), "id", id, "error", err)
		return nil, catalogError(err, id)
	}

	result := s.result(ctx, catalog.NormalizeAt(rec, s.now()))
	return &result, nil
}

func (s *CatalogService) result(ctx context.Context, book domain.Book) CatalogResult {
	return CatalogResult{Book: book, InLibrary: s.library.LookupCached(ctx, &book)}
}
