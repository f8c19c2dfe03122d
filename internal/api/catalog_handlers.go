package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCatalogProviders",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/providers",
		Summary:     "List catalog providers",
		Description: "Returns the configured catalog providers and the default one",
		Tags:        []string{"Catalog"},
	}, s.handleListProviders)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search catalog by title",
		Description: "Searches an external catalog by title. Results already in the library carry their library id.",
		Tags:        []string{"Catalog"},
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "lookupCatalogISBN",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/isbn/{isbn}",
		Summary:     "Look up ISBN",
		Description: "Finds the edition with the given ISBN-10 or ISBN-13",
		Tags:        []string{"Catalog"},
	}, s.handleLookupISBN)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalogDetails",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{provider}/{id}",
		Summary:     "Get catalog details",
		Description: "Fetches full details of a provider record",
		Tags:        []string{"Catalog"},
	}, s.handleCatalogDetails)
}

// CatalogResultResponse is one normalized catalog result.
type CatalogResultResponse struct {
	Book      BookResponse `json:"book" doc:"Normalized book"`
	InLibrary string       `json:"in_library,omitempty" doc:"Library id when the book is already in the library"`
}

func toCatalogResultResponse(r service.CatalogResult) CatalogResultResponse {
	return CatalogResultResponse{Book: toBookResponse(&r.Book), InLibrary: r.InLibrary}
}

// ProvidersResponse lists the catalog providers.
type ProvidersResponse struct {
	Providers []string `json:"providers" doc:"Configured provider names"`
	Default   string   `json:"default" doc:"Provider used when a request names none"`
}

// ProvidersOutput wraps the providers response for Huma.
type ProvidersOutput struct {
	Body ProvidersResponse
}

// SearchCatalogInput contains the title search parameters.
type SearchCatalogInput struct {
	Query    string `query:"q" doc:"Title to search for"`
	Provider string `query:"provider" doc:"Provider name; the configured default when empty"`
	Limit    int    `query:"limit" minimum:"0" maximum:"40" doc:"Maximum results (default 20)"`
}

// SearchCatalogResponse contains catalog search results.
type SearchCatalogResponse struct {
	Provider string                  `json:"provider" doc:"Provider that answered"`
	Results  []CatalogResultResponse `json:"results" doc:"Normalized results"`
	Total    int                     `json:"total" doc:"Number of results"`
}

// SearchCatalogOutput wraps the search response for Huma.
type SearchCatalogOutput struct {
	Body SearchCatalogResponse
}

// LookupISBNInput contains the ISBN lookup parameters.
type LookupISBNInput struct {
	ISBN     string `path:"isbn" doc:"ISBN-10 or ISBN-13, hyphens allowed"`
	Provider string `query:"provider" doc:"Provider name; the configured default when empty"`
}

// CatalogDetailsInput identifies a provider record.
type CatalogDetailsInput struct {
	Provider string `path:"provider" doc:"Provider name"`
	ID       string `path:"id" doc:"Provider record id"`
}

// CatalogResultOutput wraps a single catalog result for Huma.
type CatalogResultOutput struct {
	Body CatalogResultResponse
}

func (s *Server) handleListProviders(_ context.Context, _ *struct{}) (*ProvidersOutput, error) {
	names := s.services.Catalog.Providers()
	providers := make([]string, len(names))
	for i, name := range names {
		providers[i] = string(name)
	}
	return &ProvidersOutput{
		Body: ProvidersResponse{Providers: providers, Default: string(s.services.Catalog.DefaultProvider())},
	}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	provider := catalog.ProviderName(input.Provider)
	results, err := s.services.Catalog.SearchByTitle(ctx, provider, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]CatalogResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toCatalogResultResponse(r))
	}
	if provider == "" {
		provider = s.services.Catalog.DefaultProvider()
	}
	return &SearchCatalogOutput{
		Body: SearchCatalogResponse{Provider: string(provider), Results: out, Total: len(out)},
	}, nil
}

func (s *Server) handleLookupISBN(ctx context.Context, input *LookupISBNInput) (*CatalogResultOutput, error) {
	result, err := s.services.Catalog.SearchByISBN(ctx, catalog.ProviderName(input.Provider), input.ISBN)
	if err != nil {
		return nil, err
	}
	return &CatalogResultOutput{Body: toCatalogResultResponse(*result)}, nil
}

func (s *Server) handleCatalogDetails(ctx context.Context, input *CatalogDetailsInput) (*CatalogResultOutput, error) {
	result, err := s.services.Catalog.Details(ctx, catalog.ProviderName(input.Provider), input.ID)
	if err != nil {
		return nil, err
	}
	return &CatalogResultOutput{Body: toCatalogResultResponse(*result)}, nil
}
