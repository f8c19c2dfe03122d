package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagetrail/pagetrail-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/search",
		Summary:     "Search library",
		Description: "Full-text search over library books with status, favorite, category, language and year filters",
		Tags:        []string{"Search"},
	}, s.handleSearchLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/reindex",
		Summary:     "Rebuild search index",
		Description: "Rebuilds the local search index from the library",
		Tags:        []string{"Search"},
	}, s.handleReindex)
}

// SearchLibraryInput contains library search parameters.
type SearchLibraryInput struct {
	Query      string `query:"q" doc:"Search query; empty matches every book"`
	Status     string `query:"status" doc:"Filter by status"`
	Favorite   string `query:"favorite" doc:"Filter by favorite flag: true or false"`
	Categories string `query:"categories" doc:"Comma-separated categories, any of which may match"`
	Language   string `query:"language" doc:"Filter by language code"`
	MinYear    int    `query:"min_year" minimum:"0" doc:"Earliest publish year"`
	MaxYear    int    `query:"max_year" minimum:"0" doc:"Latest publish year"`
	Sort       string `query:"sort" enum:"relevance,title,author,recent" default:"relevance" doc:"Sort order"`
	Limit      int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
	Offset     int    `query:"offset" minimum:"0" doc:"Results to skip"`
	Facets     bool   `query:"facets" doc:"Include status and category facet counts"`
	Highlight  bool   `query:"highlight" doc:"Include highlighted fragments"`
}

// SearchLibraryOutput wraps the search result for Huma.
type SearchLibraryOutput struct {
	Body *search.SearchResult
}

// ReindexResponse reports a rebuilt index.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of books indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

func (s *Server) handleSearchLibrary(ctx context.Context, input *SearchLibraryInput) (*SearchLibraryOutput, error) {
	favorite, err := parseFavorite(input.Favorite)
	if err != nil {
		return nil, err
	}

	params := search.SearchParams{
		Query:         input.Query,
		Status:        input.Status,
		Favorite:      favorite,
		Language:      input.Language,
		MinYear:       input.MinYear,
		MaxYear:       input.MaxYear,
		SortBy:        input.Sort,
		Limit:         input.Limit,
		Offset:        input.Offset,
		IncludeFacets: input.Facets,
		Highlight:     input.Highlight,
	}
	for c := range strings.SplitSeq(input.Categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			params.Categories = append(params.Categories, c)
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchLibraryOutput{Body: result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	n, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: ReindexResponse{Indexed: n}}, nil
}
