package api

import (
	"context"

	"github.com/pagetrail/pagetrail-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Library *service.LibraryService
	Lists   *service.ListService
	Catalog *service.CatalogService
	Search  *service.SearchService
	Stats   *service.StatsService
}

// HealthCheck probes one backing component for the health endpoint.
type HealthCheck struct {
	Name string
	// Critical components turn the overall status unhealthy; others only degrade it.
	Critical bool
	Check    func(ctx context.Context) error
}
