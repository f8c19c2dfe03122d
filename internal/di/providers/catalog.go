package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/catalog/googlebooks"
	"github.com/pagetrail/pagetrail-server/internal/catalog/openlibrary"
	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

// CatalogLimiterHandle wraps the outbound provider limiter with shutdown capability.
type CatalogLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *CatalogLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideCatalogLimiter provides the limiter shared by every catalog client.
// It is keyed by provider name.
func ProvideCatalogLimiter(i do.Injector) (*CatalogLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst)
	return &CatalogLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideCatalogRegistry provides the registry of book search providers.
func ProvideCatalogRegistry(i do.Injector) (*catalog.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiter := do.MustInvoke[*CatalogLimiterHandle](i)

	google := googlebooks.New(googlebooks.Config{
		BaseURL: cfg.Catalog.GoogleBooksURL,
		APIKey:  cfg.Catalog.GoogleBooksAPIKey,
	}, limiter.KeyedRateLimiter, log.Logger)

	openLib := openlibrary.New(openlibrary.Config{
		BaseURL: cfg.Catalog.OpenLibraryURL,
	}, limiter.KeyedRateLimiter, log.Logger)

	registry := catalog.NewRegistry(catalog.ProviderName(cfg.Catalog.DefaultProvider), google, openLib)

	log.Info("Catalog providers registered",
		"providers", registry.Names(),
		"default", registry.Default(),
		"requests_per_second", cfg.Catalog.RequestsPerSecond,
	)

	return registry, nil
}
