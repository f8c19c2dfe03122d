package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

// ProvideLibraryService provides the library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	remote := do.MustInvoke[*docstore.Store](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	defaultStatus, err := domain.ParseStatus(cfg.Library.DefaultStatus)
	if err != nil {
		return nil, err
	}

	svc := service.NewLibraryService(remote, storeHandle.Store, searchService, defaultStatus, log.Logger)

	// Reindex reads the library back through the service it indexes for.
	searchService.Attach(svc)

	return svc, nil
}

// ProvideListService provides the reading list service.
func ProvideListService(i do.Injector) (*service.ListService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	remote := do.MustInvoke[*docstore.Store](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	library := do.MustInvoke[*service.LibraryService](i)

	return service.NewListService(remote, storeHandle.Store, library, log.Logger), nil
}

// ProvideCatalogService provides the catalog search service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	registry := do.MustInvoke[*catalog.Registry](i)
	library := do.MustInvoke[*service.LibraryService](i)

	return service.NewCatalogService(registry, library, log.Logger), nil
}

// ProvideStatsService provides the reading statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	library := do.MustInvoke[*service.LibraryService](i)

	return service.NewStatsService(library, log.Logger), nil
}
