package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

// StoreHandle wraps the local cache with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the local read-through cache.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Data.CacheInMemory {
		db, err := store.NewInMemory(log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Cache initialized in memory")
		return &StoreHandle{Store: db}, nil
	}

	cachePath := cfg.Data.CachePath()
	db, err := store.New(cachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Cache initialized", "path", cachePath)

	return &StoreHandle{Store: db}, nil
}

// ProvideDocStore provides the remote document store collections.
func ProvideDocStore(i do.Injector) (*docstore.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := docstore.New(docstore.Config{
		BaseURL: cfg.DocStore.URL,
		APIKey:  cfg.DocStore.APIKey,
		Timeout: cfg.DocStore.Timeout,
	}, log.Logger)

	log.Info("Document store configured",
		"url", cfg.DocStore.URL,
		"timeout", cfg.DocStore.Timeout,
		"authenticated", cfg.DocStore.APIKey != "",
	)

	return docstore.NewStore(client), nil
}
