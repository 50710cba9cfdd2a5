package di

import (
	"fmt"

	"github.com/aristath/etfcast/internal/config"
	"github.com/aristath/etfcast/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the market data cache and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// cache.db - Ephemeral client data (price history, quotes, exchange rates)
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	container.CacheDB = cacheDB

	log.Debug().Str("path", cacheDB.Path()).Msg("Cache database ready")
	return container, nil
}
