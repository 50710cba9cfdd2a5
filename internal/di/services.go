package di

import (
	"fmt"

	"github.com/aristath/etfcast/internal/clientdata"
	"github.com/aristath/etfcast/internal/clients/exchangerate"
	"github.com/aristath/etfcast/internal/clients/yahoo"
	"github.com/aristath/etfcast/internal/config"
	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates clients, the catalog, the market data service and the engine
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())

	container.YahooClient = yahoo.NewClient(cfg.MarketData.YahooBaseURL, log)
	container.ExchangeRateClient = exchangerate.NewClient(cfg.MarketData.ExchangeRateBaseURL, container.ClientDataRepo, log)

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load instrument catalog: %w", err)
	}
	container.Catalog = cat

	container.MarketDataService = marketdata.NewService(
		container.YahooClient,
		container.ClientDataRepo,
		cat,
		cfg.MarketData.HistoryYears,
		log,
	)

	opts := []projection.Option{
		projection.WithCache(projection.NewCache(projection.WithCapacity(cfg.Simulation.CacheSize))),
		projection.WithDefaultPathCount(cfg.Simulation.Paths),
		projection.WithBatchSize(cfg.Simulation.BatchSize),
		projection.WithWorkers(cfg.Simulation.Workers),
	}
	if cfg.Simulation.Seed != 0 {
		opts = append(opts, projection.WithSeed(cfg.Simulation.Seed))
	}
	container.Engine = projection.NewEngine(log, opts...)

	container.Scheduler = scheduler.New(log)
	return nil
}
