// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/etfcast/internal/clientdata"
	"github.com/aristath/etfcast/internal/clients/exchangerate"
	"github.com/aristath/etfcast/internal/clients/yahoo"
	"github.com/aristath/etfcast/internal/database"
	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and handed to the server and CLI.
type Container struct {
	// Databases
	CacheDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Clients
	YahooClient        *yahoo.Client
	ExchangeRateClient *exchangerate.Client

	// Services
	Catalog           *catalog.Catalog
	MarketDataService *marketdata.Service
	Engine            *projection.Engine

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds job references for manual triggering via API
type JobInstances struct {
	MarketDataRefresh scheduler.Job
	ClientDataCleanup scheduler.Job
}

// All returns every job instance
func (j *JobInstances) All() []scheduler.Job {
	return []scheduler.Job{j.MarketDataRefresh, j.ClientDataCleanup}
}

// Close releases the container's databases
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
