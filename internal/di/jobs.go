package di

import (
	"fmt"

	"github.com/aristath/etfcast/internal/clientdata"
	"github.com/aristath/etfcast/internal/config"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and schedules them
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		MarketDataRefresh: marketdata.NewRefreshJob(container.MarketDataService, 0),
		ClientDataCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, clientdata.StaleRetention, log),
	}

	if err := container.Scheduler.AddJob(cfg.MarketData.RefreshSchedule, instances.MarketDataRefresh); err != nil {
		return nil, fmt.Errorf("failed to schedule market data refresh: %w", err)
	}
	if err := container.Scheduler.AddJob(cfg.MarketData.CleanupSchedule, instances.ClientDataCleanup); err != nil {
		return nil, fmt.Errorf("failed to schedule client data cleanup: %w", err)
	}

	return instances, nil
}
