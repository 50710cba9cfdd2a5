// Package main is the entry point for the etfcast projection service.
//
// Startup sequence:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires dependencies via the DI container (cache database, clients, engine)
// 4. Starts the job scheduler and the HTTP server
// 5. Waits for a shutdown signal and stops gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/etfcast/internal/config"
	"github.com/aristath/etfcast/internal/di"
	"github.com/aristath/etfcast/internal/server"
	"github.com/aristath/etfcast/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting etfcast")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:        log,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
		DataDir:    cfg.DataDir,
		CacheDB:    container.CacheDB,
		Engine:     container.Engine,
		MarketData: container.MarketDataService,
		Rates:      container.ExchangeRateClient,
		Scheduler:  container.Scheduler,
	})
	srv.SetJobs(jobs.All()...)

	container.Scheduler.Start()

	// Warm the market data cache without delaying startup
	go func() {
		if err := container.Scheduler.RunNow(jobs.MarketDataRefresh); err != nil {
			log.Warn().Err(err).Msg("Initial market data refresh failed")
		}
	}()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := container.Scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Scheduler did not stop cleanly")
	}

	log.Info().Msg("Server stopped")
}
