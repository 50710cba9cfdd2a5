// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the market data cache (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	Simulation SimulationConfig
	MarketData MarketDataConfig
}

// SimulationConfig tunes the Monte Carlo engine
type SimulationConfig struct {
	Paths     int
	BatchSize int
	Workers   int
	CacheSize int
	Seed      uint64 // 0 seeds from the clock
}

// MarketDataConfig configures the upstream data sources
type MarketDataConfig struct {
	YahooBaseURL        string
	ExchangeRateBaseURL string
	HistoryYears        int
	RefreshSchedule     string // six-field cron spec or descriptor
	CleanupSchedule     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ETFCAST_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Simulation: SimulationConfig{
			Paths:     getEnvAsInt("SIMULATION_PATHS", 10000),
			BatchSize: getEnvAsInt("SIMULATION_BATCH_SIZE", 1000),
			Workers:   getEnvAsInt("SIMULATION_WORKERS", runtime.GOMAXPROCS(0)),
			CacheSize: getEnvAsInt("SIMULATION_CACHE_SIZE", 100),
			Seed:      getEnvAsUint64("SIMULATION_SEED", 0),
		},
		MarketData: MarketDataConfig{
			YahooBaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			ExchangeRateBaseURL: getEnv("EXCHANGERATE_BASE_URL", "https://api.exchangerate-api.com/v4/latest"),
			HistoryYears:        getEnvAsInt("HISTORY_YEARS", 20),
			RefreshSchedule:     getEnv("MARKET_DATA_REFRESH_CRON", "@hourly"),
			CleanupSchedule:     getEnv("CLIENT_DATA_CLEANUP_CRON", "0 0 3 * * *"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CacheDBPath is the market data cache database location
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Validate checks that sizes and ports are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be in 1..65535, got %d", c.Port)
	}

	checks := []struct {
		name  string
		value int
	}{
		{"SIMULATION_PATHS", c.Simulation.Paths},
		{"SIMULATION_BATCH_SIZE", c.Simulation.BatchSize},
		{"SIMULATION_WORKERS", c.Simulation.Workers},
		{"SIMULATION_CACHE_SIZE", c.Simulation.CacheSize},
		{"HISTORY_YEARS", c.MarketData.HistoryYears},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", check.name, check.value)
		}
	}

	if c.MarketData.RefreshSchedule == "" {
		return fmt.Errorf("MARKET_DATA_REFRESH_CRON must not be empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
