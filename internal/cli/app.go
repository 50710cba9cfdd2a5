// Package cli implements the etfcast command line application.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aristath/etfcast/internal/config"
	"github.com/aristath/etfcast/internal/di"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/aristath/etfcast/pkg/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var logLevel = flag.String("log-level", "error", "Log level for diagnostics written to stderr")

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&instrumentsCmd{}, "market data")
	c.Register(&growthCmd{}, "market data")

	c.Register(&simulateCmd{}, "projections")
	c.Register(&curveCmd{}, "projections")
}

type marketData interface {
	History(ctx context.Context, symbol string) ([]formulas.PricePoint, error)
	SimulationGrowthRate(ctx context.Context, symbol string) (float64, error)
	Overview(ctx context.Context, symbol string) (*marketdata.Overview, error)
}

type rateProvider interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// env holds what a command needs to run.
type env struct {
	marketData marketData
	rates      rateProvider
	engine     *projection.Engine
	cfg        *config.Config
	log        zerolog.Logger
}

// openEnv loads configuration and wires the application for a single command.
func openEnv() (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  *logLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	e := &env{
		marketData: container.MarketDataService,
		rates:      container.ExchangeRateClient,
		engine:     container.Engine,
		cfg:        cfg,
		log:        log,
	}
	return e, func() { container.Close() }, nil
}

// withEnv opens the environment, runs fn and prints its markdown output.
func withEnv(ctx context.Context, fn func(ctx context.Context, e *env) (string, error)) subcommands.ExitStatus {
	e, closeEnv, err := openEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeEnv()

	md, err := fn(ctx, e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(md)
	return subcommands.ExitSuccess
}
