package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/google/subcommands"
)

// simulateCmd holds the flags for the 'simulate' subcommand.
type simulateCmd struct {
	symbol  string
	deposit float64
	years   int
	paths   int
	seed    uint64
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run a Monte Carlo projection of monthly investing" }
func (*simulateCmd) Usage() string {
	return `etfcast simulate -s <symbol> -d <monthly deposit> -y <years> [-paths <n>] [-seed <n>]

  Simulates monthly deposits into an instrument using returns sampled from its
  history, and displays the distribution of final values.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Instrument symbol, e.g. VOO")
	f.Float64Var(&c.deposit, "d", 500, "Monthly deposit in USD")
	f.IntVar(&c.years, "y", 30, "Years to invest")
	f.IntVar(&c.paths, "paths", 0, "Number of simulated paths. Defaults to SIMULATION_PATHS")
	f.Uint64Var(&c.seed, "seed", 0, "Random seed for reproducible output. 0 seeds from the clock")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -s is required")
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, c.run)
}

func (c *simulateCmd) run(ctx context.Context, e *env) (string, error) {
	symbol := strings.ToUpper(c.symbol)

	growth, err := e.marketData.SimulationGrowthRate(ctx, symbol)
	if err != nil {
		return "", err
	}
	history, err := e.marketData.History(ctx, symbol)
	if err != nil {
		return "", err
	}

	engine := e.engine
	if c.seed != 0 {
		engine = projection.NewEngine(e.log,
			projection.WithSeed(c.seed),
			projection.WithDefaultPathCount(e.cfg.Simulation.Paths),
			projection.WithBatchSize(e.cfg.Simulation.BatchSize),
			projection.WithWorkers(e.cfg.Simulation.Workers),
		)
	}

	result, err := engine.Simulate(ctx, projection.SimulationRequest{
		Instrument:       symbol,
		MonthlyDeposit:   c.deposit,
		YearsToInvest:    c.years,
		AnnualGrowthRate: growth,
		PathCount:        c.paths,
		History:          history,
	})
	if err != nil {
		return "", err
	}
	return SimulationMarkdown(symbol, growth, result), nil
}
