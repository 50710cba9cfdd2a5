package cli

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/currency"
	"github.com/aristath/etfcast/pkg/formulas"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// curveCmd holds the flags for the 'curve' subcommand.
type curveCmd struct {
	deposit  float64
	rate     float64
	symbol   string
	years    int
	currency string
}

func (*curveCmd) Name() string     { return "curve" }
func (*curveCmd) Synopsis() string { return "display a fixed-rate growth projection" }
func (*curveCmd) Usage() string {
	return `etfcast curve -d <monthly deposit> (-r <annual %> | -s <symbol>) -y <years> [-c <currency>]

  Displays the yearly split between deposits and interest when growing at a fixed annual rate.
  With -s, the rate is the instrument's corrected historical growth.
`
}

func (c *curveCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.deposit, "d", 500, "Monthly deposit in the display currency")
	f.Float64Var(&c.rate, "r", math.NaN(), "Annual growth rate in percent")
	f.StringVar(&c.symbol, "s", "", "Instrument symbol to take the growth rate from")
	f.IntVar(&c.years, "y", 30, "Years to invest")
	f.StringVar(&c.currency, "c", "USD", "Display currency")
}

func (c *curveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if math.IsNaN(c.rate) && c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -r or -s is required")
		return subcommands.ExitUsageError
	}
	if !currency.Known(c.currency) {
		fmt.Fprintf(os.Stderr, "Error: unknown currency %q\n", c.currency)
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, c.run)
}

func (c *curveCmd) run(ctx context.Context, e *env) (string, error) {
	growth := c.rate
	if math.IsNaN(growth) {
		var err error
		growth, err = e.marketData.SimulationGrowthRate(ctx, c.symbol)
		if err != nil {
			return "", err
		}
	}

	code := strings.ToUpper(c.currency)
	rate, err := e.rates.GetRate(ctx, "USD", code)
	if err != nil {
		return "", fmt.Errorf("failed to get USD->%s rate: %w", code, err)
	}

	points, err := e.engine.Project(projection.ProjectionRequest{
		MonthlyDeposit:      c.deposit,
		AnnualGrowthPercent: growth,
		Years:               c.years,
		ConversionRate:      rate,
	})
	if err != nil {
		return "", err
	}

	final := points[len(points)-1]
	adjusted := decimal.NewFromFloat(formulas.InflationAdjust(final.TotalValue, c.years)).Round(0).InexactFloat64()
	return CurveMarkdown(points, code, growth, adjusted), nil
}
