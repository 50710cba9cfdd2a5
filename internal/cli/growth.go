package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// growthCmd holds the flags for the 'growth' subcommand.
type growthCmd struct {
	symbol string
}

func (*growthCmd) Name() string     { return "growth" }
func (*growthCmd) Synopsis() string { return "display the historical growth of an instrument" }
func (*growthCmd) Usage() string {
	return `etfcast growth -s <symbol>

  Displays price, inception and the inflation and fee corrected annual growth of an instrument.
`
}

func (c *growthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Instrument symbol, e.g. VOO")
}

func (c *growthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -s is required")
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, c.run)
}

func (c *growthCmd) run(ctx context.Context, e *env) (string, error) {
	ov, err := e.marketData.Overview(ctx, c.symbol)
	if err != nil {
		return "", err
	}
	return OverviewMarkdown(ov), nil
}
