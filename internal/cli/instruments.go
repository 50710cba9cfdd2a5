package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/google/subcommands"
)

// instrumentsCmd lists the catalog. It needs no network access.
type instrumentsCmd struct{}

func (*instrumentsCmd) Name() string     { return "instruments" }
func (*instrumentsCmd) Synopsis() string { return "list the instruments available for projection" }
func (*instrumentsCmd) Usage() string {
	return `etfcast instruments

  Lists every instrument of the catalog, grouped by type.
`
}

func (c *instrumentsCmd) SetFlags(f *flag.FlagSet) {}

func (c *instrumentsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cat, err := catalog.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(InstrumentsMarkdown(cat.Types()))
	return subcommands.ExitSuccess
}
