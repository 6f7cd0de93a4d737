package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the aggregate position per ticker" }
func (*holdingsCmd) Usage() string {
	return `tbs holdings

  Lists every position in the book with its quantity held and weighted
  average buy price. Zeroed positions are listed too.
`
}

func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	positions, err := ledger.Holdings(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tQUANTITY\tAVG BUY PRICE")
	for _, p := range positions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Ticker, p.Quantity, p.AvgPrice.Display())
	}
	w.Flush()
	return subcommands.ExitSuccess
}
