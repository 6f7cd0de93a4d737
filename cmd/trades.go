package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type tradesCmd struct {
	ticker string
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list recorded trades with their positions" }
func (*tradesCmd) Usage() string {
	return `tbs trades [-t <ticker>]

  Lists the trade history grouped per ticker, with the resulting aggregate
  position. Without -t, every ticker is listed.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Only list trades for this ticker.")
}

func (c *tradesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	history, err := ledger.History(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, h := range history {
		if c.ticker != "" && h.Ticker != c.ticker {
			continue
		}
		fmt.Fprintf(w, "%s\t%s shares\tavg %s\n", h.Ticker, h.Quantity, h.AvgPrice.Display())
		for _, t := range h.Trades {
			fmt.Fprintf(w, "  %s\t%s x%s\tat %s\t%s\n", t.ID, t.Side, t.Quantity, t.Price.Display(), t.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
	w.Flush()
	return subcommands.ExitSuccess
}
