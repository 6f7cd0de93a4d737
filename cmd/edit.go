package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

type editCmd struct {
	ticker   string
	side     string
	price    float64
	quantity int64
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "replace a recorded trade's parameters" }
func (*editCmd) Usage() string {
	return `tbs edit -t <ticker> -side <BUY|SELL> -q <quantity> [-p <price>] <trade-id>

  Reverses the old trade's effect and applies the new parameters in its
  place. When validation of the new trade fails, nothing changes.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "New ticker symbol.")
	f.StringVar(&c.side, "side", "", "New trade type, BUY or SELL.")
	f.Float64Var(&c.price, "p", 100, "New price per share.")
	f.Int64Var(&c.quantity, "q", 0, "New number of shares.")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one trade id.")
		return subcommands.ExitUsageError
	}
	side, err := tradebook.ParseSide(c.side)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	trade, err := ledger.UpdateTrade(ctx, f.Arg(0), c.ticker, side, tradebook.P(c.price), tradebook.Q(c.quantity))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("updated trade %s: %s %s x%s at %s\n", trade.ID, trade.Side, trade.Ticker, trade.Quantity, trade.Price.Display())
	return subcommands.ExitSuccess
}
