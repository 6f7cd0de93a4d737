package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

type buyCmd struct {
	ticker   string
	price    float64
	quantity int64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a buy trade" }
func (*buyCmd) Usage() string {
	return `tbs buy -t <ticker> -q <quantity> [-p <price>]

  Records a buy and folds it into the ticker's position. The price defaults
  to 100 when omitted.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker symbol of the security.")
	f.Float64Var(&c.price, "p", 100, "Price per share.")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares.")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return record(ctx, c.ticker, tradebook.Buy, c.price, c.quantity)
}

// record is the shared implementation of the buy and sell commands.
func record(ctx context.Context, ticker string, side tradebook.Side, price float64, quantity int64) subcommands.ExitStatus {
	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	pos, trade, err := ledger.RecordTrade(ctx, ticker, side, tradebook.P(price), tradebook.Q(quantity))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("recorded %s %s x%s at %s (trade %s)\n", trade.Side, trade.Ticker, trade.Quantity, trade.Price.Display(), trade.ID)
	fmt.Printf("position %s: %s shares, avg %s\n", pos.Ticker, pos.Quantity, pos.AvgPrice.Display())
	return subcommands.ExitSuccess
}
