package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

type sellCmd struct {
	ticker   string
	price    float64
	quantity int64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sell trade" }
func (*sellCmd) Usage() string {
	return `tbs sell -t <ticker> -q <quantity> [-p <price>]

  Records a sell against the ticker's position. Fails when the position
  holds fewer shares than the sale. The average buy price is unchanged.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker symbol of the security.")
	f.Float64Var(&c.price, "p", 100, "Price per share.")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares.")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return record(ctx, c.ticker, tradebook.Sell, c.price, c.quantity)
}
