package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type returnsCmd struct{}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "display the cumulative returns of the portfolio" }
func (*returnsCmd) Usage() string {
	return `tbs returns

  Sums (100 - averageBuyPrice) * quantity over all held positions. The
  reference price of 100 is fixed, not a live market price.
`
}

func (*returnsCmd) SetFlags(*flag.FlagSet) {}

func (c *returnsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	returns, err := ledger.Returns(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(returns.Display())
	return subcommands.ExitSuccess
}
