package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove a trade, reverting its effect on the position" }
func (*rmCmd) Usage() string {
	return `tbs rm <trade-id>

  Deletes the trade and reverses the effect it had on its ticker's position.
  The reversal is computed against the position's current state.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one trade id.")
		return subcommands.ExitUsageError
	}

	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	pos, err := ledger.RemoveTrade(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("removed trade %s\n", f.Arg(0))
	fmt.Printf("position %s: %s shares, avg %s\n", pos.Ticker, pos.Quantity, pos.AvgPrice.Display())
	return subcommands.ExitSuccess
}
