package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/etnz/tradebook/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
	env  string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the trade book HTTP server" }
func (*serveCmd) Usage() string {
	return `tbs serve [-addr <addr>] [-env <development|production>]

  Serves the portfolio API: GET /api/v1/portfolio, GET /api/v1/returns and
  the /api/v1/trade endpoints, backed by the trade book database.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", ":"+envOr("PORT", "5000"), "Address to listen on.")
	f.StringVar(&c.env, "env", envOr("TRADEBOOK_ENV", "development"), "Runtime environment; development includes error details in responses.")
}

func (c *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, store, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	var opts []server.Option
	if c.env != "production" {
		opts = append(opts, server.WithDevMode())
	}
	srv := server.New(ledger, opts...)

	log.Printf("serving trade book on %s (%s)", c.addr, c.env)
	if err := http.ListenAndServe(c.addr, srv.Handler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
