// Package cmd implements the CLI application to manage a trade book.
package cmd

import (
	"flag"
	"os"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/sqlite"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")

	c.Register(&buyCmd{}, "trades")
	c.Register(&sellCmd{}, "trades")
	c.Register(&rmCmd{}, "trades")
	c.Register(&editCmd{}, "trades")

	c.Register(&holdingsCmd{}, "reports")
	c.Register(&returnsCmd{}, "reports")
	c.Register(&tradesCmd{}, "reports")
}

// The flag default stays empty: the environment is only consulted at open
// time, after main has had a chance to load a .env file. Resolving it here
// would run at package init, before that load.
var dbFile = flag.String("db", "", "Path to the trade book database file (defaults to $TRADEBOOK_DB, then tradebook.db)")

// dbPath resolves the database path: the -db flag when given, then the
// TRADEBOOK_DB environment, then tradebook.db.
func dbPath() string {
	if *dbFile != "" {
		return *dbFile
	}
	return envOr("TRADEBOOK_DB", "tradebook.db")
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openLedger opens the app database and wraps it in a ledger. The returned
// store must be closed by the caller.
func openLedger() (*tradebook.Ledger, *sqlite.Store, error) {
	store, err := sqlite.Open(dbPath())
	if err != nil {
		return nil, nil, err
	}
	return tradebook.NewLedger(store), store, nil
}
