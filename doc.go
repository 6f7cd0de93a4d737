// Package tradebook provides the types and rules for tracking a securities
// portfolio as a stream of buy and sell trades.
//
// The core functionalities include:
//   - Position Arithmetic: maintaining, per ticker, the quantity held and the
//     weighted-average buy price, and reversing a previously recorded trade's
//     effect with the exact algebraic inverse.
//   - Ledger Orchestration: recording, removing, and updating trades against
//     their positions so that the average buy price always reflects exactly
//     the trades currently active for each ticker.
//   - Store Contracts: narrow persistence interfaces for trades and positions,
//     with an in-memory implementation in this package and a SQLite-backed one
//     in the sqlite subpackage.
//
// This package serves as the foundational logic for the `tbs` command-line
// tool and the HTTP API in the server subpackage.
package tradebook
