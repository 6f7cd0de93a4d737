package tradebook

import "errors"

// Sentinel errors raised by ledger operations. Callers match them with
// errors.Is; the server subpackage maps them to HTTP responses.
var (
	// ErrNotFound reports an unknown trade id, or a missing position where
	// one is required.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientQuantity reports a sell or a reversal that would drive a
	// position's quantity negative.
	ErrInsufficientQuantity = errors.New("insufficient quantity of stock in the portfolio")

	// ErrInvalidTrade reports invalid trade parameters reaching the ledger,
	// e.g. a non-positive quantity or a negative price.
	ErrInvalidTrade = errors.New("invalid trade")
)
