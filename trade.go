package tradebook

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Side is a typed string identifying the direction of a trade.
type Side string

// Trade sides.
const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide parses a string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("%w: unknown trade type %q", ErrInvalidTrade, s)
	}
}

// DefaultPrice is the price assumed when a trade is recorded without one. It
// doubles as the fixed reference price that cumulative returns are computed
// against.
var DefaultPrice = P(100)

// Trade is a single buy or sell of a security. A trade is immutable once
// recorded; changing one is modeled as reversing its effect and applying a
// new one in its place.
type Trade struct {
	ID        string    // unique trade identifier, assigned by the store
	Ticker    string    // ticker symbol of the traded security
	Side      Side      // BUY or SELL
	Price     Price     // price per share
	Quantity  Quantity  // number of shares, a positive integer
	CreatedAt time.Time // when the trade was recorded
}

// NewTrade builds a trade with a fresh id, timestamped now.
func NewTrade(ticker string, side Side, price Price, quantity Quantity) Trade {
	return Trade{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
}

func (t Trade) Equal(o Trade) bool {
	return t.ID == o.ID && t.Ticker == o.Ticker && t.Side == o.Side &&
		t.Price.Equal(o.Price) && t.Quantity.Equal(o.Quantity)
}

// Validate checks the trade parameters that must hold before any position
// arithmetic. All failures wrap ErrInvalidTrade.
func (t Trade) Validate() error {
	if t.Ticker == "" {
		return fmt.Errorf("%w: ticker symbol is missing", ErrInvalidTrade)
	}
	if t.Side != Buy && t.Side != Sell {
		return fmt.Errorf("%w: unknown trade type %q", ErrInvalidTrade, string(t.Side))
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidTrade, t.Price)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTrade, t.Quantity)
	}
	if !t.Quantity.IsInteger() {
		return fmt.Errorf("%w: quantity must be a whole number, got %s", ErrInvalidTrade, t.Quantity)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Trade.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("tickerSymbol", t.Ticker)
	w.Append("type", t.Side)
	w.Append("price", t.Price)
	w.Append("quantity", t.Quantity)
	w.Optional("createdAt", t.CreatedAt)
	return w.MarshalJSON()
}
