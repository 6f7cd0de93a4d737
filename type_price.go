package tradebook

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Price represents a monetary value per share, or an amount of money derived
// from one. The book is single-currency; prices are denominated in USD.
type Price struct {
	value decimal.Decimal
}

func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Price {
	return Price{value: newDecimal(value)}
}

// ParsePrice parses the canonical string representation of a price.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{value: d}, nil
}

func (p Price) Equal(o Price) bool       { return p.value.Equal(o.value) }
func (p Price) LessThan(o Price) bool    { return p.value.LessThan(o.value) }
func (p Price) GreaterThan(o Price) bool { return p.value.GreaterThan(o.value) }
func (p Price) IsNegative() bool         { return p.value.IsNegative() }
func (p Price) IsPositive() bool         { return p.value.IsPositive() }
func (p Price) IsZero() bool             { return p.value.IsZero() }

// binary operators.
func (p Price) Add(o Price) Price      { return Price{value: p.value.Add(o.value)} }
func (p Price) Sub(o Price) Price      { return Price{value: p.value.Sub(o.value)} }
func (p Price) Mul(q Quantity) Price   { return Price{value: p.value.Mul(q.value)} }
func (p Price) Div(q Quantity) Price   { return Price{value: p.value.Div(q.value)} }
func (p Price) MulPrice(o Price) Price { return Price{value: p.value.Mul(o.value)} }

// String returns the plain numeric representation, e.g. "150.5".
func (p Price) String() string { return p.value.String() }

// Display formats the price as money for human output, e.g. "$150.50".
func (p Price) Display() string {
	cur := money.GetCurrency(money.USD)
	minor := p.value.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), money.USD).Display()
}

// InexactFloat64 returns the nearest float64. For display and tolerance
// checks only; calculations stay in decimal.
func (p Price) InexactFloat64() float64 { return p.value.InexactFloat64() }

// MarshalJSON renders the price as a bare JSON number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.value.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return p.value.UnmarshalJSON(data)
}
