package tradebook

import "fmt"

// Position is the aggregate holding record for one ticker: the quantity held
// and the weighted-average buy price of those shares. A position is created
// on the first buy for a ticker and persists even after its quantity falls
// back to zero; a zeroed position and no position are equivalent for reads.
//
// Position is a value: the Apply and Reverse methods return the mutated copy
// and never touch the receiver.
type Position struct {
	Ticker   string   // ticker symbol, unique key
	Quantity Quantity // shares currently held, never negative
	AvgPrice Price    // weighted-average buy price; 0 while quantity is 0
}

// ApplyBuy folds a buy of quantity shares at price into the position. On a
// fresh or zeroed position the average becomes the buy price; otherwise
//
//	newAvg = (avg*held + price*quantity) / (held+quantity)
func (p Position) ApplyBuy(price Price, quantity Quantity) (Position, error) {
	if !quantity.IsPositive() {
		return p, fmt.Errorf("%w: buy quantity must be positive, got %s", ErrInvalidTrade, quantity)
	}
	if price.IsNegative() {
		return p, fmt.Errorf("%w: buy price must not be negative, got %s", ErrInvalidTrade, price)
	}
	newQty := p.Quantity.Add(quantity)
	cost := p.AvgPrice.Mul(p.Quantity).Add(price.Mul(quantity))
	p.AvgPrice = cost.Div(newQty)
	p.Quantity = newQty
	return p, nil
}

// ApplySell removes quantity shares from the position. Selling never changes
// the average buy price: the cost basis of the remaining shares is untouched.
func (p Position) ApplySell(quantity Quantity) (Position, error) {
	if !quantity.IsPositive() {
		return p, fmt.Errorf("%w: sell quantity must be positive, got %s", ErrInvalidTrade, quantity)
	}
	if p.Quantity.LessThan(quantity) {
		return p, fmt.Errorf("%w: cannot sell %s of %s, holding %s", ErrInsufficientQuantity, quantity, p.Ticker, p.Quantity)
	}
	p.Quantity = p.Quantity.Sub(quantity)
	if p.Quantity.IsZero() {
		p.AvgPrice = P(0)
	}
	return p, nil
}

// ReverseBuy undoes the effect of a previously applied buy trade. It is the
// algebraic inverse of ApplyBuy evaluated against the current state:
//
//	oldQty = held - t.quantity
//	oldAvg = (avg*held - t.price*t.quantity) / oldQty   (0 when oldQty is 0)
//
// The reversal fails with ErrInsufficientQuantity when the position has since
// been sold below the trade's quantity; undoing the buy would drive the
// holding negative.
func (p Position) ReverseBuy(t Trade) (Position, error) {
	if p.Quantity.LessThan(t.Quantity) {
		return p, fmt.Errorf("%w: cannot reverse buy of %s %s, holding %s", ErrInsufficientQuantity, t.Quantity, t.Ticker, p.Quantity)
	}
	oldQty := p.Quantity.Sub(t.Quantity)
	if oldQty.IsZero() {
		p.AvgPrice = P(0)
	} else {
		cost := p.AvgPrice.Mul(p.Quantity).Sub(t.Price.Mul(t.Quantity))
		p.AvgPrice = cost.Div(oldQty)
	}
	p.Quantity = oldQty
	return p, nil
}

// ReverseSell undoes the effect of a previously applied sell trade by adding
// its quantity back. The average buy price is unchanged, mirroring ApplySell.
func (p Position) ReverseSell(t Trade) Position {
	p.Quantity = p.Quantity.Add(t.Quantity)
	return p
}

// apply routes a trade to ApplyBuy or ApplySell.
func (p Position) apply(t Trade) (Position, error) {
	if t.Side == Buy {
		return p.ApplyBuy(t.Price, t.Quantity)
	}
	return p.ApplySell(t.Quantity)
}

// reverse routes a trade to ReverseBuy or ReverseSell.
func (p Position) reverse(t Trade) (Position, error) {
	if t.Side == Buy {
		return p.ReverseBuy(t)
	}
	return p.ReverseSell(t), nil
}

// MarshalJSON implements the json.Marshaler interface for Position.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("tickerSymbol", p.Ticker)
	w.Append("quantity", p.Quantity)
	w.Append("averageBuyPrice", p.AvgPrice)
	return w.MarshalJSON()
}
