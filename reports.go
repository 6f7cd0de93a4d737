package tradebook

import "context"

// TickerHistory is one ticker's aggregate joined with the trades that formed
// it, as served by the trade listing endpoint.
type TickerHistory struct {
	Ticker   string
	Trades   []Trade
	Quantity Quantity
	AvgPrice Price
}

// MarshalJSON renders the history entry as a single-key object keyed by the
// ticker symbol, the shape the API has always exposed.
func (h TickerHistory) MarshalJSON() ([]byte, error) {
	trades := h.Trades
	if trades == nil {
		trades = []Trade{}
	}
	var entry jsonObjectWriter
	entry.Append("trades", trades)
	entry.Append("averageBuyPrice", h.AvgPrice)
	entry.Append("totalQuantity", h.Quantity)

	var w jsonObjectWriter
	w.Append(h.Ticker, &entry)
	return w.MarshalJSON()
}

// History returns every position joined with its trade history.
func (l *Ledger) History(ctx context.Context) ([]TickerHistory, error) {
	positions, err := l.store.Positions(ctx)
	if err != nil {
		return nil, err
	}
	histories := make([]TickerHistory, 0, len(positions))
	for _, pos := range positions {
		trades, err := l.store.TradesByTicker(ctx, pos.Ticker)
		if err != nil {
			return nil, err
		}
		histories = append(histories, TickerHistory{
			Ticker:   pos.Ticker,
			Trades:   trades,
			Quantity: pos.Quantity,
			AvgPrice: pos.AvgPrice,
		})
	}
	return histories, nil
}

// Returns computes the cumulative return of the portfolio against the fixed
// reference price: the sum over all held positions of
//
//	(reference - averageBuyPrice) * quantity
//
// Zero-quantity positions contribute nothing.
func (l *Ledger) Returns(ctx context.Context) (Price, error) {
	positions, err := l.store.Positions(ctx)
	if err != nil {
		return Price{}, err
	}
	total := P(0)
	for _, pos := range positions {
		if pos.Quantity.IsZero() {
			continue
		}
		total = total.Add(DefaultPrice.Sub(pos.AvgPrice).Mul(pos.Quantity))
	}
	return total, nil
}
