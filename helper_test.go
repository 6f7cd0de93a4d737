package tradebook

import (
	"context"
	"encoding/json"
	"testing"
)

// newTestLedger creates a ledger over a fresh in-memory store.
func newTestLedger(t *testing.T) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewLedger(store), store
}

// mustRecord records a trade and fails the test on error.
func mustRecord(t *testing.T, l *Ledger, ticker string, side Side, price float64, qty int64) Trade {
	t.Helper()
	_, trade, err := l.RecordTrade(context.Background(), ticker, side, P(price), Q(qty))
	if err != nil {
		t.Fatalf("RecordTrade(%s %s %v x%d) failed: %v", side, ticker, price, qty, err)
	}
	return trade
}

// mustPosition returns the ticker's position and fails the test when missing.
func mustPosition(t *testing.T, s Store, ticker string) Position {
	t.Helper()
	p, err := s.FindPosition(context.Background(), ticker)
	if err != nil {
		t.Fatalf("FindPosition(%s) failed: %v", ticker, err)
	}
	if p == nil {
		t.Fatalf("no position for %s", ticker)
	}
	return *p
}

// storeState renders the full store content as JSON, for before/after
// comparisons of failed operations.
func storeState(t *testing.T, s Store) string {
	t.Helper()
	ctx := context.Background()
	positions, err := s.Positions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	state := map[string]any{"positions": positions}
	trades := make(map[string][]Trade)
	for _, p := range positions {
		ts, err := s.TradesByTicker(ctx, p.Ticker)
		if err != nil {
			t.Fatal(err)
		}
		trades[p.Ticker] = ts
	}
	state["trades"] = trades
	b, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
