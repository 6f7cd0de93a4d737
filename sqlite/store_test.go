package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etnz/tradebook"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tradebook.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PositionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if p, err := store.FindPosition(ctx, "AAPL"); err != nil || p != nil {
		t.Fatalf("FindPosition on empty store = %v, %v; want nil, nil", p, err)
	}

	created, err := store.CreatePosition(ctx, "AAPL", tradebook.Q(10), tradebook.P(150.25))
	if err != nil {
		t.Fatalf("CreatePosition failed: %v", err)
	}
	if !created.Quantity.Equal(tradebook.Q(10)) {
		t.Errorf("created quantity = %s, want 10", created.Quantity)
	}

	found, err := store.FindPosition(ctx, "AAPL")
	if err != nil {
		t.Fatalf("FindPosition failed: %v", err)
	}
	if found == nil || !found.AvgPrice.Equal(tradebook.P(150.25)) || !found.Quantity.Equal(tradebook.Q(10)) {
		t.Errorf("found = %+v, want 10 shares avg 150.25", found)
	}

	// Upsert by ticker key.
	if _, err := store.SavePosition(ctx, tradebook.Position{Ticker: "AAPL", Quantity: tradebook.Q(4), AvgPrice: tradebook.P(99)}); err != nil {
		t.Fatalf("SavePosition failed: %v", err)
	}
	found, _ = store.FindPosition(ctx, "AAPL")
	if !found.Quantity.Equal(tradebook.Q(4)) || !found.AvgPrice.Equal(tradebook.P(99)) {
		t.Errorf("after upsert = %+v, want 4 shares avg 99", found)
	}

	positions, err := store.Positions(ctx)
	if err != nil || len(positions) != 1 {
		t.Errorf("Positions = %v, %v; want one entry", positions, err)
	}
}

func TestStore_TradeRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.CreateTrade(ctx, "AAPL", tradebook.Buy, tradebook.P(100.5), tradebook.Q(10))
	if err != nil {
		t.Fatalf("CreateTrade failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("trade id was not assigned")
	}
	second, err := store.CreateTrade(ctx, "AAPL", tradebook.Sell, tradebook.P(120), tradebook.Q(3))
	if err != nil {
		t.Fatalf("CreateTrade failed: %v", err)
	}
	store.CreateTrade(ctx, "GOOG", tradebook.Buy, tradebook.P(40), tradebook.Q(1))

	found, err := store.FindTrade(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindTrade failed: %v", err)
	}
	if found == nil || !found.Equal(first) {
		t.Errorf("FindTrade = %+v, want %+v", found, first)
	}

	trades, err := store.TradesByTicker(ctx, "AAPL")
	if err != nil {
		t.Fatalf("TradesByTicker failed: %v", err)
	}
	if len(trades) != 2 || trades[0].ID != first.ID || trades[1].ID != second.ID {
		t.Errorf("trades = %v, want [first, second]", trades)
	}

	first.Price = tradebook.P(111)
	first.Quantity = tradebook.Q(7)
	if _, err := store.SaveTrade(ctx, first); err != nil {
		t.Fatalf("SaveTrade failed: %v", err)
	}
	found, _ = store.FindTrade(ctx, first.ID)
	if !found.Price.Equal(tradebook.P(111)) || !found.Quantity.Equal(tradebook.Q(7)) {
		t.Errorf("after save = %+v, want price 111 quantity 7", found)
	}

	if err := store.DeleteTrade(ctx, first.ID); err != nil {
		t.Fatalf("DeleteTrade failed: %v", err)
	}
	if found, _ := store.FindTrade(ctx, first.ID); found != nil {
		t.Error("deleted trade still found")
	}
}

func TestStore_NotFoundErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.DeleteTrade(ctx, "ghost"); !errors.Is(err, tradebook.ErrNotFound) {
		t.Errorf("DeleteTrade = %v, want ErrNotFound", err)
	}
	ghost := tradebook.NewTrade("AAPL", tradebook.Buy, tradebook.P(1), tradebook.Q(1))
	if _, err := store.SaveTrade(ctx, ghost); !errors.Is(err, tradebook.ErrNotFound) {
		t.Errorf("SaveTrade = %v, want ErrNotFound", err)
	}
}

func TestStore_TransactRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.CreatePosition(ctx, "AAPL", tradebook.Q(10), tradebook.P(100)); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := store.Transact(ctx, func(s tradebook.Store) error {
		if _, err := s.SavePosition(ctx, tradebook.Position{Ticker: "AAPL", Quantity: tradebook.Q(1), AvgPrice: tradebook.P(1)}); err != nil {
			return err
		}
		if _, err := s.CreateTrade(ctx, "AAPL", tradebook.Buy, tradebook.P(1), tradebook.Q(1)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact returned %v, want the callback error", err)
	}

	pos, err := store.FindPosition(ctx, "AAPL")
	if err != nil || pos == nil {
		t.Fatalf("FindPosition failed: %v, %v", pos, err)
	}
	if !pos.Quantity.Equal(tradebook.Q(10)) || !pos.AvgPrice.Equal(tradebook.P(100)) {
		t.Errorf("position = %s shares avg %s, want the pre-transaction 10 avg 100", pos.Quantity, pos.AvgPrice)
	}
	trades, _ := store.TradesByTicker(ctx, "AAPL")
	if len(trades) != 0 {
		t.Errorf("rolled-back trade still present: %v", trades)
	}
}

func TestStore_TransactCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.Transact(ctx, func(s tradebook.Store) error {
		if _, err := s.CreatePosition(ctx, "AAPL", tradebook.Q(10), tradebook.P(100)); err != nil {
			return err
		}
		_, err := s.CreateTrade(ctx, "AAPL", tradebook.Buy, tradebook.P(100), tradebook.Q(10))
		return err
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if pos, _ := store.FindPosition(ctx, "AAPL"); pos == nil {
		t.Error("committed position not found")
	}
	if trades, _ := store.TradesByTicker(ctx, "AAPL"); len(trades) != 1 {
		t.Errorf("committed trades = %v, want one", trades)
	}
}
