package tradebook

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestPosition_ApplyBuy_WeightedAverage(t *testing.T) {
	type buy struct {
		price float64
		qty   int64
	}
	testCases := []struct {
		name    string
		buys    []buy
		wantQty int64
		wantAvg float64
	}{
		{
			name:    "single buy sets the average to the buy price",
			buys:    []buy{{price: 100, qty: 10}},
			wantQty: 10,
			wantAvg: 100,
		},
		{
			name:    "two equal quantities average the prices",
			buys:    []buy{{price: 100, qty: 10}, {price: 200, qty: 10}},
			wantQty: 20,
			wantAvg: 150,
		},
		{
			name:    "unequal quantities weight the mean",
			buys:    []buy{{price: 10, qty: 1}, {price: 40, qty: 3}},
			wantQty: 4,
			wantAvg: 32.5,
		},
		{
			name:    "three buys",
			buys:    []buy{{price: 50, qty: 2}, {price: 100, qty: 4}, {price: 20, qty: 4}},
			wantQty: 10,
			wantAvg: 58,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pos := Position{Ticker: "AAPL"}
			var err error
			for _, b := range tc.buys {
				pos, err = pos.ApplyBuy(P(b.price), Q(b.qty))
				if err != nil {
					t.Fatalf("ApplyBuy(%v, %v) failed: %v", b.price, b.qty, err)
				}
			}
			if !pos.Quantity.Equal(Q(tc.wantQty)) {
				t.Errorf("Quantity = %s, want %d", pos.Quantity, tc.wantQty)
			}
			if !pos.AvgPrice.Equal(P(tc.wantAvg)) {
				t.Errorf("AvgPrice = %s, want %v", pos.AvgPrice, tc.wantAvg)
			}
		})
	}
}

func TestPosition_ApplyBuy_Guards(t *testing.T) {
	pos := Position{Ticker: "AAPL"}
	if _, err := pos.ApplyBuy(P(100), Q(0)); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("zero quantity: got %v, want ErrInvalidTrade", err)
	}
	if _, err := pos.ApplyBuy(P(-1), Q(10)); !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("negative price: got %v, want ErrInvalidTrade", err)
	}
}

func TestPosition_ApplySell_KeepsAverage(t *testing.T) {
	pos, err := Position{Ticker: "AAPL"}.ApplyBuy(P(150), Q(20))
	if err != nil {
		t.Fatal(err)
	}

	sold, err := pos.ApplySell(Q(5))
	if err != nil {
		t.Fatalf("ApplySell(5) failed: %v", err)
	}
	if !sold.Quantity.Equal(Q(15)) {
		t.Errorf("Quantity = %s, want 15", sold.Quantity)
	}
	if !sold.AvgPrice.Equal(P(150)) {
		t.Errorf("AvgPrice = %s, want 150 (selling must not change the cost basis)", sold.AvgPrice)
	}
}

func TestPosition_ApplySell_ExhaustingResetsAverage(t *testing.T) {
	pos, _ := Position{Ticker: "AAPL"}.ApplyBuy(P(150), Q(20))
	zeroed, err := pos.ApplySell(Q(20))
	if err != nil {
		t.Fatal(err)
	}
	if !zeroed.Quantity.IsZero() {
		t.Errorf("Quantity = %s, want 0", zeroed.Quantity)
	}
	if !zeroed.AvgPrice.IsZero() {
		t.Errorf("AvgPrice = %s, want 0 on a zeroed position", zeroed.AvgPrice)
	}
}

func TestPosition_ApplySell_Insufficient(t *testing.T) {
	pos, _ := Position{Ticker: "AAPL"}.ApplyBuy(P(150), Q(20))
	if _, err := pos.ApplySell(Q(21)); !errors.Is(err, ErrInsufficientQuantity) {
		t.Errorf("got %v, want ErrInsufficientQuantity", err)
	}
}

// ReverseBuy must be the exact algebraic inverse of ApplyBuy: applying a buy
// and reversing it restores the position, for any position and any trade.
func TestPosition_ReverseBuy_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		before := Position{
			Ticker:   "AAPL",
			Quantity: Q(rng.Int63n(1000) + 1),
			AvgPrice: P(math.Round(rng.Float64()*100000) / 100),
		}
		trade := NewTrade("AAPL", Buy, P(math.Round(rng.Float64()*100000)/100), Q(rng.Int63n(500)+1))

		after, err := before.ApplyBuy(trade.Price, trade.Quantity)
		if err != nil {
			t.Fatalf("ApplyBuy failed: %v", err)
		}
		back, err := after.ReverseBuy(trade)
		if err != nil {
			t.Fatalf("ReverseBuy failed: %v", err)
		}

		if !back.Quantity.Equal(before.Quantity) {
			t.Fatalf("round trip quantity = %s, want %s", back.Quantity, before.Quantity)
		}
		if diff := math.Abs(back.AvgPrice.InexactFloat64() - before.AvgPrice.InexactFloat64()); diff > 1e-6 {
			t.Fatalf("round trip avg = %s, want %s (diff %g)", back.AvgPrice, before.AvgPrice, diff)
		}
	}
}

func TestPosition_ReverseBuy_ComputedAgainstCurrentState(t *testing.T) {
	// buy 10@100, buy 10@200, sell 5, then reverse the 10@200 buy. The
	// reversal works on the post-sell state: (150*15 - 200*10) / 5 = 50.
	pos, _ := Position{Ticker: "AAPL"}.ApplyBuy(P(100), Q(10))
	second := NewTrade("AAPL", Buy, P(200), Q(10))
	pos, _ = pos.ApplyBuy(second.Price, second.Quantity)
	pos, _ = pos.ApplySell(Q(5))

	reverted, err := pos.ReverseBuy(second)
	if err != nil {
		t.Fatal(err)
	}
	if !reverted.Quantity.Equal(Q(5)) {
		t.Errorf("Quantity = %s, want 5", reverted.Quantity)
	}
	if !reverted.AvgPrice.Equal(P(50)) {
		t.Errorf("AvgPrice = %s, want 50", reverted.AvgPrice)
	}
}

func TestPosition_ReverseBuy_Insufficient(t *testing.T) {
	// the position was sold below the level the reversal requires.
	pos, _ := Position{Ticker: "AAPL"}.ApplyBuy(P(100), Q(10))
	trade := NewTrade("AAPL", Buy, P(100), Q(10))
	pos, _ = pos.ApplyBuy(trade.Price, trade.Quantity)
	pos, _ = pos.ApplySell(Q(15))

	if _, err := pos.ReverseBuy(trade); !errors.Is(err, ErrInsufficientQuantity) {
		t.Errorf("got %v, want ErrInsufficientQuantity", err)
	}
}

func TestPosition_ReverseBuy_Exhausting(t *testing.T) {
	trade := NewTrade("AAPL", Buy, P(100), Q(10))
	pos, _ := Position{Ticker: "AAPL"}.ApplyBuy(trade.Price, trade.Quantity)

	reverted, err := pos.ReverseBuy(trade)
	if err != nil {
		t.Fatal(err)
	}
	if !reverted.Quantity.IsZero() || !reverted.AvgPrice.IsZero() {
		t.Errorf("reversing the only buy should zero the position, got %s shares avg %s", reverted.Quantity, reverted.AvgPrice)
	}
}

func TestPosition_ReverseSell(t *testing.T) {
	pos, _ := Position{Ticker: "AAPL"}.ApplyBuy(P(150), Q(20))
	pos, _ = pos.ApplySell(Q(5))

	back := pos.ReverseSell(NewTrade("AAPL", Sell, P(180), Q(5)))
	if !back.Quantity.Equal(Q(20)) {
		t.Errorf("Quantity = %s, want 20", back.Quantity)
	}
	if !back.AvgPrice.Equal(P(150)) {
		t.Errorf("AvgPrice = %s, want 150", back.AvgPrice)
	}
}
