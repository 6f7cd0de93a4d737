package tradebook

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Ledger owns the rules for turning a stream of trade events into the current
// holdings aggregate per ticker. It loads state from a Store, computes the new
// position with the Position arithmetic, and persists position and trade
// together inside one store transaction.
//
// Mutations of the same ticker are serialized with a per-ticker lock held
// across the whole load-compute-persist sequence, so two simultaneous trades
// against one ticker cannot overwrite each other's result.
type Ledger struct {
	store Store

	mu      sync.Mutex
	tickers map[string]*sync.Mutex
}

// NewLedger creates a ledger backed by the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{
		store:   store,
		tickers: make(map[string]*sync.Mutex),
	}
}

// lock acquires the per-ticker locks for every named ticker, in sorted order
// so two operations touching the same pair cannot deadlock. It returns the
// matching unlock function.
func (l *Ledger) lock(tickers ...string) (unlock func()) {
	slices.Sort(tickers)
	tickers = slices.Compact(tickers)

	locked := make([]*sync.Mutex, 0, len(tickers))
	for _, ticker := range tickers {
		l.mu.Lock()
		m, ok := l.tickers[ticker]
		if !ok {
			m = new(sync.Mutex)
			l.tickers[ticker] = m
		}
		l.mu.Unlock()
		m.Lock()
		locked = append(locked, m)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// RecordTrade applies a new trade to the ticker's position and records it.
//
// The first buy for a ticker creates its position. A sell against no position,
// or for more shares than held, fails with ErrInsufficientQuantity and leaves
// everything untouched.
func (l *Ledger) RecordTrade(ctx context.Context, ticker string, side Side, price Price, quantity Quantity) (Position, Trade, error) {
	proto := Trade{Ticker: ticker, Side: side, Price: price, Quantity: quantity}
	if err := proto.Validate(); err != nil {
		return Position{}, Trade{}, err
	}

	unlock := l.lock(ticker)
	defer unlock()

	var pos Position
	var trade Trade
	err := l.store.Transact(ctx, func(s Store) error {
		existing, err := s.FindPosition(ctx, ticker)
		if err != nil {
			return err
		}

		switch {
		case existing == nil && side == Sell:
			// Cannot short: there is nothing to sell against.
			return fmt.Errorf("cannot sell %s: %w", ticker, ErrInsufficientQuantity)
		case existing == nil:
			created, err := Position{Ticker: ticker}.ApplyBuy(price, quantity)
			if err != nil {
				return err
			}
			pos, err = s.CreatePosition(ctx, ticker, created.Quantity, created.AvgPrice)
			if err != nil {
				return err
			}
		default:
			next, err := existing.apply(proto)
			if err != nil {
				return err
			}
			pos, err = s.SavePosition(ctx, next)
			if err != nil {
				return err
			}
		}

		trade, err = s.CreateTrade(ctx, ticker, side, price, quantity)
		return err
	})
	if err != nil {
		return Position{}, Trade{}, err
	}
	return pos, trade, nil
}

// lockTrade acquires the lock for the trade's ticker (and any extra tickers)
// and returns the trade as it stands under that lock. The ticker has to be
// learned before locking, so it is re-read afterwards and the lock retried
// when a concurrent update moved the trade to another ticker in between.
func (l *Ledger) lockTrade(ctx context.Context, id string, extra ...string) (Trade, func(), error) {
	for {
		known, err := l.store.FindTrade(ctx, id)
		if err != nil {
			return Trade{}, nil, err
		}
		if known == nil {
			return Trade{}, nil, fmt.Errorf("trade %q: %w", id, ErrNotFound)
		}

		unlock := l.lock(append([]string{known.Ticker}, extra...)...)
		current, err := l.store.FindTrade(ctx, id)
		if err != nil {
			unlock()
			return Trade{}, nil, err
		}
		if current == nil {
			unlock()
			return Trade{}, nil, fmt.Errorf("trade %q: %w", id, ErrNotFound)
		}
		if current.Ticker == known.Ticker {
			return *current, unlock, nil
		}
		unlock()
	}
}

// RemoveTrade reverses the effect a recorded trade had on its position, then
// deletes the trade record. The reversal is computed against the position's
// current state, not against the state at recording time; removing trades out
// of order therefore compounds in recording order (see ReverseBuy).
func (l *Ledger) RemoveTrade(ctx context.Context, id string) (Position, error) {
	trade, unlock, err := l.lockTrade(ctx, id)
	if err != nil {
		return Position{}, err
	}
	defer unlock()

	var pos Position
	err = l.store.Transact(ctx, func(s Store) error {
		existing, err := s.FindPosition(ctx, trade.Ticker)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("position for %s: %w", trade.Ticker, ErrNotFound)
		}
		reverted, err := existing.reverse(trade)
		if err != nil {
			return err
		}
		if pos, err = s.SavePosition(ctx, reverted); err != nil {
			return err
		}
		return s.DeleteTrade(ctx, id)
	})
	if err != nil {
		return Position{}, err
	}
	return pos, nil
}

// UpdateTrade replaces a recorded trade's parameters: the old trade's effect
// is reversed off its position and the new parameters are applied, against
// the same position or against the new ticker's position when the ticker
// changed.
//
// Both deltas are computed on in-memory copies first; nothing is written
// until the re-application has validated against the post-reversal state.
// Any failure leaves positions and the trade record exactly as they were.
func (l *Ledger) UpdateTrade(ctx context.Context, id, ticker string, side Side, price Price, quantity Quantity) (Trade, error) {
	proto := Trade{Ticker: ticker, Side: side, Price: price, Quantity: quantity}
	if err := proto.Validate(); err != nil {
		return Trade{}, err
	}

	trade, unlock, err := l.lockTrade(ctx, id, ticker)
	if err != nil {
		return Trade{}, err
	}
	defer unlock()

	var updated Trade
	err = l.store.Transact(ctx, func(s Store) error {
		oldPos, err := s.FindPosition(ctx, trade.Ticker)
		if err != nil {
			return err
		}
		if oldPos == nil {
			return fmt.Errorf("position for %s: %w", trade.Ticker, ErrNotFound)
		}

		// Undo delta: the old trade reversed off its position.
		reverted, err := oldPos.reverse(trade)
		if err != nil {
			return err
		}

		// Redo delta: the new parameters applied to the target position as it
		// would stand after the reversal.
		sameTicker := ticker == trade.Ticker
		var target *Position
		if sameTicker {
			target = &reverted
		} else if target, err = s.FindPosition(ctx, ticker); err != nil {
			return err
		}

		var applied Position
		createTarget := false
		switch {
		case target == nil && side == Sell:
			return fmt.Errorf("cannot sell %s: %w", ticker, ErrInsufficientQuantity)
		case target == nil:
			createTarget = true
			if applied, err = (Position{Ticker: ticker}).ApplyBuy(price, quantity); err != nil {
				return err
			}
		default:
			if applied, err = target.apply(proto); err != nil {
				return err
			}
		}

		// Both deltas validated: commit the writes.
		if !sameTicker {
			if _, err := s.SavePosition(ctx, reverted); err != nil {
				return err
			}
		}
		if createTarget {
			if _, err := s.CreatePosition(ctx, ticker, applied.Quantity, applied.AvgPrice); err != nil {
				return err
			}
		} else if _, err := s.SavePosition(ctx, applied); err != nil {
			return err
		}

		trade.Ticker = ticker
		trade.Side = side
		trade.Price = price
		trade.Quantity = quantity
		updated, err = s.SaveTrade(ctx, trade)
		return err
	})
	if err != nil {
		return Trade{}, err
	}
	return updated, nil
}

// Holdings returns every position record in the book.
func (l *Ledger) Holdings(ctx context.Context) ([]Position, error) {
	return l.store.Positions(ctx)
}
