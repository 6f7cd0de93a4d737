package tradebook

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is a Store kept entirely in process memory. It backs the unit
// tests and serves as a throwaway backend when no database is configured.
type MemoryStore struct {
	mu        sync.Mutex
	positions map[string]Position
	trades    map[string]Trade
	order     map[string]int // recording order of trades, by id
	seq       int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions: make(map[string]Position),
		trades:    make(map[string]Trade),
		order:     make(map[string]int),
	}
}

func (m *MemoryStore) FindPosition(_ context.Context, ticker string) (*Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findPosition(ticker), nil
}

func (m *MemoryStore) findPosition(ticker string) *Position {
	p, ok := m.positions[ticker]
	if !ok {
		return nil
	}
	return &p
}

func (m *MemoryStore) CreatePosition(_ context.Context, ticker string, quantity Quantity, avgPrice Price) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPosition(ticker, quantity, avgPrice)
}

func (m *MemoryStore) createPosition(ticker string, quantity Quantity, avgPrice Price) (Position, error) {
	if _, ok := m.positions[ticker]; ok {
		return Position{}, fmt.Errorf("position for %s already exists", ticker)
	}
	p := Position{Ticker: ticker, Quantity: quantity, AvgPrice: avgPrice}
	m.positions[ticker] = p
	return p, nil
}

func (m *MemoryStore) SavePosition(_ context.Context, p Position) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.Ticker] = p
	return p, nil
}

func (m *MemoryStore) Positions(_ context.Context) ([]Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tickers := slices.Sorted(maps.Keys(m.positions))
	out := make([]Position, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, m.positions[t])
	}
	return out, nil
}

func (m *MemoryStore) CreateTrade(_ context.Context, ticker string, side Side, price Price, quantity Quantity) (Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := NewTrade(ticker, side, price, quantity)
	m.trades[t.ID] = t
	m.seq++
	m.order[t.ID] = m.seq
	return t, nil
}

func (m *MemoryStore) FindTrade(_ context.Context, id string) (*Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStore) SaveTrade(_ context.Context, t Trade) (Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[t.ID]; !ok {
		return Trade{}, fmt.Errorf("trade %q: %w", t.ID, ErrNotFound)
	}
	m.trades[t.ID] = t
	return t, nil
}

func (m *MemoryStore) DeleteTrade(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[id]; !ok {
		return fmt.Errorf("trade %q: %w", id, ErrNotFound)
	}
	delete(m.trades, id)
	delete(m.order, id)
	return nil
}

func (m *MemoryStore) TradesByTicker(_ context.Context, ticker string) ([]Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Trade, 0)
	for _, t := range m.trades {
		if t.Ticker == ticker {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b Trade) int { return m.order[a.ID] - m.order[b.ID] })
	return out, nil
}

// Transact runs fn against a transaction view that journals each key before
// writing it. On error the journal is replayed in reverse, restoring only the
// keys this transaction touched, so a concurrent transaction committing on
// other keys is not disturbed by the rollback.
func (m *MemoryStore) Transact(_ context.Context, fn func(Store) error) error {
	tx := &memTx{store: m}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memTx is the in-memory transaction view: reads pass through to the store,
// writes record an undo entry for the touched key first.
type memTx struct {
	store *MemoryStore
	undo  []func(*MemoryStore)
}

func (tx *memTx) rollback() {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i](m)
	}
}

// notePosition journals the current value under ticker. Caller holds the
// store mutex.
func (tx *memTx) notePosition(ticker string) {
	if p, ok := tx.store.positions[ticker]; ok {
		tx.undo = append(tx.undo, func(m *MemoryStore) { m.positions[ticker] = p })
	} else {
		tx.undo = append(tx.undo, func(m *MemoryStore) { delete(m.positions, ticker) })
	}
}

// noteTrade journals the current trade record under id. Caller holds the
// store mutex. The seq counter is never rolled back; like a database
// sequence, it only grows.
func (tx *memTx) noteTrade(id string) {
	if t, ok := tx.store.trades[id]; ok {
		ord := tx.store.order[id]
		tx.undo = append(tx.undo, func(m *MemoryStore) {
			m.trades[id] = t
			m.order[id] = ord
		})
	} else {
		tx.undo = append(tx.undo, func(m *MemoryStore) {
			delete(m.trades, id)
			delete(m.order, id)
		})
	}
}

func (tx *memTx) FindPosition(ctx context.Context, ticker string) (*Position, error) {
	return tx.store.FindPosition(ctx, ticker)
}

func (tx *memTx) Positions(ctx context.Context) ([]Position, error) {
	return tx.store.Positions(ctx)
}

func (tx *memTx) FindTrade(ctx context.Context, id string) (*Trade, error) {
	return tx.store.FindTrade(ctx, id)
}

func (tx *memTx) TradesByTicker(ctx context.Context, ticker string) ([]Trade, error) {
	return tx.store.TradesByTicker(ctx, ticker)
}

func (tx *memTx) CreatePosition(_ context.Context, ticker string, quantity Quantity, avgPrice Price) (Position, error) {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.notePosition(ticker)
	return m.createPosition(ticker, quantity, avgPrice)
}

func (tx *memTx) SavePosition(_ context.Context, p Position) (Position, error) {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.notePosition(p.Ticker)
	m.positions[p.Ticker] = p
	return p, nil
}

func (tx *memTx) CreateTrade(_ context.Context, ticker string, side Side, price Price, quantity Quantity) (Trade, error) {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()
	t := NewTrade(ticker, side, price, quantity)
	tx.noteTrade(t.ID)
	m.trades[t.ID] = t
	m.seq++
	m.order[t.ID] = m.seq
	return t, nil
}

func (tx *memTx) SaveTrade(_ context.Context, t Trade) (Trade, error) {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[t.ID]; !ok {
		return Trade{}, fmt.Errorf("trade %q: %w", t.ID, ErrNotFound)
	}
	tx.noteTrade(t.ID)
	m.trades[t.ID] = t
	return t, nil
}

func (tx *memTx) DeleteTrade(_ context.Context, id string) error {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[id]; !ok {
		return fmt.Errorf("trade %q: %w", id, ErrNotFound)
	}
	tx.noteTrade(id)
	delete(m.trades, id)
	delete(m.order, id)
	return nil
}

// A nested Transact joins the same journal.
func (tx *memTx) Transact(_ context.Context, fn func(Store) error) error {
	return fn(tx)
}
