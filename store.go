package tradebook

import "context"

// PositionStore persists one position record per ticker.
type PositionStore interface {
	// FindPosition returns the position for ticker, or nil when none exists.
	FindPosition(ctx context.Context, ticker string) (*Position, error)
	// CreatePosition creates the position record for a ticker seen for the
	// first time.
	CreatePosition(ctx context.Context, ticker string, quantity Quantity, avgPrice Price) (Position, error)
	// SavePosition upserts a position by its ticker key.
	SavePosition(ctx context.Context, p Position) (Position, error)
	// Positions returns every position record, zeroed ones included, in a
	// stable order.
	Positions(ctx context.Context) ([]Position, error)
}

// TradeStore persists individual trade records.
type TradeStore interface {
	// CreateTrade records a new trade and returns it with its assigned id.
	CreateTrade(ctx context.Context, ticker string, side Side, price Price, quantity Quantity) (Trade, error)
	// FindTrade returns the trade with the given id, or nil when unknown.
	FindTrade(ctx context.Context, id string) (*Trade, error)
	// SaveTrade updates an existing trade record by id.
	SaveTrade(ctx context.Context, t Trade) (Trade, error)
	// DeleteTrade removes the trade with the given id.
	DeleteTrade(ctx context.Context, id string) error
	// TradesByTicker returns all trades for a ticker in recording order.
	TradesByTicker(ctx context.Context, ticker string) ([]Trade, error)
}

// Store is the persistence collaborator the ledger works against.
//
// Transact runs fn against a store view whose writes all commit together, or
// not at all when fn returns an error. The ledger relies on this to keep the
// trade and position records consistent: a trade is never visible without its
// position update and vice versa.
type Store interface {
	PositionStore
	TradeStore
	Transact(ctx context.Context, fn func(Store) error) error
}
