// Package sqlite provides the SQLite-backed trade and position store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/etnz/tradebook"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists trades and positions in a SQLite database. Prices and
// quantities are stored as their canonical decimal strings so no precision is
// lost in the round trip.
type Store struct {
	db *sql.DB
	q  querier
}

// Open opens (creating if needed) the database at dbPath and migrates the
// schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	// _txlock=immediate makes write transactions take the write lock up
	// front, so Transact serializes against concurrent writers.
	db, err := sql.Open("sqlite3", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL for better concurrency, busy timeout so writers queue instead of
	// failing immediately.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	s := &Store{db: db, q: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		side TEXT NOT NULL CHECK (side IN ('BUY', 'SELL')),
		price TEXT NOT NULL,
		quantity TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		seq INTEGER NOT NULL UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker);

	CREATE TABLE IF NOT EXISTS positions (
		ticker TEXT PRIMARY KEY,
		quantity TEXT NOT NULL,
		avg_price TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Transact runs fn against a view of the store bound to a single immediate
// transaction. The transaction commits only when fn returns nil.
func (s *Store) Transact(ctx context.Context, fn func(tradebook.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) FindPosition(ctx context.Context, ticker string) (*tradebook.Position, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT ticker, quantity, avg_price FROM positions WHERE ticker = ?`, ticker)
	p, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePosition(ctx context.Context, ticker string, quantity tradebook.Quantity, avgPrice tradebook.Price) (tradebook.Position, error) {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO positions (ticker, quantity, avg_price) VALUES (?, ?, ?)`,
		ticker, quantity.String(), avgPrice.String())
	if err != nil {
		return tradebook.Position{}, fmt.Errorf("create position %s: %w", ticker, err)
	}
	return tradebook.Position{Ticker: ticker, Quantity: quantity, AvgPrice: avgPrice}, nil
}

func (s *Store) SavePosition(ctx context.Context, p tradebook.Position) (tradebook.Position, error) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO positions (ticker, quantity, avg_price) VALUES (?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET quantity = excluded.quantity, avg_price = excluded.avg_price`,
		p.Ticker, p.Quantity.String(), p.AvgPrice.String())
	if err != nil {
		return tradebook.Position{}, fmt.Errorf("save position %s: %w", p.Ticker, err)
	}
	return p, nil
}

func (s *Store) Positions(ctx context.Context) ([]tradebook.Position, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT ticker, quantity, avg_price FROM positions ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []tradebook.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *Store) CreateTrade(ctx context.Context, ticker string, side tradebook.Side, price tradebook.Price, quantity tradebook.Quantity) (tradebook.Trade, error) {
	t := tradebook.NewTrade(ticker, side, price, quantity)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO trades (id, ticker, side, price, quantity, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM trades))`,
		t.ID, t.Ticker, string(t.Side), t.Price.String(), t.Quantity.String(), t.CreatedAt)
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("create trade: %w", err)
	}
	return t, nil
}

func (s *Store) FindTrade(ctx context.Context, id string) (*tradebook.Trade, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, ticker, side, price, quantity, created_at FROM trades WHERE id = ?`, id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) SaveTrade(ctx context.Context, t tradebook.Trade) (tradebook.Trade, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE trades SET ticker = ?, side = ?, price = ?, quantity = ? WHERE id = ?`,
		t.Ticker, string(t.Side), t.Price.String(), t.Quantity.String(), t.ID)
	if err != nil {
		return tradebook.Trade{}, fmt.Errorf("save trade %s: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tradebook.Trade{}, fmt.Errorf("trade %q: %w", t.ID, tradebook.ErrNotFound)
	}
	return t, nil
}

func (s *Store) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trade %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trade %q: %w", id, tradebook.ErrNotFound)
	}
	return nil
}

func (s *Store) TradesByTicker(ctx context.Context, ticker string) ([]tradebook.Trade, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, ticker, side, price, quantity, created_at
		FROM trades WHERE ticker = ? ORDER BY seq`, ticker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]tradebook.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(sc scanner) (tradebook.Position, error) {
	var ticker, quantity, avgPrice string
	if err := sc.Scan(&ticker, &quantity, &avgPrice); err != nil {
		return tradebook.Position{}, err
	}
	q, err := tradebook.ParseQuantity(quantity)
	if err != nil {
		return tradebook.Position{}, fmt.Errorf("position %s has corrupt quantity %q: %w", ticker, quantity, err)
	}
	p, err := tradebook.ParsePrice(avgPrice)
	if err != nil {
		return tradebook.Position{}, fmt.Errorf("position %s has corrupt avg price %q: %w", ticker, avgPrice, err)
	}
	return tradebook.Position{Ticker: ticker, Quantity: q, AvgPrice: p}, nil
}

func scanTrade(sc scanner) (tradebook.Trade, error) {
	var t tradebook.Trade
	var side, price, quantity string
	if err := sc.Scan(&t.ID, &t.Ticker, &side, &price, &quantity, &t.CreatedAt); err != nil {
		return tradebook.Trade{}, err
	}
	t.Side = tradebook.Side(side)
	var err error
	if t.Price, err = tradebook.ParsePrice(price); err != nil {
		return tradebook.Trade{}, fmt.Errorf("trade %s has corrupt price %q: %w", t.ID, price, err)
	}
	if t.Quantity, err = tradebook.ParseQuantity(quantity); err != nil {
		return tradebook.Trade{}, fmt.Errorf("trade %s has corrupt quantity %q: %w", t.ID, quantity, err)
	}
	return t, nil
}
