// Package sqlite is a file-backed price store on modernc.org/sqlite (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stockingest/internal/apperr"
	"stockingest/internal/pricebar"
	"stockingest/pkg/storage/queries"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Report values are REAL in SQLite; they are rounded to this many places on read.
const priceScale = 6

const schema = `CREATE TABLE IF NOT EXISTS stock_data (
	date    TEXT    NOT NULL,
	company TEXT    NOT NULL,
	open    REAL    NOT NULL,
	high    REAL    NOT NULL,
	low     REAL    NOT NULL,
	close   REAL    NOT NULL,
	volume  INTEGER NOT NULL CHECK (volume >= 0),
	PRIMARY KEY (date, company)
)`

// Store persists price bars to a SQLite database file.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and checks it is reachable.
// The schema is not created here; call EnsureSchema.
func NewStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.StoreUnavailable("sqlite.open", err, "open %s", path)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperr.StoreUnavailable("sqlite.open", err, "ping %s", path)
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, classify("sqlite.open", err)
		}
	}

	return &Store{db: db, path: path}, nil
}

// EnsureSchema creates stock_data when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return classify("sqlite.ensure_schema", err)
	}
	return nil
}

func upsertStatement() string {
	set := make([]string, len(queries.UpsertColumns))
	for i, c := range queries.UpsertColumns {
		set[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return `INSERT INTO stock_data (date, company, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT (date, company) DO UPDATE SET ` + strings.Join(set, ", ")
}

// Upsert writes bars in one transaction, overwriting rows with the same
// (date, company). On any failure nothing from the call is kept.
func (s *Store) Upsert(ctx context.Context, bars []pricebar.PriceBar) (err error) {
	bars = pricebar.Dedupe(bars)
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("sqlite.upsert", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertStatement())
	if err != nil {
		return classify("sqlite.upsert", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err = stmt.ExecContext(ctx,
			b.Date.Format(pricebar.DateLayout), b.Symbol,
			b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return apperr.WithSymbol(classify("sqlite.upsert", err), b.Symbol)
		}
	}

	if err = tx.Commit(); err != nil {
		return classify("sqlite.upsert", err)
	}
	return nil
}

// Get returns the stored bar for symbol on date, or nil if there is none.
func (s *Store) Get(ctx context.Context, symbol string, date time.Time) (*pricebar.PriceBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		b       pricebar.PriceBar
		dateStr string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT date, company, open, high, low, close, volume
		 FROM stock_data WHERE company = ? AND date = ?`,
		symbol, date.Format(pricebar.DateLayout),
	).Scan(&dateStr, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("sqlite.get", err)
	}

	if b.Date, err = time.Parse(pricebar.DateLayout, dateStr); err != nil {
		return nil, apperr.Parse("sqlite.get", err, "stored date %q", dateStr)
	}
	return &b, nil
}

// Count returns the number of rows stored for symbol.
func (s *Store) Count(ctx context.Context, symbol string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_data WHERE company = ?`, symbol).Scan(&n)
	if err != nil {
		return 0, classify("sqlite.count", err)
	}
	return n, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(priceScale)
}
