package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fxsim/lbgo/types"
)

// SQLiteStore keeps bars in a local SQLite file, one row per bar, keyed
// by symbol and timestamp. Useful for repeated optimization runs over
// the same history without re-parsing CSVs.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) the store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening bar store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS bars (
		symbol    TEXT    NOT NULL,
		ts        INTEGER NOT NULL,
		open      REAL    NOT NULL,
		high      REAL    NOT NULL,
		low       REAL    NOT NULL,
		close     REAL    NOT NULL,
		volume    REAL    NOT NULL DEFAULT 0,
		PRIMARY KEY (symbol, ts)
	);
	CREATE INDEX IF NOT EXISTS idx_bars_symbol_ts ON bars(symbol, ts);
	`)
	if err != nil {
		return fmt.Errorf("initializing bar store schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveBars upserts the bars for symbol inside one transaction.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []types.Bar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Time.UTC().Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("saving bar %s: %w", b.Time, err)
		}
	}
	return tx.Commit()
}

// SQLiteSource adapts a stored symbol to the BarSource contract.
type SQLiteSource struct {
	Store  *SQLiteStore
	Symbol string
	// From/To bound the query when non-zero.
	From, To time.Time
}

func (s *SQLiteSource) Bars(ctx context.Context) ([]types.Bar, error) {
	q := `SELECT ts, open, high, low, close, volume FROM bars WHERE symbol = ?`
	args := []any{s.Symbol}
	if !s.From.IsZero() {
		q += ` AND ts >= ?`
		args = append(args, s.From.UTC().Unix())
	}
	if !s.To.IsZero() {
		q += ` AND ts <= ?`
		args = append(args, s.To.UTC().Unix())
	}
	q += ` ORDER BY ts ASC`

	rows, err := s.Store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bars for %s: %w", s.Symbol, err)
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		var ts int64
		var b types.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Time = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
