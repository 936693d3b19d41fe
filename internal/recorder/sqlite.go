package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"TickTrader/internal/model"
)

// SQLiteRecorder journals runs, snapshots, orders and valuations to SQLite.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the loop writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			mode       TEXT,
			source     TEXT,
			liquidate  INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			tick           INTEGER NOT NULL,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			ask_price      REAL,
			bid_price      REAL,
			mid_price      REAL,
			max_shares     INTEGER,
			long_shares    INTEGER,
			long_avg_cost  REAL,
			short_shares   INTEGER,
			short_avg_cost REAL,
			forecast       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id        TEXT PRIMARY KEY,
			run_id    TEXT NOT NULL,
			tick      INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			shares    INTEGER,
			price     REAL,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_ts ON orders(timestamp)`,

		`CREATE TABLE IF NOT EXISTS portfolio (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			kind         TEXT NOT NULL,
			tick         INTEGER,
			timestamp    INTEGER NOT NULL,
			cost         TEXT,
			profit       TEXT,
			stocks_total TEXT,
			cash         TEXT,
			net_worth    TEXT,
			positions    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_ts ON portfolio(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs (id, started_at, mode, source, liquidate) VALUES (?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Mode, run.Source, run.Liquidate,
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshots(runID string, tick int64, snaps []model.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO snapshots
		(run_id, tick, timestamp, symbol, ask_price, bid_price, mid_price, max_shares,
		 long_shares, long_avg_cost, short_shares, short_avg_cost, forecast)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range snaps {
		if _, err := stmt.Exec(runID, tick, s.Time.UnixMilli(), s.Symbol,
			s.AskPrice, s.BidPrice, s.MidPrice, s.MaxShares,
			s.LongShares, s.LongAvgCost, s.ShortShares, s.ShortAvgCost, s.Forecast,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordOrders(runID string, tick int64, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, o := range orders {
		var errText sql.NullString
		if o.Err != nil {
			errText = sql.NullString{String: o.Err.Error(), Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO orders
			(id, run_id, tick, timestamp, symbol, side, shares, price, error)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			o.ID, runID, tick, o.Time.UnixMilli(), o.Symbol, string(o.Side), o.Shares, o.Price, errText,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPortfolio(runID string, e *PortfolioEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := e.Time
	if at.IsZero() {
		at = time.Now()
	}
	s := e.Summary
	_, err := r.db.Exec(`INSERT INTO portfolio
		(run_id, kind, tick, timestamp, cost, profit, stocks_total, cash, net_worth, positions)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		runID, e.Kind, e.Tick, at.UnixMilli(),
		s.Cost.String(), s.Profit.String(), s.StocksTotal.String(), s.Cash.String(), s.NetWorth.String(),
		s.Positions,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
