package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	nickname      TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	start_equity  REAL NOT NULL,
	end_equity    REAL NOT NULL,
	total_pnl     REAL NOT NULL,
	max_drawdown  REAL NOT NULL,
	sharpe_ratio  REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS fills (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	order_id  TEXT NOT NULL,
	symbol    TEXT NOT NULL,
	side      TEXT NOT NULL,
	qty       TEXT NOT NULL,
	price     TEXT NOT NULL,
	filled_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL REFERENCES runs(id),
	ts     TIMESTAMP NOT NULL,
	equity REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS daily_ledger (
	run_id TEXT NOT NULL REFERENCES runs(id),
	date   TIMESTAMP NOT NULL,
	ts     TIMESTAMP NOT NULL,
	equity TEXT NOT NULL,
	note   TEXT NOT NULL
);`

// Open opens or creates the sqlite results database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debugf(log.Store, "results database open at %v", path)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists one run and all of its rows atomically
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errNilRun
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, nickname, strategy, created_at, start_equity, end_equity, total_pnl, max_drawdown, sharpe_ratio)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Nickname, run.Strategy, run.CreatedAt,
		run.Results.Metrics.StartEquity, run.Results.Metrics.EndEquity,
		run.Results.Metrics.TotalPNL, run.Results.Metrics.MaxDrawdown,
		run.Results.Metrics.SharpeRatio)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i := range run.Results.FilledOrders {
		o := run.Results.FilledOrders[i]
		_, err = tx.ExecContext(ctx,
			`INSERT INTO fills (run_id, order_id, symbol, side, qty, price, filled_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, o.ID, o.Symbol, string(o.Side), o.Qty.String(), o.Price.String(), o.Timestamp)
		if err != nil {
			return fmt.Errorf("inserting fill %v: %w", o.ID, err)
		}
	}

	for i := range run.Results.Equity {
		if i >= len(run.Timeline) {
			break
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO equity (run_id, ts, equity) VALUES (?, ?, ?)`,
			run.ID, run.Timeline[i], run.Results.Equity[i])
		if err != nil {
			return fmt.Errorf("inserting equity row: %w", err)
		}
	}

	for i := range run.Results.DailyLedger {
		entry := run.Results.DailyLedger[i]
		_, err = tx.ExecContext(ctx,
			`INSERT INTO daily_ledger (run_id, date, ts, equity, note) VALUES (?, ?, ?, ?, ?)`,
			run.ID, entry.Date, entry.Timestamp, entry.Equity.String(), entry.Note)
		if err != nil {
			return fmt.Errorf("inserting ledger row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	log.Infof(log.Store, "run %v (%v) saved with %v fills",
		run.ID, run.Nickname, len(run.Results.FilledOrders))
	return nil
}

// Runs lists the persisted run headers, newest first
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nickname, strategy, created_at, start_equity, end_equity, total_pnl
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resp []RunSummary
	for rows.Next() {
		var r RunSummary
		var created time.Time
		if err = rows.Scan(&r.ID, &r.Nickname, &r.Strategy, &created,
			&r.StartEquity, &r.EndEquity, &r.TotalPNL); err != nil {
			return nil, err
		}
		r.CreatedAt = created
		resp = append(resp, r)
	}
	return resp, rows.Err()
}

// Fills returns the persisted fills for a run in insertion order
func (s *Store) Fills(ctx context.Context, runID string) ([]PersistedFill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, symbol, side, qty, price, filled_at FROM fills WHERE run_id = ?`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resp []PersistedFill
	for rows.Next() {
		var f PersistedFill
		if err = rows.Scan(&f.OrderID, &f.Symbol, &f.Side, &f.Qty, &f.Price, &f.FilledAt); err != nil {
			return nil, err
		}
		resp = append(resp, f)
	}
	return resp, rows.Err()
}
