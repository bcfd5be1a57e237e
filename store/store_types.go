package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/engine"
)

var (
	errEmptyPath = errors.New("database path cannot be empty")
	errNilRun    = errors.New("run is nil")
)

// Run bundles a completed backtest for persistence
type Run struct {
	ID        string
	Nickname  string
	Strategy  string
	CreatedAt time.Time
	Timeline  []time.Time
	Results   engine.Results
}

// RunSummary is the persisted header of one run
type RunSummary struct {
	ID          string
	Nickname    string
	Strategy    string
	CreatedAt   time.Time
	StartEquity float64
	EndEquity   float64
	TotalPNL    float64
}

// PersistedFill is one fill row read back from the database
type PersistedFill struct {
	OrderID  string
	Symbol   string
	Side     string
	Qty      string
	Price    string
	FilledAt time.Time
}

// Store persists run results to a sqlite database
type Store struct {
	db *sql.DB
}
