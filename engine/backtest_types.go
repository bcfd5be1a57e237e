package engine

import (
	"errors"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/exchange"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/portfolio"
	"github.com/antoninodiblasi/IBKR-Backtesting/statistics"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies"
	"github.com/shopspring/decimal"
)

var (
	errNilStrategy  = errors.New("strategy handler is nil")
	errNilData      = errors.New("data handler is nil")
	errNilExchange  = errors.New("exchange is nil")
	errNilPortfolio = errors.New("portfolio is nil")
	errBadTimeOfDay = errors.New("time of day must be within a single day")
)

// Daily ledger notes
const (
	noteM2M        = "m2m"
	noteM2MAtClose = "m2m_at_close"
	noteClose      = "close"
)

// DailyEntry is one row of the daily ledger
type DailyEntry struct {
	Date      time.Time       `json:"date"`
	Timestamp time.Time       `json:"timestamp"`
	Equity    decimal.Decimal `json:"equity"`
	Note      string          `json:"note"`
}

// Settings holds the per-run execution parameters
type Settings struct {
	M2MTime        time.Duration
	CloseTime      time.Duration
	FlattenAtClose bool
}

// Results is everything a completed run hands to reporting
type Results struct {
	Equity       []float64          `json:"equity"`
	Metrics      statistics.Metrics `json:"metrics"`
	FilledOrders []*order.Order     `json:"filled-orders"`
	DailyLedger  []DailyEntry       `json:"daily-ledger"`
}

// BackTest drives a single replay over aligned bar data. State accumulated
// during a run is only reset by constructing a new instance
type BackTest struct {
	strategy  strategies.Handler
	data      *data.Handler
	exchange  *exchange.Exchange
	portfolio *portfolio.Portfolio
	settings  Settings

	filledOrders []*order.Order
	equityCurve  []portfolio.Snapshot
	dailyLedger  []DailyEntry
	m2mDone      map[string]bool
	closeDone    map[string]bool
}
