package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoObservations is returned when metrics are requested over an empty
	// equity series
	ErrNoObservations = errors.New("no equity observations")

	errEmptyTimeline = errors.New("timeline is empty")
)

const (
	tradingDaysPerYear = 252
	// epsilon keeps the Sharpe denominator away from zero on flat series
	epsilon = 1e-12
)

// Point is a single equity observation taken during a run
type Point struct {
	Timestamp time.Time
	Equity    decimal.Decimal
}

// Metrics summarises a completed run
type Metrics struct {
	StartEquity  float64 `json:"start-equity"`
	EndEquity    float64 `json:"end-equity"`
	TotalPNL     float64 `json:"total-pnl"`
	ReturnPct    float64 `json:"return-pct"`
	MaxDrawdown  float64 `json:"max-drawdown"`
	SharpeRatio  float64 `json:"sharpe-ratio"`
	Observations int     `json:"observations"`
}
