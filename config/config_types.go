package config

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidConfig wraps every validation failure
	ErrInvalidConfig = errors.New("invalid config")

	errNoStrategy      = errors.New("no strategy name set")
	errNoData          = errors.New("no data settings provided")
	errSymbolUnset     = errors.New("data entry missing symbol")
	errFileUnset       = errors.New("data entry missing csv file")
	errDuplicateSymbol = errors.New("duplicate symbol in data settings")
	errNegativeCash    = errors.New("initial cash cannot be negative")
	errNegativeCosts   = errors.New("slippage, commission and impact lambda cannot be negative")
	errBadTimeFormat   = errors.New("time of day must be HH:MM or HH:MM:SS")
)

// StrategySettings names the strategy and carries its custom tuning values
type StrategySettings struct {
	Name           string         `json:"name" mapstructure:"name"`
	CustomSettings map[string]any `json:"custom-settings" mapstructure:"custom-settings"`
}

// DataSettings maps one symbol to its bar data file
type DataSettings struct {
	Symbol  string `json:"symbol" mapstructure:"symbol"`
	CSVFile string `json:"csv-file" mapstructure:"csv-file"`
}

// PortfolioSettings seeds the ledger
type PortfolioSettings struct {
	InitialCash  decimal.Decimal `json:"initial-cash" mapstructure:"initial-cash"`
	BaseCurrency string          `json:"base-currency" mapstructure:"base-currency"`
}

// ExecutionSettings holds the fill simulation cost parameters
type ExecutionSettings struct {
	Slippage     decimal.Decimal `json:"slippage" mapstructure:"slippage"`
	Commission   decimal.Decimal `json:"commission" mapstructure:"commission"`
	ImpactLambda decimal.Decimal `json:"impact-lambda" mapstructure:"impact-lambda"`
}

// SessionSettings controls the daily mark to market and close cycle.
// Times are wall-clock HH:MM or HH:MM:SS in the data's timezone
type SessionSettings struct {
	M2MTime         string `json:"m2m-time" mapstructure:"m2m-time"`
	MarketCloseTime string `json:"market-close-time" mapstructure:"market-close-time"`
	FlattenAtClose  bool   `json:"flatten-at-close" mapstructure:"flatten-at-close"`
}

// ReportSettings controls run output artefacts
type ReportSettings struct {
	OutputDir     string `json:"output-dir" mapstructure:"output-dir"`
	GenerateChart bool   `json:"generate-chart" mapstructure:"generate-chart"`
}

// StoreSettings controls optional result persistence
type StoreSettings struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Database string `json:"database" mapstructure:"database"`
}

// Config is the top level run configuration
type Config struct {
	Nickname  string            `json:"nickname" mapstructure:"nickname"`
	Strategy  StrategySettings  `json:"strategy" mapstructure:"strategy"`
	Data      []DataSettings    `json:"data" mapstructure:"data"`
	Portfolio PortfolioSettings `json:"portfolio" mapstructure:"portfolio"`
	Execution ExecutionSettings `json:"execution" mapstructure:"execution"`
	Session   SessionSettings   `json:"session" mapstructure:"session"`
	Report    ReportSettings    `json:"report" mapstructure:"report"`
	Store     StoreSettings     `json:"store" mapstructure:"store"`
}
