package portfolio

import (
	"errors"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/shopspring/decimal"
)

var (
	errNegativeInitialCash = errors.New("initial cash cannot be negative")
	errQtyNotPositive      = errors.New("fill qty must be positive")
	errPriceNotPositive    = errors.New("fill price must be positive")
	errUnknownSide         = errors.New("fill side must be BUY or SELL")
	errSymbolEmpty         = errors.New("fill symbol cannot be empty")
)

// Position is the net holding state for one symbol. Qty is signed, long
// positive and short negative. AvgPrice is the cost basis of the currently
// open quantity and is zero exactly while the position is flat
type Position struct {
	Qty         decimal.Decimal
	AvgPrice    decimal.Decimal
	RealizedPNL decimal.Decimal
}

// FillRecord is one immutable row of the portfolio's audit history capturing
// the post-fill state
type FillRecord struct {
	Timestamp     time.Time       `json:"timestamp"`
	Symbol        string          `json:"symbol"`
	Side          order.Side      `json:"side"`
	Qty           decimal.Decimal `json:"qty"`
	Price         decimal.Decimal `json:"price"`
	CashAfter     decimal.Decimal `json:"cash-after"`
	PositionAfter decimal.Decimal `json:"position-after"`
	AvgPriceAfter decimal.Decimal `json:"avg-price-after"`
	RealizedDelta decimal.Decimal `json:"realized-delta"`
	RealizedTotal decimal.Decimal `json:"realized-total"`
}

// Snapshot is a derived, immutable view of the portfolio at one instant.
// Equity only counts symbols present in the price map supplied when the
// snapshot was taken
type Snapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Equity    decimal.Decimal     `json:"equity"`
	Cash      decimal.Decimal     `json:"cash"`
	Positions map[string]Position `json:"positions"`
}

// Portfolio owns the cash and position ledger for a run. It is mutated only
// through ApplyFill and ApplyCommission; every fill appends a history record
type Portfolio struct {
	cash         decimal.Decimal
	baseCurrency string
	positions    map[string]*Position
	history      []FillRecord
}
