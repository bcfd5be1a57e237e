package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoBars is returned when a handler is created without any market data
	ErrNoBars = errors.New("no bars supplied")
	// ErrSymbolEmpty is returned when bar data is keyed on an empty symbol
	ErrSymbolEmpty = errors.New("symbol cannot be empty")
)

// Bar is a single read-only market data observation for one symbol at one
// timestamp. Open, high, low, close and volume are always expected; a zero
// price field is treated as missing. The book fields and mid are optional
// and only considered when their Valid flag is set
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	Bid       decimal.NullDecimal
	Ask       decimal.NullDecimal
	BidSize   decimal.NullDecimal
	AskSize   decimal.NullDecimal
	Mid       decimal.NullDecimal
}

// Handler owns the per-symbol bar series for a run and exposes them as one
// timestamp-aligned timeline. Symbols are not required to share timestamps;
// a timestamp with no bar for a symbol simply omits that symbol from the view
type Handler struct {
	bars     map[string][]Bar
	timeline []time.Time
	views    map[int64]map[string]Bar
}
