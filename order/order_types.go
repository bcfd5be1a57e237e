package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidOrder is returned when an order cannot be constructed from the
// supplied parameters. All construction failures wrap this error
var ErrInvalidOrder = errors.New("invalid order")

var (
	errUnknownSide     = errors.New("side must be BUY or SELL")
	errUnknownType     = errors.New("order type must be MARKET or LIMIT")
	errQtyNotPositive  = errors.New("qty must be positive")
	errLimitPriceUnset = errors.New("limit order requires a price")
	errSymbolEmpty     = errors.New("symbol cannot be empty")
)

// Side is the direction of an order
type Side string

// Supported sides
const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Type describes how an order is to be matched against a bar
type Type string

// Supported order types
const (
	Market Type = "MARKET"
	Limit  Type = "LIMIT"
)

// Order is the command object a strategy hands to the execution handler.
// It is consumed exactly once; Price and Timestamp are stamped by the engine
// after a fill for audit purposes
type Order struct {
	ID        string
	Symbol    string
	Side      Side
	Type      Type
	Qty       decimal.Decimal
	Price     decimal.Decimal
	Timestamp time.Time
}
