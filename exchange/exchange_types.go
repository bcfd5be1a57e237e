package exchange

import (
	"errors"

	"github.com/antoninodiblasi/IBKR-Backtesting/portfolio"
	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedBar is returned when a bar carries no usable close price
	// and the synthetic book cannot be constructed
	ErrMalformedBar = errors.New("malformed bar: no price to build a book from")

	errNilPortfolio   = errors.New("portfolio cannot be nil")
	errNilOrder       = errors.New("order cannot be nil")
	errNilBar         = errors.New("bar cannot be nil")
	errNegativeParams = errors.New("slippage, commission and impact lambda cannot be negative")
)

// syntheticDepth is the book size assumed when a bar has no real quote; deep
// enough that the impact penalty never triggers on the fallback path
var syntheticDepth = decimal.NewFromInt(1000000000)

// Book is the two-sided quote an order is matched against. Synthetic marks a
// close-derived fallback built when the bar carried no real bid/ask
type Book struct {
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	BidSize   decimal.Decimal
	AskSize   decimal.Decimal
	Synthetic bool
}

// Exchange simulates order execution against historical bars, applying
// slippage, linear market impact and a flat per-order commission before
// handing the resulting fill to the portfolio
type Exchange struct {
	portfolio    *portfolio.Portfolio
	slippage     decimal.Decimal
	commission   decimal.Decimal
	impactLambda decimal.Decimal
}
