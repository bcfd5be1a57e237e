package exchange

import (
	"fmt"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/portfolio"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// New creates an execution handler writing fills into the supplied portfolio
func New(p *portfolio.Portfolio, slippage, commission, impactLambda decimal.Decimal) (*Exchange, error) {
	if p == nil {
		return nil, errNilPortfolio
	}
	if slippage.IsNegative() || commission.IsNegative() || impactLambda.IsNegative() {
		return nil, errNegativeParams
	}
	return &Exchange{
		portfolio:    p,
		slippage:     slippage,
		commission:   commission,
		impactLambda: impactLambda,
	}, nil
}

// ResolveBook reads the bar's quote into a book. When either side of the
// quote is missing it falls back to a synthetic book pinned at the close with
// effectively infinite depth, so the impact penalty cannot fire on bars that
// never carried a real quote
func ResolveBook(bar *data.Bar) (Book, error) {
	if bar == nil {
		return Book{}, errNilBar
	}
	if bar.Bid.Valid && bar.Ask.Valid &&
		bar.Bid.Decimal.IsPositive() && bar.Ask.Decimal.IsPositive() {
		b := Book{
			Bid:     bar.Bid.Decimal,
			Ask:     bar.Ask.Decimal,
			BidSize: syntheticDepth,
			AskSize: syntheticDepth,
		}
		if bar.BidSize.Valid && bar.BidSize.Decimal.IsPositive() {
			b.BidSize = bar.BidSize.Decimal
		}
		if bar.AskSize.Valid && bar.AskSize.Decimal.IsPositive() {
			b.AskSize = bar.AskSize.Decimal
		}
		return b, nil
	}
	if !bar.Close.IsPositive() {
		return Book{}, fmt.Errorf("%w for %v at %v", ErrMalformedBar, bar.Symbol, bar.Timestamp)
	}
	depth := decimal.Max(bar.Volume, syntheticDepth)
	return Book{
		Bid:       bar.Close,
		Ask:       bar.Close,
		BidSize:   depth,
		AskSize:   depth,
		Synthetic: true,
	}, nil
}

// ExecuteOrder decides whether the order fills against the bar and at what
// price. MARKET orders always fill, with impact only worsening the price;
// LIMIT orders fill when the limit crosses the opposing quote and otherwise
// expire silently within the bar. On a fill the portfolio is updated and the
// flat commission deducted once
func (e *Exchange) ExecuteOrder(o *order.Order, bar *data.Bar) (bool, decimal.Decimal, error) {
	if o == nil {
		return false, decimal.Zero, errNilOrder
	}
	book, err := ResolveBook(bar)
	if err != nil {
		return false, decimal.Zero, err
	}

	var execPrice decimal.Decimal
	switch o.Type {
	case order.Market:
		execPrice = e.marketPrice(o, book)
	case order.Limit:
		var filled bool
		execPrice, filled = e.limitPrice(o, book)
		if !filled {
			log.Debugf(log.Execution, "limit %v %v %v@%v expired against bid %v ask %v",
				o.Side, o.Symbol, o.Qty, o.Price, book.Bid, book.Ask)
			return false, decimal.Zero, nil
		}
	default:
		return false, decimal.Zero, fmt.Errorf("%w: unhandled type %v", order.ErrInvalidOrder, o.Type)
	}

	ts := o.Timestamp
	if ts.IsZero() {
		ts = bar.Timestamp
	}
	rec, err := e.portfolio.ApplyFill(o.Symbol, o.Side, o.Qty, execPrice, ts)
	if err != nil {
		return false, decimal.Zero, err
	}
	e.portfolio.ApplyCommission(e.commission)

	log.Infof(log.Execution,
		"fill %v %v %v@%v book[bid=%v ask=%v bid_size=%v ask_size=%v synthetic=%v] position=%v avg=%v cash=%v",
		o.Side, o.Symbol, o.Qty, execPrice,
		book.Bid, book.Ask, book.BidSize, book.AskSize, book.Synthetic,
		rec.PositionAfter, rec.AvgPriceAfter, e.portfolio.Cash())
	return true, execPrice, nil
}

func (e *Exchange) marketPrice(o *order.Order, book Book) decimal.Decimal {
	if o.Side == order.Buy {
		base := book.Ask.Mul(one.Add(e.slippage))
		return base.Mul(one.Add(e.impact(o.Qty, book.AskSize)))
	}
	base := book.Bid.Mul(one.Sub(e.slippage))
	return base.Mul(one.Sub(e.impact(o.Qty, book.BidSize)))
}

func (e *Exchange) limitPrice(o *order.Order, book Book) (decimal.Decimal, bool) {
	if o.Side == order.Buy {
		if o.Price.LessThan(book.Bid) {
			return decimal.Zero, false
		}
		base := decimal.Min(o.Price, book.Ask).Mul(one.Add(e.slippage))
		return base.Mul(one.Add(e.impact(o.Qty, book.AskSize))), true
	}
	if o.Price.GreaterThan(book.Ask) {
		return decimal.Zero, false
	}
	base := decimal.Max(o.Price, book.Bid).Mul(one.Sub(e.slippage))
	return base.Mul(one.Sub(e.impact(o.Qty, book.BidSize))), true
}

// impact is the linear penalty on the slice of the order exceeding the
// quoted size: lambda x overflow / size
func (e *Exchange) impact(qty, availableSize decimal.Decimal) decimal.Decimal {
	overflow := qty.Sub(availableSize)
	if !overflow.IsPositive() {
		return decimal.Zero
	}
	return e.impactLambda.Mul(overflow).Div(decimal.Max(availableSize, one))
}
