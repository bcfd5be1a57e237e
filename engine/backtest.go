package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/exchange"
	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/portfolio"
	"github.com/antoninodiblasi/IBKR-Backtesting/statistics"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies"
	"github.com/shopspring/decimal"
)

// New creates a backtest over the supplied collaborators
func New(s strategies.Handler, d *data.Handler, e *exchange.Exchange, p *portfolio.Portfolio, settings Settings) (*BackTest, error) {
	switch {
	case s == nil:
		return nil, errNilStrategy
	case d == nil:
		return nil, errNilData
	case e == nil:
		return nil, errNilExchange
	case p == nil:
		return nil, errNilPortfolio
	}
	if settings.M2MTime < 0 || settings.M2MTime >= 24*time.Hour ||
		settings.CloseTime < 0 || settings.CloseTime >= 24*time.Hour {
		return nil, errBadTimeOfDay
	}
	return &BackTest{
		strategy:  s,
		data:      d,
		exchange:  e,
		portfolio: p,
		settings:  settings,
		m2mDone:   make(map[string]bool),
		closeDone: make(map[string]bool),
	}, nil
}

// Run replays the aligned bar timeline from start to finish. An empty
// dataset is a clean no-op
func (b *BackTest) Run() error {
	timeline := b.data.Timeline()
	if len(timeline) == 0 {
		log.Infoln(log.Engine, "no bars to process, nothing to do")
		return nil
	}

	log.Infof(log.Engine, "starting run: strategy %v, %v symbols, %v timestamps",
		b.strategy.Name(), len(b.data.Symbols()), len(timeline))

	// opening equity before any strategy involvement
	first := b.data.View(timeline[0])
	b.snapshot(markPrices(first), timeline[0])

	var prevTS time.Time
	var prevView map[string]data.Bar
	for i := range timeline {
		ts := timeline[i]
		view := b.data.View(ts)

		// a date can run out of bars before reaching the close trigger;
		// force its close sequence from its last bar before moving on
		if i > 0 && dateKey(ts) != dateKey(prevTS) && !b.closeDone[dateKey(prevTS)] {
			b.closeDay(prevTS, prevView, b.snapshot(markPrices(prevView), prevTS))
		}

		b.processBar(ts, view)
		snap := b.snapshot(markPrices(view), ts)
		b.checkDailyTriggers(ts, view, snap)
		prevTS, prevView = ts, view
	}

	// the final date may never reach the close trigger; force it from the
	// last available bar
	last := timeline[len(timeline)-1]
	if !b.closeDone[dateKey(last)] {
		view := b.data.View(last)
		snap := b.snapshot(markPrices(view), last)
		b.closeDay(last, view, snap)
	}

	log.Infof(log.Engine, "run complete: %v fills, final cash %v",
		len(b.filledOrders), b.portfolio.Cash())
	return nil
}

func (b *BackTest) processBar(ts time.Time, view map[string]data.Bar) {
	orders, err := b.strategy.OnBar(view)
	if err != nil {
		log.Warnf(log.StrategyMgr, "strategy %v failed at %v, skipping bar: %v",
			b.strategy.Name(), ts, err)
		return
	}
	for i := range orders {
		b.routeOrder(orders[i], ts, view)
	}
}

// routeOrder forwards one order to the exchange against its symbol's bar at
// this instant. Orders for symbols with no bar are dropped, never deferred
func (b *BackTest) routeOrder(o *order.Order, ts time.Time, view map[string]data.Bar) {
	if o == nil {
		return
	}
	bar, ok := view[o.Symbol]
	if !ok {
		log.Debugf(log.Engine, "dropping order %v: no bar for %v at %v", o.ID, o.Symbol, ts)
		return
	}
	filled, price, err := b.exchange.ExecuteOrder(o, &bar)
	if err != nil {
		if errors.Is(err, exchange.ErrMalformedBar) {
			log.Warnf(log.Engine, "cannot price %v at %v: %v", o.Symbol, ts, err)
			return
		}
		log.Errorf(log.Engine, "order %v rejected: %v", o.ID, err)
		return
	}
	if !filled {
		return
	}
	o.Stamp(price, ts)
	b.filledOrders = append(b.filledOrders, o)
}

func (b *BackTest) snapshot(prices map[string]decimal.Decimal, ts time.Time) portfolio.Snapshot {
	snap := b.portfolio.Snapshot(prices, ts)
	b.equityCurve = append(b.equityCurve, snap)
	return snap
}

func (b *BackTest) checkDailyTriggers(ts time.Time, view map[string]data.Bar, snap portfolio.Snapshot) {
	date := dateKey(ts)
	tod := timeOfDay(ts)

	if !b.m2mDone[date] && tod >= b.settings.M2MTime {
		b.m2mDone[date] = true
		m2mSnap := b.snapshot(markPrices(view), ts)
		b.appendLedger(ts, m2mSnap.Equity, noteM2M)
	}
	if !b.closeDone[date] && tod >= b.settings.CloseTime {
		b.closeDay(ts, view, snap)
	}
}

// closeDay runs the once-per-date close sequence: flatten residual positions
// if configured, catch up a missed mark to market, then record the close row
func (b *BackTest) closeDay(ts time.Time, view map[string]data.Bar, snap portfolio.Snapshot) {
	date := dateKey(ts)
	b.closeDone[date] = true

	if b.settings.FlattenAtClose {
		if b.flatten(ts, view) {
			snap = b.snapshot(markPrices(view), ts)
		}
	}
	if !b.m2mDone[date] {
		b.m2mDone[date] = true
		snap = b.snapshot(markPrices(view), ts)
		b.appendLedger(ts, snap.Equity, noteM2MAtClose)
	}
	b.appendLedger(ts, snap.Equity, noteClose)
}

// flatten submits synthetic MARKET orders fully closing every open position
// with a bar available at this instant. Returns whether anything traded
func (b *BackTest) flatten(ts time.Time, view map[string]data.Bar) bool {
	var traded bool
	positions := b.portfolio.Positions()
	for _, symbol := range sortedSymbols(positions) {
		qty := positions[symbol].Qty
		if qty.IsZero() {
			continue
		}
		if _, ok := view[symbol]; !ok {
			log.Warnf(log.Engine, "cannot flatten %v at %v: no bar", symbol, ts)
			continue
		}
		side := order.Sell
		if qty.IsNegative() {
			side = order.Buy
		}
		o, err := order.New(symbol, string(side), string(order.Market), qty.Abs(), decimal.Zero)
		if err != nil {
			log.Errorf(log.Engine, "flatten order for %v: %v", symbol, err)
			continue
		}
		before := len(b.filledOrders)
		b.routeOrder(o, ts, view)
		if len(b.filledOrders) > before {
			traded = true
		}
	}
	return traded
}

func (b *BackTest) appendLedger(ts time.Time, equity decimal.Decimal, note string) {
	b.dailyLedger = append(b.dailyLedger, DailyEntry{
		Date:      midnight(ts),
		Timestamp: ts,
		Equity:    equity,
		Note:      note,
	})
	log.Infof(log.Engine, "%v %v equity %v", note, ts.Format(time.DateTime), equity)
}

// Report assembles run results. Metric failures degrade to empty values and
// never invalidate the fill log
func (b *BackTest) Report() Results {
	resp := Results{
		FilledOrders: b.FilledOrders(),
		DailyLedger:  b.DailyLedger(),
	}
	timeline := b.data.Timeline()
	points := make([]statistics.Point, len(b.equityCurve))
	for i := range b.equityCurve {
		points[i] = statistics.Point{
			Timestamp: b.equityCurve[i].Timestamp,
			Equity:    b.equityCurve[i].Equity,
		}
	}
	equity, err := statistics.AlignEquity(timeline, points)
	if err != nil {
		log.Warnf(log.Report, "equity alignment failed: %v", err)
		return resp
	}
	resp.Equity = equity
	metrics, err := statistics.Calculate(timeline, points)
	if err != nil {
		log.Warnf(log.Report, "metric calculation failed: %v", err)
		return resp
	}
	resp.Metrics = metrics
	return resp
}

// FilledOrders returns the audit list of orders that resulted in a fill
func (b *BackTest) FilledOrders() []*order.Order {
	resp := make([]*order.Order, len(b.filledOrders))
	copy(resp, b.filledOrders)
	return resp
}

// EquityCurve returns every snapshot taken during the run
func (b *BackTest) EquityCurve() []portfolio.Snapshot {
	resp := make([]portfolio.Snapshot, len(b.equityCurve))
	copy(resp, b.equityCurve)
	return resp
}

// DailyLedger returns the per-date m2m and close rows
func (b *BackTest) DailyLedger() []DailyEntry {
	resp := make([]DailyEntry, len(b.dailyLedger))
	copy(resp, b.dailyLedger)
	return resp
}

// Timeline returns the sorted union of bar timestamps for the run
func (b *BackTest) Timeline() []time.Time {
	return b.data.Timeline()
}

// Portfolio exposes the ledger for inspection after a run
func (b *BackTest) Portfolio() *portfolio.Portfolio {
	return b.portfolio
}

func markPrices(view map[string]data.Bar) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(view))
	for symbol := range view {
		bar := view[symbol]
		if mark := bar.MarkPrice(); mark.IsPositive() {
			prices[symbol] = mark
		}
	}
	return prices
}

func sortedSymbols(positions map[string]portfolio.Position) []string {
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func dateKey(ts time.Time) string {
	return ts.Format(time.DateOnly)
}

func midnight(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

func timeOfDay(ts time.Time) time.Duration {
	return ts.Sub(midnight(ts))
}
