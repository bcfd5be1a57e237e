package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/exchange"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/portfolio"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies/noop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns canned orders keyed by bar timestamp
type scripted struct {
	noop.Strategy
	orders map[time.Time][]*order.Order
	err    error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) OnBar(view map[string]data.Bar) ([]*order.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, bar := range view {
		return s.orders[bar.Timestamp], nil
	}
	return nil, nil
}

func bar(symbol string, ts time.Time, close float64) data.Bar {
	return data.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromInt(1000),
	}
}

func mustOrder(t *testing.T, symbol, side string, qty int64) *order.Order {
	t.Helper()
	o, err := order.New(symbol, side, "MARKET", decimal.NewFromInt(qty), decimal.Zero)
	require.NoError(t, err)
	return o
}

var defaultSettings = Settings{
	M2MTime:        15*time.Hour + 30*time.Minute,
	CloseTime:      16*time.Hour + 30*time.Minute,
	FlattenAtClose: false,
}

func newTestBacktest(t *testing.T, s *scripted, bars map[string][]data.Bar, settings Settings) *BackTest {
	t.Helper()
	d, err := data.NewHandler(bars)
	require.NoError(t, err)
	p, err := portfolio.New(decimal.NewFromInt(100000), "USD")
	require.NoError(t, err)
	e, err := exchange.New(p, decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	b, err := New(s, d, e, p, settings)
	require.NoError(t, err)
	return b
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	d, err := data.NewHandler(map[string][]data.Bar{
		"AAPL": {bar("AAPL", time.Now(), 100)},
	})
	require.NoError(t, err)
	p, err := portfolio.New(decimal.NewFromInt(1), "USD")
	require.NoError(t, err)
	e, err := exchange.New(p, decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	_, err = New(nil, d, e, p, defaultSettings)
	assert.ErrorIs(t, err, errNilStrategy)
	_, err = New(&scripted{}, nil, e, p, defaultSettings)
	assert.ErrorIs(t, err, errNilData)
	_, err = New(&scripted{}, d, nil, p, defaultSettings)
	assert.ErrorIs(t, err, errNilExchange)
	_, err = New(&scripted{}, d, e, nil, defaultSettings)
	assert.ErrorIs(t, err, errNilPortfolio)
	_, err = New(&scripted{}, d, e, p, Settings{M2MTime: 25 * time.Hour})
	assert.ErrorIs(t, err, errBadTimeOfDay)
}

func TestRunEmptyDataset(t *testing.T) {
	t.Parallel()
	p, err := portfolio.New(decimal.NewFromInt(100000), "USD")
	require.NoError(t, err)
	e, err := exchange.New(p, decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	b, err := New(&scripted{}, &data.Handler{}, e, p, defaultSettings)
	require.NoError(t, err)

	require.NoError(t, b.Run())
	assert.Empty(t, b.EquityCurve())
	assert.Empty(t, b.DailyLedger())
	assert.Empty(t, b.FilledOrders())
}

func TestRunBuyAndMark(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t0 := day.Add(10 * time.Hour)
	t1 := day.Add(11 * time.Hour)
	s := &scripted{orders: map[time.Time][]*order.Order{
		t0: {mustOrder(t, "AAPL", "BUY", 10)},
	}}
	b := newTestBacktest(t, s, map[string][]data.Bar{
		"AAPL": {bar("AAPL", t0, 100), bar("AAPL", t1, 110)},
	}, defaultSettings)

	require.NoError(t, b.Run())
	require.Len(t, b.FilledOrders(), 1)
	assert.True(t, b.FilledOrders()[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.Portfolio().Cash().Equal(decimal.NewFromInt(99000)))
	assert.True(t, b.Portfolio().GetPosition("AAPL").Equal(decimal.NewFromInt(10)))

	// the last snapshot marks the open position at 110
	curve := b.EquityCurve()
	require.NotEmpty(t, curve)
	assert.True(t, curve[len(curve)-1].Equity.Equal(decimal.NewFromInt(100100)),
		"got %v", curve[len(curve)-1].Equity)
}

func TestDailyLedgerM2MAndClose(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []data.Bar{
		bar("AAPL", day.Add(10*time.Hour), 100),
		bar("AAPL", day.Add(15*time.Hour+30*time.Minute), 101),
		bar("AAPL", day.Add(16*time.Hour), 102),
		bar("AAPL", day.Add(16*time.Hour+45*time.Minute), 103),
	}
	b := newTestBacktest(t, &scripted{}, map[string][]data.Bar{"AAPL": bars}, defaultSettings)
	require.NoError(t, b.Run())

	ledger := b.DailyLedger()
	require.Len(t, ledger, 2)
	assert.Equal(t, noteM2M, ledger[0].Note)
	assert.Equal(t, bars[1].Timestamp, ledger[0].Timestamp)
	assert.Equal(t, noteClose, ledger[1].Note)
	assert.Equal(t, bars[3].Timestamp, ledger[1].Timestamp)
	assert.Equal(t, day, ledger[1].Date)

	// the mark to market records its own snapshot alongside the per-bar one
	curve := b.EquityCurve()
	require.Len(t, curve, 6)
	var atM2M int
	for i := range curve {
		if curve[i].Timestamp.Equal(bars[1].Timestamp) {
			atM2M++
		}
	}
	assert.Equal(t, 2, atM2M)
}

func TestEndOfRunForcedClose(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// the day never reaches either trigger time
	bars := []data.Bar{
		bar("AAPL", day.Add(10*time.Hour), 100),
		bar("AAPL", day.Add(11*time.Hour), 101),
	}
	b := newTestBacktest(t, &scripted{}, map[string][]data.Bar{"AAPL": bars}, defaultSettings)
	require.NoError(t, b.Run())

	ledger := b.DailyLedger()
	require.Len(t, ledger, 2)
	assert.Equal(t, noteM2MAtClose, ledger[0].Note)
	assert.Equal(t, noteClose, ledger[1].Note)
	assert.Equal(t, bars[1].Timestamp, ledger[1].Timestamp)
}

func TestCloseForcedOnDateChange(t *testing.T) {
	t.Parallel()
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	// day1 runs out of bars well before the close time
	bars := []data.Bar{
		bar("AAPL", day1.Add(10*time.Hour), 100),
		bar("AAPL", day1.Add(11*time.Hour), 101),
		bar("AAPL", day2.Add(10*time.Hour), 102),
	}
	b := newTestBacktest(t, &scripted{}, map[string][]data.Bar{"AAPL": bars}, defaultSettings)
	require.NoError(t, b.Run())

	ledger := b.DailyLedger()
	require.Len(t, ledger, 4)
	assert.Equal(t, noteM2MAtClose, ledger[0].Note)
	assert.Equal(t, noteClose, ledger[1].Note)
	assert.Equal(t, day1, ledger[1].Date)
	assert.Equal(t, bars[1].Timestamp, ledger[1].Timestamp, "close row uses day1's last bar")
	assert.Equal(t, noteM2MAtClose, ledger[2].Note)
	assert.Equal(t, noteClose, ledger[3].Note)
	assert.Equal(t, day2, ledger[3].Date)
}

func TestCloseFlattensOnDateChange(t *testing.T) {
	t.Parallel()
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	t0 := day1.Add(10 * time.Hour)
	s := &scripted{orders: map[time.Time][]*order.Order{
		t0: {mustOrder(t, "AAPL", "BUY", 10)},
	}}
	settings := defaultSettings
	settings.FlattenAtClose = true
	b := newTestBacktest(t, s, map[string][]data.Bar{
		"AAPL": {bar("AAPL", t0, 100), bar("AAPL", day2.Add(10*time.Hour), 120)},
	}, settings)
	require.NoError(t, b.Run())

	// the position opened on day1 is closed with day1's last bar, not
	// carried into day2
	require.Len(t, b.FilledOrders(), 2)
	flat := b.FilledOrders()[1]
	assert.Equal(t, order.Sell, flat.Side)
	assert.Equal(t, t0, flat.Timestamp)
	assert.True(t, flat.Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.Portfolio().GetPosition("AAPL").IsZero())
}

func TestM2MOncePerDate(t *testing.T) {
	t.Parallel()
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars := []data.Bar{
		bar("AAPL", day1.Add(15*time.Hour+30*time.Minute), 100),
		bar("AAPL", day1.Add(15*time.Hour+45*time.Minute), 100),
		bar("AAPL", day1.Add(17*time.Hour), 100),
		bar("AAPL", day2.Add(15*time.Hour+30*time.Minute), 100),
		bar("AAPL", day2.Add(17*time.Hour), 100),
	}
	b := newTestBacktest(t, &scripted{}, map[string][]data.Bar{"AAPL": bars}, defaultSettings)
	require.NoError(t, b.Run())

	var m2m, closes int
	for _, entry := range b.DailyLedger() {
		switch entry.Note {
		case noteM2M, noteM2MAtClose:
			m2m++
		case noteClose:
			closes++
		}
	}
	assert.Equal(t, 2, m2m, "one m2m per date")
	assert.Equal(t, 2, closes, "one close per date")
}

func TestFlattenAtClose(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t0 := day.Add(10 * time.Hour)
	t1 := day.Add(17 * time.Hour)
	s := &scripted{orders: map[time.Time][]*order.Order{
		t0: {mustOrder(t, "AAPL", "BUY", 10)},
	}}
	settings := defaultSettings
	settings.FlattenAtClose = true
	b := newTestBacktest(t, s, map[string][]data.Bar{
		"AAPL": {bar("AAPL", t0, 100), bar("AAPL", t1, 110)},
	}, settings)

	require.NoError(t, b.Run())
	assert.True(t, b.Portfolio().GetPosition("AAPL").IsZero())
	require.Len(t, b.FilledOrders(), 2)
	flat := b.FilledOrders()[1]
	assert.Equal(t, order.Sell, flat.Side)
	assert.True(t, flat.Price.Equal(decimal.NewFromInt(110)))
	assert.True(t, b.Portfolio().Cash().Equal(decimal.NewFromInt(100100)))

	// the close row reflects post-flatten equity
	ledger := b.DailyLedger()
	require.NotEmpty(t, ledger)
	last := ledger[len(ledger)-1]
	assert.Equal(t, noteClose, last.Note)
	assert.True(t, last.Equity.Equal(decimal.NewFromInt(100100)))
}

func TestOrderForMissingSymbolDropped(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t0 := day.Add(10 * time.Hour)
	s := &scripted{orders: map[time.Time][]*order.Order{
		t0: {mustOrder(t, "MSFT", "BUY", 10)},
	}}
	b := newTestBacktest(t, s, map[string][]data.Bar{
		"AAPL": {bar("AAPL", t0, 100)},
	}, defaultSettings)

	require.NoError(t, b.Run())
	assert.Empty(t, b.FilledOrders())
	assert.True(t, b.Portfolio().Cash().Equal(decimal.NewFromInt(100000)))
}

func TestStrategyErrorSkipsBar(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &scripted{err: errors.New("boom")}
	b := newTestBacktest(t, s, map[string][]data.Bar{
		"AAPL": {bar("AAPL", day.Add(10*time.Hour), 100)},
	}, defaultSettings)

	require.NoError(t, b.Run())
	assert.Empty(t, b.FilledOrders())
	assert.NotEmpty(t, b.EquityCurve(), "snapshots still taken on skipped bars")
}

func TestReport(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t0 := day.Add(10 * time.Hour)
	t1 := day.Add(11 * time.Hour)
	s := &scripted{orders: map[time.Time][]*order.Order{
		t0: {mustOrder(t, "AAPL", "BUY", 10)},
	}}
	b := newTestBacktest(t, s, map[string][]data.Bar{
		"AAPL": {bar("AAPL", t0, 100), bar("AAPL", t1, 110)},
	}, defaultSettings)
	require.NoError(t, b.Run())

	results := b.Report()
	require.Len(t, results.Equity, 2)
	assert.Equal(t, 100000.0, results.Equity[0])
	assert.Equal(t, 100100.0, results.Equity[1])
	assert.Equal(t, 100000.0, results.Metrics.StartEquity)
	assert.Equal(t, 100.0, results.Metrics.TotalPNL)
	require.Len(t, results.FilledOrders, 1)
	assert.NotEmpty(t, results.DailyLedger)
}

func TestReportBeforeRun(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := newTestBacktest(t, &scripted{}, map[string][]data.Bar{
		"AAPL": {bar("AAPL", day, 100)},
	}, defaultSettings)

	// no snapshots yet: metrics degrade to empty, nothing propagates
	results := b.Report()
	assert.Empty(t, results.Equity)
	assert.Zero(t, results.Metrics.StartEquity)
	assert.Empty(t, results.FilledOrders)
}
