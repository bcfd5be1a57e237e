package rsi

import (
	"testing"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	assert.True(t, s.rsiHigh.Equal(decimal.NewFromInt(70)))
	assert.True(t, s.rsiLow.Equal(decimal.NewFromInt(30)))
	assert.True(t, s.rsiPeriod.Equal(decimal.NewFromInt(14)))
	assert.True(t, s.orderSize.Equal(decimal.NewFromInt(10)))
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	err := s.SetCustomSettings(map[string]any{
		"rsi-period": 7.0,
		"rsi-low":    25.0,
		"rsi-high":   75.0,
		"order-size": 5.0,
	})
	require.NoError(t, err)
	assert.True(t, s.rsiPeriod.Equal(decimal.NewFromInt(7)))
	assert.True(t, s.orderSize.Equal(decimal.NewFromInt(5)))

	err = s.SetCustomSettings(map[string]any{"rsi-low": "lots"})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)
	err = s.SetCustomSettings(map[string]any{"mystery": 1.0})
	assert.ErrorIs(t, err, base.ErrInvalidCustomSettings)
}

func TestOnBarWarmup(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		orders, err := s.OnBar(map[string]data.Bar{
			"AAPL": {Symbol: "AAPL", Timestamp: ts, Close: decimal.NewFromInt(100)},
		})
		require.NoError(t, err)
		assert.Empty(t, orders, "no signal inside the warmup window")
		ts = ts.Add(time.Hour)
	}
}

func TestOnBarBuyThenSell(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetCustomSettings(map[string]any{"rsi-period": 3.0}))

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	feed := func(close float64) []*order.Order {
		t.Helper()
		orders, err := s.OnBar(map[string]data.Bar{
			"AAPL": {Symbol: "AAPL", Timestamp: ts, Close: decimal.NewFromFloat(close)},
		})
		require.NoError(t, err)
		ts = ts.Add(time.Hour)
		return orders
	}

	var bought, sold bool
	// a steady slide pins RSI at 0 and must trigger a single buy
	for _, c := range []float64{100, 99, 98, 97, 96, 95, 94} {
		for _, o := range feed(c) {
			assert.Equal(t, order.Buy, o.Side)
			assert.Equal(t, order.Market, o.Type)
			assert.True(t, o.Qty.Equal(decimal.NewFromInt(10)))
			assert.False(t, bought, "only one buy while holding")
			bought = true
		}
	}
	require.True(t, bought)

	// a steady rally pins RSI at 100 and must unwind the position once
	for _, c := range []float64{95, 96, 97, 98, 99, 100, 101} {
		for _, o := range feed(c) {
			assert.Equal(t, order.Sell, o.Side)
			assert.False(t, sold, "only one sell per holding")
			sold = true
		}
	}
	assert.True(t, sold)
}

func TestOnBarIgnoresBadClose(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	orders, err := s.OnBar(map[string]data.Bar{
		"AAPL": {Symbol: "AAPL", Close: decimal.Zero},
	})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, s.closes["AAPL"])
}
