package data

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(symbol string, ts time.Time, close float64) Bar {
	return Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      decimal.NewFromFloat(close),
		High:      decimal.NewFromFloat(close),
		Low:       decimal.NewFromFloat(close),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromInt(1000),
	}
}

func TestMarkPricePreference(t *testing.T) {
	b := bar("AAPL", time.Now(), 100)
	b.Mid = decimal.NewNullDecimal(decimal.NewFromInt(99))
	assert.True(t, b.MarkPrice().Equal(decimal.NewFromInt(99)), "mid wins over close")

	b.Mid = decimal.NullDecimal{}
	assert.True(t, b.MarkPrice().Equal(decimal.NewFromInt(100)), "close is next")

	b.Close = decimal.Zero
	assert.True(t, b.MarkPrice().Equal(b.Open), "open after close")

	b.Open = decimal.Zero
	b.High = decimal.NewFromInt(101)
	assert.True(t, b.MarkPrice().Equal(decimal.NewFromInt(101)), "high after open")

	b.High = decimal.Zero
	b.Low = decimal.NewFromInt(98)
	assert.True(t, b.MarkPrice().Equal(decimal.NewFromInt(98)), "low is last resort")

	b.Low = decimal.Zero
	assert.True(t, b.MarkPrice().IsZero(), "zero when nothing usable")
}

func TestNewHandler(t *testing.T) {
	_, err := NewHandler(nil)
	assert.ErrorIs(t, err, ErrNoBars)

	t1 := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)
	h, err := NewHandler(map[string][]Bar{
		// deliberately unsorted
		"AAPL": {bar("AAPL", t2, 101), bar("AAPL", t1, 100)},
		"MSFT": {bar("MSFT", t3, 301), bar("MSFT", t1, 300)},
	})
	require.NoError(t, err)

	timeline := h.Timeline()
	require.Len(t, timeline, 3)
	assert.Equal(t, t1, timeline[0])
	assert.Equal(t, t2, timeline[1])
	assert.Equal(t, t3, timeline[2])

	view := h.View(t1)
	require.Len(t, view, 2)
	assert.True(t, view["AAPL"].Close.Equal(decimal.NewFromInt(100)))
	assert.True(t, view["MSFT"].Close.Equal(decimal.NewFromInt(300)))

	view = h.View(t2)
	require.Len(t, view, 1)
	_, ok := view["MSFT"]
	assert.False(t, ok, "MSFT has no quote at t2")

	assert.Equal(t, []string{"AAPL", "MSFT"}, h.Symbols())

	series, err := h.Bars("AAPL")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.True(t, series[0].Timestamp.Before(series[1].Timestamp), "series sorted")

	_, err = h.Bars("TSLA")
	assert.ErrorIs(t, err, ErrNoBars)
}
