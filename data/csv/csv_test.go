package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadBars(t *testing.T) {
	path := writeTestCSV(t, `timestamp,open,high,low,close,volume,bid,ask,bid_size,ask_size
2023-06-01 10:00:00,100,101,99,100.5,1500,100.4,100.6,500,700
2023-06-01 10:01:00,100.5,102,100,101.5,1200,,,,
not-a-time,1,1,1,1,1,,,,
`)
	bars, err := LoadBars(path, "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2, "malformed row skipped")

	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.True(t, bars[0].Close.Equal(decimal.NewFromFloat(100.5)))
	assert.True(t, bars[0].Bid.Valid)
	assert.True(t, bars[0].Bid.Decimal.Equal(decimal.NewFromFloat(100.4)))
	assert.True(t, bars[0].AskSize.Decimal.Equal(decimal.NewFromInt(700)))
	assert.False(t, bars[1].Bid.Valid, "empty optional column stays unset")
}

func TestLoadBarsMissingColumn(t *testing.T) {
	path := writeTestCSV(t, "timestamp,open,high,low,volume\n2023-06-01,1,1,1,1\n")
	_, err := LoadBars(path, "AAPL")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadBarsEmptySymbol(t *testing.T) {
	_, err := LoadBars("anywhere.csv", "")
	assert.ErrorIs(t, err, data.ErrSymbolEmpty)
}

func TestLoadBarsNoRows(t *testing.T) {
	path := writeTestCSV(t, "timestamp,open,high,low,close,volume\n")
	_, err := LoadBars(path, "AAPL")
	assert.Error(t, err)
}
