package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/engine"
	"github.com/antoninodiblasi/IBKR-Backtesting/statistics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData(t *testing.T) *Data {
	t.Helper()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Data{
		Nickname: "demo",
		Strategy: "noop",
		Timeline: []time.Time{base, base.Add(time.Hour)},
		Results: engine.Results{
			Equity:  []float64{100000, 100100},
			Metrics: statistics.Metrics{StartEquity: 100000, EndEquity: 100100, TotalPNL: 100},
		},
		OutputDir: t.TempDir(),
		Chart:     true,
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()
	d := testData(t)
	require.NoError(t, Write(d))

	contents, err := os.ReadFile(filepath.Join(d.OutputDir, "demo-results.json"))
	require.NoError(t, err)
	var results engine.Results
	require.NoError(t, json.Unmarshal(contents, &results))
	assert.Equal(t, 100.0, results.Metrics.TotalPNL)
	assert.Equal(t, d.Results.Equity, results.Equity)

	chart, err := os.ReadFile(filepath.Join(d.OutputDir, "demo-equity.html"))
	require.NoError(t, err)
	assert.Contains(t, string(chart), "demo equity")
}

func TestWriteChartDegrades(t *testing.T) {
	t.Parallel()
	d := testData(t)
	d.Results.Equity = nil

	// JSON still lands even though there is nothing to plot
	require.NoError(t, Write(d))
	_, err := os.Stat(filepath.Join(d.OutputDir, "demo-results.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(d.OutputDir, "demo-equity.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteValidation(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, Write(nil), errNilData)
	d := testData(t)
	d.Nickname = ""
	assert.ErrorIs(t, Write(d), errNoNickname)
}
