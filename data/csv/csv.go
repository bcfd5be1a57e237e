// Package csv loads per-symbol OHLCV series, with optional book columns,
// into bar data for a backtesting run
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingColumn is returned when a required header column is absent
	ErrMissingColumn = errors.New("missing required column")
	errNoRows        = errors.New("csv file contains no data rows")
)

var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadBars reads one symbol's bar series from a CSV file. The header must
// contain timestamp, open, high, low, close and volume; bid, ask, bid_size,
// ask_size and mid are picked up when present. Rows that fail to parse are
// skipped with a warning rather than aborting the load
func LoadBars(path, symbol string) ([]data.Bar, error) {
	if symbol == "" {
		return nil, data.ErrSymbolEmpty
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %v", errNoRows, path)
	}

	columns := make(map[string]int, len(records[0]))
	for i := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(records[0][i]))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w %q in %v", ErrMissingColumn, col, path)
		}
	}

	bars := make([]data.Bar, 0, len(records)-1)
	for i, row := range records[1:] {
		b, err := parseRow(row, columns, symbol)
		if err != nil {
			log.Warnf(log.DataMgr, "%v row %v skipped: %v", path, i+2, err)
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %v", errNoRows, path)
	}
	return bars, nil
}

func parseRow(row []string, columns map[string]int, symbol string) (data.Bar, error) {
	ts, err := parseTimestamp(field(row, columns, "timestamp"))
	if err != nil {
		return data.Bar{}, err
	}
	b := data.Bar{Symbol: symbol, Timestamp: ts}
	for col, dst := range map[string]*decimal.Decimal{
		"open":   &b.Open,
		"high":   &b.High,
		"low":    &b.Low,
		"close":  &b.Close,
		"volume": &b.Volume,
	} {
		*dst, err = decimal.NewFromString(field(row, columns, col))
		if err != nil {
			return data.Bar{}, fmt.Errorf("column %q: %w", col, err)
		}
	}
	for col, dst := range map[string]*decimal.NullDecimal{
		"bid":      &b.Bid,
		"ask":      &b.Ask,
		"bid_size": &b.BidSize,
		"ask_size": &b.AskSize,
		"mid":      &b.Mid,
	} {
		raw := field(row, columns, col)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			// optional fields degrade to unset
			continue
		}
		dst.Decimal = v
		dst.Valid = true
	}
	return b, nil
}

func field(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseTimestamp(raw string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var ts time.Time
		ts, err = time.Parse(layout, raw)
		if err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", raw, err)
}
