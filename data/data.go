package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MarkPrice returns the price to use when valuing the symbol at this bar.
// Order of preference: mid, close, open, high, low; the first available
// positive value wins and zero is returned only when nothing is usable
func (b *Bar) MarkPrice() decimal.Decimal {
	if b.Mid.Valid && b.Mid.Decimal.IsPositive() {
		return b.Mid.Decimal
	}
	for _, candidate := range []decimal.Decimal{b.Close, b.Open, b.High, b.Low} {
		if candidate.IsPositive() {
			return candidate
		}
	}
	return decimal.Zero
}

// NewHandler sorts every symbol's series by timestamp and merges them into a
// single ordered timeline
func NewHandler(bars map[string][]Bar) (*Handler, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	h := &Handler{
		bars:  make(map[string][]Bar, len(bars)),
		views: make(map[int64]map[string]Bar),
	}
	for symbol, series := range bars {
		if symbol == "" {
			return nil, ErrSymbolEmpty
		}
		sorted := make([]Bar, len(series))
		copy(sorted, series)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})
		for i := range sorted {
			sorted[i].Symbol = symbol
			key := sorted[i].Timestamp.UnixNano()
			if h.views[key] == nil {
				h.views[key] = make(map[string]Bar)
			}
			h.views[key][symbol] = sorted[i]
		}
		h.bars[symbol] = sorted
	}
	h.timeline = make([]time.Time, 0, len(h.views))
	for key := range h.views {
		h.timeline = append(h.timeline, time.Unix(0, key).UTC())
	}
	sort.Slice(h.timeline, func(i, j int) bool {
		return h.timeline[i].Before(h.timeline[j])
	})
	return h, nil
}

// Timeline returns every distinct timestamp across all symbols in ascending order
func (h *Handler) Timeline() []time.Time {
	return h.timeline
}

// View returns the bar per symbol available at the supplied instant
func (h *Handler) View(ts time.Time) map[string]Bar {
	return h.views[ts.UnixNano()]
}

// Symbols returns the symbols loaded into the handler
func (h *Handler) Symbols() []string {
	resp := make([]string, 0, len(h.bars))
	for symbol := range h.bars {
		resp = append(resp, symbol)
	}
	sort.Strings(resp)
	return resp
}

// Bars returns the sorted series for a symbol
func (h *Handler) Bars(symbol string) ([]Bar, error) {
	series, ok := h.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("%w for %v", ErrNoBars, symbol)
	}
	return series, nil
}
