package rsi

import (
	"fmt"
	"sort"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// Name is the strategy name
	Name         = "rsi"
	rsiPeriodKey = "rsi-period"
	rsiLowKey    = "rsi-low"
	rsiHighKey   = "rsi-high"
	orderSizeKey = "order-size"
	description  = `The relative strength index is a technical indicator charting the strength or weakness of a symbol based on the closing prices of a recent trading period`
)

// Strategy is an implementation of the Handler interface. It accumulates
// closes per symbol across bars, buying when RSI crosses below the low
// threshold and selling the position back when it crosses above the high
type Strategy struct {
	base.Strategy
	rsiPeriod decimal.Decimal
	rsiLow    decimal.Decimal
	rsiHigh   decimal.Decimal
	orderSize decimal.Decimal
	closes    map[string][]decimal.Decimal
	holding   map[string]bool
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnBar appends each symbol's close to its running series and emits a MARKET
// order whenever the indicator crosses a threshold. Symbols missing from the
// view simply do not advance their series
func (s *Strategy) OnBar(view map[string]data.Bar) ([]*order.Order, error) {
	if s.closes == nil {
		s.closes = make(map[string][]decimal.Decimal)
		s.holding = make(map[string]bool)
	}

	symbols := make([]string, 0, len(view))
	for symbol := range view {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var orders []*order.Order
	for _, symbol := range symbols {
		bar := view[symbol]
		if !bar.Close.IsPositive() {
			continue
		}
		s.closes[symbol] = append(s.closes[symbol], bar.Close)
		series := s.closes[symbol]
		if int64(len(series)) <= s.rsiPeriod.IntPart() {
			continue
		}

		values := make([]float64, len(series))
		for i := range series {
			values[i] = series[i].InexactFloat64()
		}
		rsi := indicators.RSI(values, int(s.rsiPeriod.IntPart()))
		latest := decimal.NewFromFloat(rsi[len(rsi)-1])

		switch {
		case latest.LessThanOrEqual(s.rsiLow) && !s.holding[symbol]:
			o, err := order.New(symbol, string(order.Buy), string(order.Market), s.orderSize, decimal.Zero)
			if err != nil {
				return nil, err
			}
			s.holding[symbol] = true
			orders = append(orders, o)
		case latest.GreaterThanOrEqual(s.rsiHigh) && s.holding[symbol]:
			o, err := order.New(symbol, string(order.Sell), string(order.Market), s.orderSize, decimal.Zero)
			if err != nil {
				return nil, err
			}
			s.holding[symbol] = false
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		val, ok := v.(float64)
		if !ok || val <= 0 {
			return fmt.Errorf("%w provided %v value could not be parsed: %v", base.ErrInvalidCustomSettings, k, v)
		}
		switch k {
		case rsiHighKey:
			s.rsiHigh = decimal.NewFromFloat(val)
		case rsiLowKey:
			s.rsiLow = decimal.NewFromFloat(val)
		case rsiPeriodKey:
			s.rsiPeriod = decimal.NewFromFloat(val)
		case orderSizeKey:
			s.orderSize = decimal.NewFromFloat(val)
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiHigh = decimal.NewFromInt(70)
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiPeriod = decimal.NewFromInt(14)
	s.orderSize = decimal.NewFromInt(10)
	s.closes = make(map[string][]decimal.Decimal)
	s.holding = make(map[string]bool)
}
