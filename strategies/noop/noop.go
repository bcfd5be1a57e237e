package noop

import (
	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies/base"
)

// Name is the strategy name
const Name = "noop"

// Strategy never trades. It is useful for validating data handling, the
// daily mark to market cycle and reporting without any fills in the way
type Strategy struct {
	base.Strategy
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return "Holds cash and never submits an order"
}

// OnBar returns no orders for any view
func (s *Strategy) OnBar(_ map[string]data.Bar) ([]*order.Order, error) {
	return nil, nil
}

// SetDefaults sets default values for the strategy
func (s *Strategy) SetDefaults() {}
