package strategies

import (
	"errors"

	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/order"
)

// ErrStrategyNotFound is returned when LoadStrategy cannot match a name to a
// registered strategy
var ErrStrategyNotFound = errors.New("strategy not found")

// Handler defines what is expected of a strategy. OnBar receives the aligned
// bar view for a single timestamp and returns the orders the strategy wants
// submitted against it
type Handler interface {
	Name() string
	Description() string
	OnBar(view map[string]data.Bar) ([]*order.Order, error)
	SetCustomSettings(map[string]any) error
	SetDefaults()
}
