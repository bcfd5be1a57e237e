package strategies

import (
	"fmt"
	"strings"

	"github.com/antoninodiblasi/IBKR-Backtesting/strategies/noop"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies/rsi"
)

// GetStrategies returns a slice of all registered strategies with their
// defaults applied
func GetStrategies() []Handler {
	resp := []Handler{
		new(noop.Strategy),
		new(rsi.Strategy),
	}
	for i := range resp {
		resp[i].SetDefaults()
	}
	return resp
}

// LoadStrategy returns the strategy matching the supplied name
func LoadStrategy(name string) (Handler, error) {
	strats := GetStrategies()
	for i := range strats {
		if strings.EqualFold(name, strats[i].Name()) {
			return strats[i], nil
		}
	}
	return nil, fmt.Errorf("%w %v", ErrStrategyNotFound, name)
}
