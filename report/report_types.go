package report

import (
	"errors"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/engine"
)

var (
	errNilData       = errors.New("report data is nil")
	errNoNickname    = errors.New("report needs a run nickname for file naming")
	errNothingToPlot = errors.New("no equity series to plot")
)

// Data is everything the report writer needs from a completed run
type Data struct {
	Nickname  string
	Strategy  string
	Timeline  []time.Time
	Results   engine.Results
	OutputDir string
	Chart     bool
}
