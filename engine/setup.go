package engine

import (
	"fmt"

	"github.com/antoninodiblasi/IBKR-Backtesting/config"
	"github.com/antoninodiblasi/IBKR-Backtesting/data"
	"github.com/antoninodiblasi/IBKR-Backtesting/data/csv"
	"github.com/antoninodiblasi/IBKR-Backtesting/exchange"
	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/antoninodiblasi/IBKR-Backtesting/portfolio"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies"
)

// NewFromConfig assembles a ready to run backtest from a validated config
func NewFromConfig(cfg *config.Config) (*BackTest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strat, err := strategies.LoadStrategy(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}
	strat.SetDefaults()
	if len(cfg.Strategy.CustomSettings) > 0 {
		if err = strat.SetCustomSettings(cfg.Strategy.CustomSettings); err != nil {
			return nil, err
		}
	}

	bars := make(map[string][]data.Bar, len(cfg.Data))
	for i := range cfg.Data {
		loaded, err := csv.LoadBars(cfg.Data[i].CSVFile, cfg.Data[i].Symbol)
		if err != nil {
			return nil, fmt.Errorf("loading bars for %v: %w", cfg.Data[i].Symbol, err)
		}
		bars[cfg.Data[i].Symbol] = loaded
		log.Infof(log.DataMgr, "loaded %v bars for %v from %v",
			len(loaded), cfg.Data[i].Symbol, cfg.Data[i].CSVFile)
	}
	handler, err := data.NewHandler(bars)
	if err != nil {
		return nil, err
	}

	pf, err := portfolio.New(cfg.Portfolio.InitialCash, cfg.Portfolio.BaseCurrency)
	if err != nil {
		return nil, err
	}
	exch, err := exchange.New(pf,
		cfg.Execution.Slippage,
		cfg.Execution.Commission,
		cfg.Execution.ImpactLambda)
	if err != nil {
		return nil, err
	}

	m2m, err := config.ParseTimeOfDay(cfg.Session.M2MTime)
	if err != nil {
		return nil, err
	}
	closeTime, err := config.ParseTimeOfDay(cfg.Session.MarketCloseTime)
	if err != nil {
		return nil, err
	}

	return New(strat, handler, exch, pf, Settings{
		M2MTime:        m2m,
		CloseTime:      closeTime,
		FlattenAtClose: cfg.Session.FlattenAtClose,
	})
}
