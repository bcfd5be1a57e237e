package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/config"
	"github.com/antoninodiblasi/IBKR-Backtesting/engine"
	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/antoninodiblasi/IBKR-Backtesting/report"
	"github.com/antoninodiblasi/IBKR-Backtesting/store"
	"github.com/antoninodiblasi/IBKR-Backtesting/strategies"
	"github.com/gofrs/uuid"
	"github.com/urfave/cli/v2"
)

var (
	configPath string
	verbose    bool
)

func main() {
	app := cli.NewApp()
	app.Name = "backtester"
	app.Usage = "replays historical bar data against a trading strategy"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "enable debug logging",
			Destination: &verbose,
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "run",
			Usage: "execute a backtest from a config file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "config",
					Aliases:     []string{"c"},
					Usage:       "path to the run configuration (JSON or YAML)",
					Required:    true,
					Destination: &configPath,
				},
			},
			Action: runBacktest,
		},
		{
			Name:   "strategies",
			Usage:  "list the available strategies",
			Action: listStrategies,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBacktest(_ *cli.Context) error {
	if verbose {
		log.SetGlobalLogLevel("INFO|WARN|DEBUG|ERROR")
	}

	cfg, err := config.ReadConfigFromFile(configPath)
	if err != nil {
		return err
	}
	bt, err := engine.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	if err = bt.Run(); err != nil {
		return err
	}
	results := bt.Report()
	printMetrics(cfg, results)

	nickname := cfg.Nickname
	if nickname == "" {
		nickname = cfg.Strategy.Name
	}
	err = report.Write(&report.Data{
		Nickname:  nickname,
		Strategy:  cfg.Strategy.Name,
		Timeline:  bt.Timeline(),
		Results:   results,
		OutputDir: cfg.Report.OutputDir,
		Chart:     cfg.Report.GenerateChart,
	})
	if err != nil {
		log.Errorf(log.Report, "writing report: %v", err)
	}

	if cfg.Store.Enabled {
		if err = persistRun(cfg, nickname, bt, results); err != nil {
			log.Errorf(log.Store, "persisting run: %v", err)
		}
	}
	return nil
}

func persistRun(cfg *config.Config, nickname string, bt *engine.BackTest, results engine.Results) error {
	s, err := store.Open(cfg.Store.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	return s.SaveRun(context.Background(), &store.Run{
		ID:        id.String(),
		Nickname:  nickname,
		Strategy:  cfg.Strategy.Name,
		CreatedAt: time.Now(),
		Timeline:  bt.Timeline(),
		Results:   results,
	})
}

func printMetrics(cfg *config.Config, results engine.Results) {
	fmt.Printf("strategy:      %v\n", cfg.Strategy.Name)
	fmt.Printf("start equity:  %.2f\n", results.Metrics.StartEquity)
	fmt.Printf("end equity:    %.2f\n", results.Metrics.EndEquity)
	fmt.Printf("total pnl:     %.2f\n", results.Metrics.TotalPNL)
	fmt.Printf("return:        %.2f%%\n", results.Metrics.ReturnPct)
	fmt.Printf("max drawdown:  %.2f%%\n", results.Metrics.MaxDrawdown*100)
	fmt.Printf("sharpe ratio:  %.2f\n", results.Metrics.SharpeRatio)
	fmt.Printf("fills:         %v\n", len(results.FilledOrders))
}

func listStrategies(_ *cli.Context) error {
	for _, s := range strategies.GetStrategies() {
		fmt.Printf("%v: %v\n", s.Name(), s.Description())
	}
	return nil
}
