package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Write renders the run results to disk: a JSON results file and, when
// enabled, an HTML equity curve. A chart failure is logged and does not
// invalidate the JSON output
func Write(d *Data) error {
	if d == nil {
		return errNilData
	}
	if d.Nickname == "" {
		return errNoNickname
	}
	if err := os.MkdirAll(d.OutputDir, 0o755); err != nil {
		return err
	}

	resultsPath := filepath.Join(d.OutputDir, d.Nickname+"-results.json")
	if err := writeJSON(resultsPath, d.Results); err != nil {
		return err
	}
	log.Infof(log.Report, "results written to %v", resultsPath)

	if d.Chart {
		chartPath := filepath.Join(d.OutputDir, d.Nickname+"-equity.html")
		if err := writeChart(chartPath, d); err != nil {
			log.Warnf(log.Report, "equity chart failed: %v", err)
		} else {
			log.Infof(log.Report, "equity chart written to %v", chartPath)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	contents, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0o644)
}

func writeChart(path string, d *Data) error {
	if len(d.Results.Equity) == 0 || len(d.Timeline) != len(d.Results.Equity) {
		return errNothingToPlot
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%v equity", d.Nickname),
			Subtitle: d.Strategy,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	xAxis := make([]string, len(d.Timeline))
	series := make([]opts.LineData, len(d.Results.Equity))
	for i := range d.Timeline {
		xAxis[i] = d.Timeline[i].Format(time.DateTime)
		series[i] = opts.LineData{Value: d.Results.Equity[i]}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("equity", series)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}
