package statistics

import (
	"math"
	"sort"
	"time"
)

// AlignEquity projects sparse equity observations onto the full bar timeline.
// Each timeline slot takes the latest observation at or before it; slots
// before the first observation take the first observation's value
func AlignEquity(timeline []time.Time, points []Point) ([]float64, error) {
	if len(timeline) == 0 {
		return nil, errEmptyTimeline
	}
	if len(points) == 0 {
		return nil, ErrNoObservations
	}
	// observations arrive in event order; a stable sort keeps that order
	// within a timestamp so the latest state wins the slot
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	aligned := make([]float64, len(timeline))
	j := -1
	for i := range timeline {
		for j+1 < len(sorted) && !sorted[j+1].Timestamp.After(timeline[i]) {
			j++
		}
		if j < 0 {
			aligned[i] = sorted[0].Equity.InexactFloat64()
			continue
		}
		aligned[i] = sorted[j].Equity.InexactFloat64()
	}
	return aligned, nil
}

// Calculate computes run metrics over the aligned equity curve
func Calculate(timeline []time.Time, points []Point) (Metrics, error) {
	equity, err := AlignEquity(timeline, points)
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{
		StartEquity:  equity[0],
		EndEquity:    equity[len(equity)-1],
		Observations: len(equity),
	}
	m.TotalPNL = m.EndEquity - m.StartEquity
	if m.StartEquity != 0 {
		m.ReturnPct = m.TotalPNL / m.StartEquity * 100
	}
	m.MaxDrawdown = MaxDrawdown(equity)
	m.SharpeRatio = SharpeRatio(Returns(equity))
	return m, nil
}

// Returns converts an equity curve into simple period returns
func Returns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	r := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			r = append(r, 0)
			continue
		}
		r = append(r, equity[i]/equity[i-1]-1)
	}
	return r
}

// MaxDrawdown returns the largest peak to trough loss as a fraction of the
// running peak
func MaxDrawdown(equity []float64) float64 {
	var peak, maxDD float64
	for i := range equity {
		if equity[i] > peak {
			peak = equity[i]
		}
		if peak == 0 {
			continue
		}
		dd := (peak - equity[i]) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// SharpeRatio annualises the mean period return over its sample standard
// deviation assuming daily observations
func SharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := arithmeticAverage(returns)
	std := sampleStandardDeviation(returns)
	return math.Sqrt(tradingDaysPerYear) * mean / (std + epsilon)
}

func arithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for i := range values {
		sum += values[i]
	}
	return sum / float64(len(values))
}

func sampleStandardDeviation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := arithmeticAverage(values)
	var combined float64
	for i := range values {
		combined += math.Pow(values[i]-mean, 2)
	}
	return math.Sqrt(combined / float64(len(values)-1))
}
