// Package score turns a journal's recorded metric series into a single
// scalar an Optimizer can rank parameter sets by. Grounded on
// 02b98edd_SAbdulRahuman-opense-ai-agents's Config.RiskFreeRate-based
// Sharpe computation and its CAGR/MaxDrawdown reductions over an
// equity curve.
package score

import (
	"math"

	"github.com/roboquant-go/roboquant/internal/journal"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Func computes one scalar from a run's journal over the timeframe it
// covered.
type Func func(j journal.Journal, timeframe quant.Timeframe) float64

// Reduction collapses a named metric series to a scalar: last, mean,
// min, max or annualized.
type Reduction func(points []journal.Point, timeframe quant.Timeframe) float64

// Last returns the final recorded value of metric, or 0 if the series
// is empty.
func Last(points []journal.Point, _ quant.Timeframe) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}

// Mean returns the arithmetic mean of metric's recorded values.
func Mean(points []journal.Point, _ quant.Timeframe) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}

// Min returns the smallest recorded value of metric.
func Min(points []journal.Point, _ quant.Timeframe) float64 {
	if len(points) == 0 {
		return 0
	}
	m := points[0].Value
	for _, p := range points[1:] {
		if p.Value < m {
			m = p.Value
		}
	}
	return m
}

// Max returns the largest recorded value of metric.
func Max(points []journal.Point, _ quant.Timeframe) float64 {
	if len(points) == 0 {
		return 0
	}
	m := points[0].Value
	for _, p := range points[1:] {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

// Annualized scales the growth from the first to the last value to a
// one-year rate, using timeframe's length in years as the span.
func Annualized(points []journal.Point, timeframe quant.Timeframe) float64 {
	if len(points) < 2 {
		return 0
	}
	years := timeframe.ToYears()
	if years <= 0 {
		return 0
	}
	start, end := points[0].Value, points[len(points)-1].Value
	if start == 0 {
		return 0
	}
	return (end/start - 1) / years
}

// Metric builds a Func that reduces the named metric series with
// reduce.
func Metric(name string, reduce Reduction) Func {
	return func(j journal.Journal, timeframe quant.Timeframe) float64 {
		return reduce(j.GetMetric(name), timeframe)
	}
}

// CAGR computes the compound annual growth rate of the equity series:
// (endEquity/startEquity)^(1/years) - 1.
func CAGR(j journal.Journal, timeframe quant.Timeframe) float64 {
	eq := j.GetMetric(journal.MetricEquity)
	if len(eq) < 2 {
		return 0
	}
	years := timeframe.ToYears()
	if years <= 0 {
		return 0
	}
	start, end := eq[0].Value, eq[len(eq)-1].Value
	if start <= 0 {
		return 0
	}
	return math.Pow(end/start, 1/years) - 1
}

// MaxDrawdown returns the largest recorded drawdown ratio over the run,
// read directly off the journal's own high-water-mark tracking.
func MaxDrawdown(j journal.Journal, _ quant.Timeframe) float64 {
	return Max(j.GetMetric(journal.MetricDrawdown), quant.Timeframe{})
}

// WinRate computes the fraction of equity-curve steps that moved
// non-negatively from the prior step, a step-level proxy for trade win
// rate when per-trade P&L isn't separately tracked by the journal.
func WinRate(j journal.Journal, _ quant.Timeframe) float64 {
	eq := j.GetMetric(journal.MetricEquity)
	if len(eq) < 2 {
		return 0
	}
	wins := 0
	for i := 1; i < len(eq); i++ {
		if eq[i].Value >= eq[i-1].Value {
			wins++
		}
	}
	return float64(wins) / float64(len(eq)-1)
}

// SharpeRatio computes the annualized Sharpe ratio of the equity
// curve's step returns against riskFreeRate (an annual rate), using
// stepsPerYear to annualize the per-step mean and standard deviation.
func SharpeRatio(riskFreeRate float64, stepsPerYear float64) Func {
	return func(j journal.Journal, _ quant.Timeframe) float64 {
		eq := j.GetMetric(journal.MetricEquity)
		if len(eq) < 3 {
			return 0
		}
		returns := make([]float64, 0, len(eq)-1)
		for i := 1; i < len(eq); i++ {
			prev := eq[i-1].Value
			if prev == 0 {
				continue
			}
			returns = append(returns, eq[i].Value/prev-1)
		}
		if len(returns) < 2 {
			return 0
		}

		var mean float64
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		var variance float64
		for _, r := range returns {
			d := r - mean
			variance += d * d
		}
		variance /= float64(len(returns) - 1)
		stddev := math.Sqrt(variance)
		if stddev == 0 {
			return 0
		}

		perStepRf := riskFreeRate / stepsPerYear
		return (mean - perStepRf) / stddev * math.Sqrt(stepsPerYear)
	}
}
