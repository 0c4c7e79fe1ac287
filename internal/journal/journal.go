// Package journal tracks time-series metrics across a backtest run:
// equity, cash, drawdown and exposure, captured on every step. Grounded
// on 02b98edd_SAbdulRahuman-opense-ai-agents's Engine.Run equity-curve
// accumulation (one EquityPoint appended per bar processed).
package journal

import (
	"time"

	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Point is one sample of a named metric.
type Point struct {
	Time  time.Time
	Value float64
}

// Journal is the contract the kernel drives once per step.
type Journal interface {
	// Track records the account snapshot observed at event's time.
	Track(event quant.Event, acc ledger.Account) error
	// MetricNames lists every series Track has produced so far.
	MetricNames() []string
	// GetMetric returns the recorded series for name, oldest first.
	GetMetric(name string) []Point
	// Flush finalizes the run (e.g. pushes a metrics sink); a no-op for
	// the in-memory reference implementation.
	Flush() error
}

const (
	MetricEquity   = "equity"
	MetricCash     = "cash"
	MetricDrawdown = "drawdown"
	MetricExposure = "exposure"
)

// MemoryJournal is the reference Journal: every metric lives as an
// in-memory slice, used directly by single runs and read back by the
// orchestrator's scoring functions.
type MemoryJournal struct {
	rates   ledger.ExchangeRates
	series  map[string][]Point
	peak    float64
	hasPeak bool
}

// New builds a MemoryJournal that converts cash/position values to the
// account's base currency via rates.
func New(rates ledger.ExchangeRates) *MemoryJournal {
	return &MemoryJournal{rates: rates, series: make(map[string][]Point)}
}

func (j *MemoryJournal) Track(event quant.Event, acc ledger.Account) error {
	equity, err := acc.Equity(j.rates)
	if err != nil {
		return err
	}
	eq := equity.Float()

	var cash float64
	for _, amt := range acc.Cash.Amounts() {
		rate, err := j.rates.Convert(amt, acc.BaseCurrency, event.Time)
		if err != nil {
			return err
		}
		cash += amt.Float() * rate
	}

	var exposure float64
	for _, pos := range acc.Positions {
		mv := quant.NewAmount(pos.Asset.Currency, pos.MarketValue())
		rate, err := j.rates.Convert(mv, acc.BaseCurrency, event.Time)
		if err != nil {
			return err
		}
		v := mv.Float() * rate
		if v < 0 {
			v = -v
		}
		exposure += v
	}

	if !j.hasPeak || eq > j.peak {
		j.peak = eq
		j.hasPeak = true
	}
	var drawdown float64
	if j.peak > 0 {
		drawdown = (j.peak - eq) / j.peak
	}

	j.append(MetricEquity, event.Time, eq)
	j.append(MetricCash, event.Time, cash)
	j.append(MetricExposure, event.Time, exposure)
	j.append(MetricDrawdown, event.Time, drawdown)
	return nil
}

func (j *MemoryJournal) append(name string, at time.Time, value float64) {
	j.series[name] = append(j.series[name], Point{Time: at, Value: value})
}

func (j *MemoryJournal) MetricNames() []string {
	names := make([]string, 0, len(j.series))
	for name := range j.series {
		names = append(names, name)
	}
	return names
}

func (j *MemoryJournal) GetMetric(name string) []Point {
	out := make([]Point, len(j.series[name]))
	copy(out, j.series[name])
	return out
}

func (j *MemoryJournal) Flush() error { return nil }

// Reset clears every recorded series, for reuse across sweep runs.
func (j *MemoryJournal) Reset() {
	j.series = make(map[string][]Point)
	j.peak = 0
	j.hasPeak = false
}
