// Package prom is a Journal sink that republishes the run's metrics as
// Prometheus gauges for a live dashboard, rather than holding the full
// series in memory. Grounded on
// 41eb3b21_autovant-trading-bot__execution_service.go.go's
// prometheus.NewGaugeVec/MustRegister package-level setup.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roboquant-go/roboquant/internal/journal"
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/quant"
)

// Sink publishes the latest value of each journal metric to Prometheus
// gauges labeled by run ID, so multiple concurrent orchestrator runs
// don't collide on one registry.
type Sink struct {
	runID string
	rates ledger.ExchangeRates

	equity   *prometheus.GaugeVec
	cash     *prometheus.GaugeVec
	drawdown *prometheus.GaugeVec
	exposure *prometheus.GaugeVec

	peak    float64
	hasPeak bool

	names map[string]struct{}
}

// NewSink registers its gauge vectors against reg (use
// prometheus.DefaultRegisterer for the global registry), reusing the
// vectors an earlier Sink already registered there, and returns a Sink
// scoped to runID.
func NewSink(reg prometheus.Registerer, runID string, rates ledger.ExchangeRates) *Sink {
	s := &Sink{
		runID: runID,
		rates: rates,
		equity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roboquant_equity",
			Help: "Current account equity in the base currency.",
		}, []string{"run_id"}),
		cash: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roboquant_cash",
			Help: "Current cash balance in the base currency.",
		}, []string{"run_id"}),
		drawdown: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roboquant_drawdown_ratio",
			Help: "Current drawdown from the equity high-water mark.",
		}, []string{"run_id"}),
		exposure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roboquant_exposure",
			Help: "Current gross position exposure in the base currency.",
		}, []string{"run_id"}),
		names: map[string]struct{}{
			journal.MetricEquity:   {},
			journal.MetricCash:     {},
			journal.MetricDrawdown: {},
			journal.MetricExposure: {},
		},
	}
	for _, gv := range []**prometheus.GaugeVec{&s.equity, &s.cash, &s.drawdown, &s.exposure} {
		if err := reg.Register(*gv); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			*gv = are.ExistingCollector.(*prometheus.GaugeVec)
		}
	}
	return s
}

func (s *Sink) Track(event quant.Event, acc ledger.Account) error {
	equity, err := acc.Equity(s.rates)
	if err != nil {
		return err
	}
	eq := equity.Float()

	var cash float64
	for _, amt := range acc.Cash.Amounts() {
		rate, err := s.rates.Convert(amt, acc.BaseCurrency, event.Time)
		if err != nil {
			return err
		}
		cash += amt.Float() * rate
	}

	var exposure float64
	for _, pos := range acc.Positions {
		mv := quant.NewAmount(pos.Asset.Currency, pos.MarketValue())
		rate, err := s.rates.Convert(mv, acc.BaseCurrency, event.Time)
		if err != nil {
			return err
		}
		v := mv.Float() * rate
		if v < 0 {
			v = -v
		}
		exposure += v
	}

	if !s.hasPeak || eq > s.peak {
		s.peak = eq
		s.hasPeak = true
	}
	var drawdown float64
	if s.peak > 0 {
		drawdown = (s.peak - eq) / s.peak
	}

	s.equity.WithLabelValues(s.runID).Set(eq)
	s.cash.WithLabelValues(s.runID).Set(cash)
	s.exposure.WithLabelValues(s.runID).Set(exposure)
	s.drawdown.WithLabelValues(s.runID).Set(drawdown)
	return nil
}

// MetricNames reports the fixed set of series this sink publishes.
func (s *Sink) MetricNames() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	return names
}

// GetMetric is unsupported: a Prometheus sink only ever exposes the
// latest value per series, scraped externally, not a queryable history.
func (s *Sink) GetMetric(name string) []journal.Point { return nil }

func (s *Sink) Flush() error { return nil }
