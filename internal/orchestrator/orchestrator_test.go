package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/roboquant-go/roboquant/internal/account"
	"github.com/roboquant-go/roboquant/internal/broker"
	"github.com/roboquant-go/roboquant/internal/journal"
	"github.com/roboquant-go/roboquant/internal/kernel"
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
	"github.com/roboquant-go/roboquant/internal/search"
	"github.com/roboquant-go/roboquant/internal/search/score"
	"github.com/roboquant-go/roboquant/internal/strategy"
)

func testAsset() quant.Asset {
	return quant.NewAsset("TEST", quant.AssetStock, quant.GetCurrency("USD"), "SIM")
}

func buyAndHold(threshold float64) strategy.Strategy {
	return &buyAndHoldStrategy{threshold: threshold}
}

// buyAndHoldStrategy buys once the first time price crosses threshold,
// then never trades again: a minimal strategy for exercising the
// orchestrator's run plumbing, not a realistic trading rule.
type buyAndHoldStrategy struct {
	threshold float64
	bought    bool
}

func (s *buyAndHoldStrategy) Create(event quant.Event, acc ledger.Account) []order.Instruction {
	if s.bought {
		return nil
	}
	price, ok := event.PriceOf(testAsset(), quant.PriceClose)
	if !ok || price < s.threshold {
		return nil
	}
	s.bought = true
	size, _ := quant.NewSize(1)
	return []order.Instruction{order.NewMarketOrder(testAsset(), size, order.Day(), "entry")}
}

func (s *buyAndHoldStrategy) Reset() { s.bought = false }

func testFactory(p search.Params) (strategy.Strategy, kernel.Broker) {
	b := broker.New(broker.Config{
		Base:           quant.GetCurrency("USD"),
		InitialDeposit: quant.NewAmount(quant.GetCurrency("USD"), 10000),
		Rates:          ledger.NewFixedRates(nil),
		AccountModel:   account.CashAccount{},
	})
	return buyAndHold(p["threshold"]), b
}

func barEvents(base time.Time, prices []float64, step time.Duration) []quant.Event {
	asset := testAsset()
	out := make([]quant.Event, len(prices))
	for i, price := range prices {
		out[i] = quant.NewEvent(base.Add(time.Duration(i)*step), struct {
			Asset quant.Asset
			Item  quant.PriceItem
		}{asset, quant.TradePrice{Price: price}})
	}
	return out
}

func newTestOrchestrator(events []quant.Event) *Orchestrator {
	return New(Config{
		Events:           events,
		Factory:          testFactory,
		NewJournal:       func() journal.Journal { return journal.New(ledger.NewFixedRates(nil)) },
		Score:            score.CAGR,
		ChannelCapacity:  4,
		HeartbeatTimeout: 10 * time.Millisecond,
		Concurrency:      2,
	})
}

func TestSingleRunScoresOverTheFullTimeframe(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := barEvents(base, []float64{100, 105, 110, 120}, 24*time.Hour)
	orch := newTestOrchestrator(events)

	tf := quant.Timeframe{Start: events[0].Time, End: events[len(events)-1].Time, Inclusive: true}
	result, err := orch.SingleRun(context.Background(), tf, search.Params{"threshold": 100}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Validation {
		t.Fatalf("expected a non-validation run")
	}
	if result.RunID == "" {
		t.Fatalf("expected a non-empty run ID")
	}
}

func TestWalkForwardProducesOneResultPerWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	events := barEvents(base, prices, time.Hour)
	orch := newTestOrchestrator(events)

	results, err := orch.WalkForward(context.Background(), 5*time.Hour, 0, false, search.Params{"threshold": 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one window result")
	}
	for _, r := range results {
		if r.Timeframe.IsEmpty() {
			t.Fatalf("expected a non-empty window timeframe")
		}
	}
}

func TestWalkForwardRejectsOverlapWhenAnchored(t *testing.T) {
	orch := newTestOrchestrator(nil)
	_, err := orch.WalkForward(context.Background(), time.Hour, time.Minute, true, search.Params{})
	if err == nil {
		t.Fatalf("expected an error for anchored overlap")
	}
}

func TestMonteCarloProducesRequestedSampleCount(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + float64(i%5)
	}
	events := barEvents(base, prices, time.Hour)
	orch := newTestOrchestrator(events)

	results, err := orch.MonteCarlo(context.Background(), 5*time.Hour, 3, 7, search.Params{"threshold": 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(results))
	}
}

func TestOptimizerPicksBestTrainScoreAndValidates(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 10)
	for i := range prices {
		prices[i] = 100 + float64(i)*2
	}
	events := barEvents(base, prices, time.Hour)
	orch := newTestOrchestrator(events)
	opt := NewOptimizer(orch)

	space := search.NewGridSearch(map[string][]float64{"threshold": {100, 200}})
	full := quant.Timeframe{Start: events[0].Time, End: events[len(events)-1].Time, Inclusive: true}

	results, err := opt.Run(context.Background(), space, full, full)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != space.Size()+1 {
		t.Fatalf("expected %d training results plus 1 validation, got %d", space.Size(), len(results))
	}
	last := results[len(results)-1]
	if !last.Validation {
		t.Fatalf("expected the final result to be the validation run")
	}
}
