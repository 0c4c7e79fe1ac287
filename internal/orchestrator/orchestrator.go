// Package orchestrator runs one or more kernel sweeps over a dataset:
// a single pass, walk-forward windows, Monte Carlo resamples, or a full
// train/validate parameter search. Grounded on
// 300c3d6a_benedict-anokye-davies-atlas-ai__...orchestrator.go.go's
// WalkForwardOptimizer/metrics composition (the closest corpus analogue
// to a sweep driver) and on internal/strategy/selector.go's
// scored-candidate ranking, generalized from ranking markets to ranking
// RunResults. Parallel fan-out uses golang.org/x/sync/errgroup bounded
// to runtime.NumCPU, as the teacher's worker pool bounds its own
// concurrency.
package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roboquant-go/roboquant/internal/feed"
	"github.com/roboquant-go/roboquant/internal/journal"
	"github.com/roboquant-go/roboquant/internal/kernel"
	"github.com/roboquant-go/roboquant/internal/quant"
	"github.com/roboquant-go/roboquant/internal/search"
	"github.com/roboquant-go/roboquant/internal/search/score"
	"github.com/roboquant-go/roboquant/internal/strategy"
)

// Factory builds a fresh, independent (strategy, broker) pair for one
// run, parameterized by p. A fresh pair per run keeps runs isolated per
// the kernel's single-threaded-per-run contract.
type Factory func(p search.Params) (strategy.Strategy, kernel.Broker)

// RunResult is the outcome of one kernel run.
type RunResult struct {
	Params     search.Params
	Score      float64
	Timeframe  quant.Timeframe
	RunID      string
	Validation bool
}

// Config bundles the dataset and collaborators every sweep in this
// Orchestrator shares.
type Config struct {
	// Events is the full in-memory dataset windows are sliced from.
	Events []quant.Event
	// Factory builds the strategy/broker pair for a parameter set.
	Factory Factory
	// NewJournal builds a fresh Journal for one run.
	NewJournal func() journal.Journal
	// Score reduces a finished run's journal to a rankable scalar.
	Score score.Func

	ChannelCapacity  int
	HeartbeatTimeout time.Duration
	// Concurrency bounds the parallel run pool; 0 defaults to
	// runtime.NumCPU(), matching the spec's "worker pool sized to
	// detected CPU cores by default".
	Concurrency int
}

// Orchestrator drives single runs, sweeps and parameter searches over
// one shared dataset.
type Orchestrator struct {
	cfg Config
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	return &Orchestrator{cfg: cfg}
}

// eventsWithin returns the subset of o.cfg.Events falling inside tf, in
// their existing time order.
func (o *Orchestrator) eventsWithin(tf quant.Timeframe) []quant.Event {
	out := make([]quant.Event, 0, len(o.cfg.Events))
	for _, e := range o.cfg.Events {
		if tf.Contains(e.Time) {
			out = append(out, e)
		}
	}
	return out
}

// SingleRun executes one kernel run over timeframe with params,
// returning its scored result.
func (o *Orchestrator) SingleRun(ctx context.Context, timeframe quant.Timeframe, params search.Params, validation bool) (RunResult, error) {
	events := o.eventsWithin(timeframe)
	mf := feed.NewMemoryFeed(events)

	strat, brk := o.cfg.Factory(params)
	jrnl := o.cfg.NewJournal()

	k := kernel.New(kernel.Config{
		Feed:             mf,
		Broker:           brk,
		Strategy:         strat,
		Journal:          jrnl,
		Timeframe:        timeframe,
		ChannelCapacity:  o.cfg.ChannelCapacity,
		HeartbeatTimeout: o.cfg.HeartbeatTimeout,
	})

	start := timeframe.Start
	if len(events) > 0 {
		start = events[0].Time
	}
	if err := k.Run(ctx, start); err != nil {
		return RunResult{}, fmt.Errorf("single run: %w", err)
	}

	return RunResult{
		Params:     params.Clone(),
		Score:      o.cfg.Score(jrnl, timeframe),
		Timeframe:  timeframe,
		RunID:      uuid.NewString(),
		Validation: validation,
	}, nil
}

// WalkForward splits the dataset's span into contiguous windows of
// period length with overlap back-step (anchored grows every window
// from the dataset start instead; overlap must be 0 when anchored) and
// runs params over each window in parallel.
func (o *Orchestrator) WalkForward(ctx context.Context, period, overlap time.Duration, anchored bool, params search.Params) ([]RunResult, error) {
	if anchored && overlap != 0 {
		return nil, fmt.Errorf("orchestrator: walk-forward overlap must be 0 when anchored")
	}

	full := datasetTimeframe(o.cfg.Events)
	windows := full.Split(period, overlap)
	if anchored {
		for i := range windows {
			windows[i].Start = full.Start
		}
	}

	return o.runParallel(ctx, windows, params, false)
}

// MonteCarlo draws samples timeframes of period length uniformly from
// the dataset's span (seeded by seed for reproducibility) and runs
// params over each in parallel.
func (o *Orchestrator) MonteCarlo(ctx context.Context, period time.Duration, samples int, seed int64, params search.Params) ([]RunResult, error) {
	full := datasetTimeframe(o.cfg.Events)
	rng := newRand01(seed)
	windows := full.Sample(period, samples, rng)
	return o.runParallel(ctx, windows, params, false)
}

// errgroupFor builds an errgroup bounded to this Orchestrator's
// configured concurrency, shared by every parallel fan-out below.
func (o *Orchestrator) errgroupFor(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	return g, gctx
}

func (o *Orchestrator) runParallel(ctx context.Context, windows []quant.Timeframe, params search.Params, validation bool) ([]RunResult, error) {
	results := make([]RunResult, len(windows))

	g, gctx := o.errgroupFor(ctx)
	for i, tf := range windows {
		i, tf := i, tf
		g.Go(func() error {
			r, err := o.SingleRun(gctx, tf, params, validation)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func datasetTimeframe(events []quant.Event) quant.Timeframe {
	if len(events) == 0 {
		return quant.Empty()
	}
	return quant.Timeframe{Start: events[0].Time, End: events[len(events)-1].Time, Inclusive: true}
}
