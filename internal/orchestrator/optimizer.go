package orchestrator

import (
	"context"
	"fmt"

	"github.com/roboquant-go/roboquant/internal/quant"
	"github.com/roboquant-go/roboquant/internal/search"
)

// Optimizer iterates a search.Space, trains every parameter set on a
// training timeframe in parallel (bounded by the Orchestrator's
// Concurrency), picks the max-scoring parameters, and validates that
// winner on a disjoint validation timeframe.
type Optimizer struct {
	orch *Orchestrator
}

// NewOptimizer builds an Optimizer over orch's dataset and factory.
func NewOptimizer(orch *Orchestrator) *Optimizer {
	return &Optimizer{orch: orch}
}

// Run trains every parameter set in space on train, then validates the
// best-scoring set on validate. It returns every training RunResult
// followed by the single validation RunResult, so callers can inspect
// the full sweep alongside the chosen winner.
func (opt *Optimizer) Run(ctx context.Context, space search.Space, train, validate quant.Timeframe) ([]RunResult, error) {
	paramSets := make([]search.Params, 0, space.Size())
	space.Iterate(func(p search.Params) {
		paramSets = append(paramSets, p)
	})
	if len(paramSets) == 0 {
		return nil, fmt.Errorf("orchestrator: search space produced no parameter sets")
	}

	trainResults := make([]RunResult, len(paramSets))
	g, gctx := opt.orch.errgroupFor(ctx)
	for i, p := range paramSets {
		i, p := i, p
		g.Go(func() error {
			r, err := opt.orch.SingleRun(gctx, train, p, false)
			if err != nil {
				return err
			}
			trainResults[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := trainResults[0]
	for _, r := range trainResults[1:] {
		if r.Score > best.Score {
			best = r
		}
	}

	validation, err := opt.orch.SingleRun(ctx, validate, best.Params, true)
	if err != nil {
		return nil, fmt.Errorf("optimizer validation run: %w", err)
	}

	return append(trainResults, validation), nil
}
