package config

import (
	"fmt"
	"strings"
)

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.RunMode))
	switch mode {
	case "", "single", "walkforward", "montecarlo", "optimize":
	default:
		return fmt.Errorf("run_mode must be one of single|walkforward|montecarlo|optimize, got %q", c.RunMode)
	}

	if c.Kernel.ChannelCapacity <= 0 {
		return fmt.Errorf("kernel.channel_capacity must be > 0, got %d", c.Kernel.ChannelCapacity)
	}
	if c.Kernel.HeartbeatTimeout <= 0 {
		return fmt.Errorf("kernel.heartbeat_timeout must be > 0, got %s", c.Kernel.HeartbeatTimeout)
	}

	accountModel := strings.ToLower(strings.TrimSpace(c.Account.Model))
	switch accountModel {
	case "cash", "margin", "regt":
	default:
		return fmt.Errorf("account.model must be one of cash|margin|regt, got %q", c.Account.Model)
	}
	if c.Account.InitialDeposit <= 0 {
		return fmt.Errorf("account.initial_deposit must be > 0, got %f", c.Account.InitialDeposit)
	}
	if (accountModel == "margin" || accountModel == "regt") && c.Account.Leverage <= 0 {
		return fmt.Errorf("account.leverage must be > 0 for model %q, got %f", c.Account.Model, c.Account.Leverage)
	}

	pricing := strings.ToLower(strings.TrimSpace(c.Broker.Pricing))
	switch pricing {
	case "", "noslippage", "fixedbps":
	default:
		return fmt.Errorf("broker.pricing must be one of noslippage|fixedbps, got %q", c.Broker.Pricing)
	}
	if c.Broker.SlippageBps < 0 {
		return fmt.Errorf("broker.slippage_bps must be >= 0, got %f", c.Broker.SlippageBps)
	}
	cost := strings.ToLower(strings.TrimSpace(c.Broker.Cost))
	switch cost {
	case "", "nofee", "fixedbps", "pershare":
	default:
		return fmt.Errorf("broker.cost must be one of nofee|fixedbps|pershare, got %q", c.Broker.Cost)
	}
	if c.Broker.FeeBps < 0 {
		return fmt.Errorf("broker.fee_bps must be >= 0, got %f", c.Broker.FeeBps)
	}
	if c.Broker.FeePerShare < 0 {
		return fmt.Errorf("broker.fee_per_share must be >= 0, got %f", c.Broker.FeePerShare)
	}

	if c.Journal.StepsPerYear <= 0 {
		return fmt.Errorf("journal.steps_per_year must be > 0, got %f", c.Journal.StepsPerYear)
	}

	strategyKind := strings.ToLower(strings.TrimSpace(c.Strategy.Kind))
	switch strategyKind {
	case "marketmaker", "momentum":
	default:
		return fmt.Errorf("strategy.kind must be one of marketmaker|momentum, got %q", c.Strategy.Kind)
	}
	if strings.TrimSpace(c.Strategy.Asset.Symbol) == "" {
		return fmt.Errorf("strategy.asset.symbol must be set")
	}

	if c.Orchestrator.Concurrency < 0 {
		return fmt.Errorf("orchestrator.concurrency must be >= 0, got %d", c.Orchestrator.Concurrency)
	}
	if c.Orchestrator.WalkForward.Anchored && c.Orchestrator.WalkForward.Overlap != 0 {
		return fmt.Errorf("orchestrator.walk_forward.overlap must be 0 when anchored is true")
	}
	if mode == "walkforward" && c.Orchestrator.WalkForward.Period <= 0 {
		return fmt.Errorf("orchestrator.walk_forward.period must be > 0, got %s", c.Orchestrator.WalkForward.Period)
	}
	if mode == "montecarlo" {
		if c.Orchestrator.MonteCarlo.Period <= 0 {
			return fmt.Errorf("orchestrator.monte_carlo.period must be > 0, got %s", c.Orchestrator.MonteCarlo.Period)
		}
		if c.Orchestrator.MonteCarlo.Samples <= 0 {
			return fmt.Errorf("orchestrator.monte_carlo.samples must be > 0, got %d", c.Orchestrator.MonteCarlo.Samples)
		}
	}
	if mode == "optimize" {
		if c.Orchestrator.TrainPeriod <= 0 {
			return fmt.Errorf("orchestrator.train_period must be > 0, got %s", c.Orchestrator.TrainPeriod)
		}
		if c.Orchestrator.ValidatePeriod <= 0 {
			return fmt.Errorf("orchestrator.validate_period must be > 0, got %s", c.Orchestrator.ValidatePeriod)
		}

		searchKind := strings.ToLower(strings.TrimSpace(c.Search.Kind))
		switch searchKind {
		case "", "empty":
		case "grid":
			if len(c.Search.Grid) == 0 {
				return fmt.Errorf("search.grid must name at least one parameter when search.kind is \"grid\"")
			}
			for name, values := range c.Search.Grid {
				if len(values) == 0 {
					return fmt.Errorf("search.grid[%q] must list at least one value", name)
				}
			}
		case "random":
			if c.Search.RandomSize <= 0 {
				return fmt.Errorf("search.random_size must be > 0 when search.kind is \"random\", got %d", c.Search.RandomSize)
			}
		default:
			return fmt.Errorf("search.kind must be one of empty|grid|random, got %q", c.Search.Kind)
		}
	}

	return nil
}
