// Package config loads and validates the settings a roboquant run
// needs: kernel timing, the account/broker model selection, journal
// sinks, and the orchestrator's sweep and search-space parameters.
// Adapted from internal/config/config.go: same
// Default/LoadFile/ApplyEnv shape and yaml.v3 tagging, rescoped from
// Polymarket market-making parameters to backtest-engine parameters.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full settings surface for a roboquant run.
type Config struct {
	LogLevel string `yaml:"log_level"`
	RunMode  string `yaml:"run_mode"` // single, walkforward, montecarlo, optimize

	Kernel       KernelConfig       `yaml:"kernel"`
	Account      AccountConfig      `yaml:"account"`
	Broker       BrokerConfig       `yaml:"broker"`
	Journal      JournalConfig      `yaml:"journal"`
	Strategy     StrategyConfig     `yaml:"strategy"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Search       SearchConfig       `yaml:"search"`
}

// AssetConfig names the single instrument a run's built-in strategy
// trades.
type AssetConfig struct {
	Symbol   string `yaml:"symbol"`
	Exchange string `yaml:"exchange"`
	Currency string `yaml:"currency"`
}

// MarketMakerConfig parameterizes the built-in MarketMaker strategy.
// Adapted from the teacher's MakerConfig: same
// min-spread/spread-multiplier/inventory-skew/inventory-widen shape,
// rescoped from a quoted-USDC order size to a unit order size.
type MarketMakerConfig struct {
	MinSpreadBps         float64 `yaml:"min_spread_bps"`
	SpreadMultiplier     float64 `yaml:"spread_multiplier"`
	OrderSize            float64 `yaml:"order_size"`
	InventorySkewBps     float64 `yaml:"inventory_skew_bps"`
	InventoryWidenFactor float64 `yaml:"inventory_widen_factor"`
	MaxPosition          float64 `yaml:"max_position"`
}

// MomentumConfig parameterizes the built-in Momentum strategy. Adapted
// from the teacher's TakerConfig: same
// min-imbalance/depth-levels/cooldown shape, rescoped from a quoted
// USDC amount to a unit order size.
type MomentumConfig struct {
	MinImbalance float64       `yaml:"min_imbalance"`
	DepthLevels  int           `yaml:"depth_levels"`
	Size         float64       `yaml:"size"`
	Cooldown     time.Duration `yaml:"cooldown"`
}

// StrategyConfig selects and parameterizes the run's built-in strategy.
// A search.Space may override some of its numeric fields per parameter
// set by name: min_spread_bps, spread_multiplier, inventory_skew_bps,
// min_imbalance, size and depth_levels.
type StrategyConfig struct {
	Kind        string            `yaml:"kind"` // marketmaker, momentum
	Asset       AssetConfig       `yaml:"asset"`
	MarketMaker MarketMakerConfig `yaml:"market_maker"`
	Momentum    MomentumConfig    `yaml:"momentum"`
}

// KernelConfig sizes the feed channel and the run loop's heartbeat.
type KernelConfig struct {
	ChannelCapacity  int           `yaml:"channel_capacity"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
}

// AccountConfig selects the buying-power model and seeds the ledger.
type AccountConfig struct {
	Model          string  `yaml:"model"` // cash, margin, regt
	BaseCurrency   string  `yaml:"base_currency"`
	InitialDeposit float64 `yaml:"initial_deposit"`
	Leverage       float64 `yaml:"leverage"` // margin only; regt uses fixed leverage
}

// BrokerConfig selects the pricing and cost models the simulated
// broker applies to every fill.
type BrokerConfig struct {
	Pricing     string  `yaml:"pricing"` // noslippage, fixedbps
	SlippageBps float64 `yaml:"slippage_bps"`
	Cost        string  `yaml:"cost"` // nofee, fixedbps, pershare
	FeeBps      float64 `yaml:"fee_bps"`
	FeePerShare float64 `yaml:"fee_per_share"`
}

// JournalConfig controls the metrics sink and the risk-free rate used
// by Sharpe scoring.
type JournalConfig struct {
	Prometheus     bool    `yaml:"prometheus"`
	PrometheusAddr string  `yaml:"prometheus_addr"`
	RiskFreeRate   float64 `yaml:"risk_free_rate"`
	StepsPerYear   float64 `yaml:"steps_per_year"`
}

// WalkForwardConfig configures the walk-forward sweep.
type WalkForwardConfig struct {
	Period   time.Duration `yaml:"period"`
	Overlap  time.Duration `yaml:"overlap"`
	Anchored bool          `yaml:"anchored"`
}

// MonteCarloConfig configures the Monte Carlo resampling sweep.
type MonteCarloConfig struct {
	Period  time.Duration `yaml:"period"`
	Samples int           `yaml:"samples"`
	Seed    int64         `yaml:"seed"`
}

// OrchestratorConfig bounds the parallel run pool and configures each
// sweep kind, including the Optimizer's train/validate split.
type OrchestratorConfig struct {
	Concurrency    int               `yaml:"concurrency"`
	WalkForward    WalkForwardConfig `yaml:"walk_forward"`
	MonteCarlo     MonteCarloConfig  `yaml:"monte_carlo"`
	TrainPeriod    time.Duration     `yaml:"train_period"`
	ValidatePeriod time.Duration     `yaml:"validate_period"`
}

// SearchConfig selects and parameterizes the Optimizer's search.Space.
type SearchConfig struct {
	Kind        string               `yaml:"kind"` // empty, grid, random
	Grid        map[string][]float64 `yaml:"grid"`
	RandomSize  int                  `yaml:"random_size"`
	RandomSeed  int64                `yaml:"random_seed"`
	RandomLists map[string][]float64 `yaml:"random_lists"`
}

// Default returns the reference configuration: a single run against a
// cash account with no slippage or fees, ready to override via YAML or
// environment.
func Default() Config {
	return Config{
		LogLevel: "info",
		RunMode:  "single",
		Kernel: KernelConfig{
			ChannelCapacity:  64,
			HeartbeatTimeout: time.Second,
		},
		Account: AccountConfig{
			Model:          "cash",
			BaseCurrency:   "USD",
			InitialDeposit: 100000,
			Leverage:       2.0,
		},
		Broker: BrokerConfig{
			Pricing: "noslippage",
			Cost:    "nofee",
		},
		Journal: JournalConfig{
			PrometheusAddr: ":9090",
			RiskFreeRate:   0,
			StepsPerYear:   252,
		},
		Strategy: StrategyConfig{
			Kind:  "marketmaker",
			Asset: AssetConfig{Symbol: "ABC", Exchange: "XNAS", Currency: "USD"},
			MarketMaker: MarketMakerConfig{
				MinSpreadBps:         20,
				SpreadMultiplier:     1.5,
				OrderSize:            10,
				InventorySkewBps:     30,
				InventoryWidenFactor: 0.5,
				MaxPosition:          100,
			},
			Momentum: MomentumConfig{
				MinImbalance: 0.15,
				DepthLevels:  3,
				Size:         10,
				Cooldown:     60 * time.Second,
			},
		},
		Orchestrator: OrchestratorConfig{
			WalkForward: WalkForwardConfig{
				Period:  30 * 24 * time.Hour,
				Overlap: 0,
			},
			MonteCarlo: MonteCarloConfig{
				Period:  7 * 24 * time.Hour,
				Samples: 100,
				Seed:    1,
			},
			TrainPeriod:    180 * 24 * time.Hour,
			ValidatePeriod: 30 * 24 * time.Hour,
		},
		Search: SearchConfig{
			Kind: "empty",
		},
	}
}

// LoadFile reads path as YAML over Default(), so an omitted field keeps
// its default value.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides a small set of operationally relevant fields from
// the environment, for container/CI deployments that shouldn't need a
// config file edit per run.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("ROBOQUANT_LOG_LEVEL")); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ROBOQUANT_RUN_MODE")); v != "" {
		c.RunMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ROBOQUANT_ACCOUNT_MODEL")); v != "" {
		c.Account.Model = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ROBOQUANT_ORCHESTRATOR_CONCURRENCY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Orchestrator.Concurrency = n
		}
	}
	if v := os.Getenv("ROBOQUANT_JOURNAL_PROMETHEUS"); v != "" {
		c.Journal.Prometheus = strings.EqualFold(v, "true") || v == "1"
	}
}
