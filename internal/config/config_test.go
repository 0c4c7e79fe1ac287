package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Kernel.ChannelCapacity <= 0 {
		t.Fatal("expected positive channel capacity")
	}
	if cfg.Kernel.HeartbeatTimeout <= 0 {
		t.Fatal("expected positive heartbeat timeout")
	}
	if cfg.Account.Model != "cash" {
		t.Fatalf("expected account.model=cash by default, got %q", cfg.Account.Model)
	}
	if cfg.Account.InitialDeposit <= 0 {
		t.Fatal("expected positive initial deposit")
	}
	if cfg.RunMode != "single" {
		t.Fatalf("expected run_mode=single by default, got %q", cfg.RunMode)
	}
	if cfg.Orchestrator.MonteCarlo.Samples <= 0 {
		t.Fatal("expected positive monte_carlo.samples by default")
	}
	if cfg.Journal.StepsPerYear <= 0 {
		t.Fatal("expected positive journal.steps_per_year by default")
	}
}

func TestLoadFromYAML(t *testing.T) {
	yaml := `
run_mode: optimize
kernel:
  channel_capacity: 128
  heartbeat_timeout: 2s
account:
  model: margin
  initial_deposit: 50000
  leverage: 4
broker:
  pricing: fixedbps
  slippage_bps: 5
  cost: fixedbps
  fee_bps: 10
orchestrator:
  concurrency: 4
  train_period: 720h
  validate_period: 168h
search:
  kind: grid
  grid:
    threshold: [1, 2, 3]
`
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte(yaml)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := LoadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RunMode != "optimize" {
		t.Fatalf("expected run_mode optimize, got %q", cfg.RunMode)
	}
	if cfg.Kernel.ChannelCapacity != 128 {
		t.Fatalf("expected channel_capacity 128, got %d", cfg.Kernel.ChannelCapacity)
	}
	if cfg.Kernel.HeartbeatTimeout != 2*time.Second {
		t.Fatalf("expected heartbeat_timeout 2s, got %v", cfg.Kernel.HeartbeatTimeout)
	}
	if cfg.Account.Model != "margin" {
		t.Fatalf("expected account.model margin, got %q", cfg.Account.Model)
	}
	if cfg.Account.InitialDeposit != 50000 {
		t.Fatalf("expected initial_deposit 50000, got %f", cfg.Account.InitialDeposit)
	}
	if cfg.Account.Leverage != 4 {
		t.Fatalf("expected leverage 4, got %f", cfg.Account.Leverage)
	}
	if cfg.Broker.Pricing != "fixedbps" {
		t.Fatalf("expected broker.pricing fixedbps, got %q", cfg.Broker.Pricing)
	}
	if cfg.Broker.FeeBps != 10 {
		t.Fatalf("expected broker.fee_bps 10, got %f", cfg.Broker.FeeBps)
	}
	if cfg.Orchestrator.Concurrency != 4 {
		t.Fatalf("expected concurrency 4, got %d", cfg.Orchestrator.Concurrency)
	}
	if cfg.Orchestrator.TrainPeriod != 720*time.Hour {
		t.Fatalf("expected train_period 720h, got %v", cfg.Orchestrator.TrainPeriod)
	}
	if cfg.Search.Kind != "grid" {
		t.Fatalf("expected search.kind grid, got %q", cfg.Search.Kind)
	}
	if len(cfg.Search.Grid["threshold"]) != 3 {
		t.Fatalf("expected 3 threshold values, got %d", len(cfg.Search.Grid["threshold"]))
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ROBOQUANT_RUN_MODE", "walkforward")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.RunMode != "walkforward" {
		t.Fatalf("expected run_mode walkforward from env, got %q", cfg.RunMode)
	}
}

func TestLoadFileInvalidPath(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte("{{invalid yaml")); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = LoadFile(f.Name())
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyEnvAccountModel(t *testing.T) {
	t.Setenv("ROBOQUANT_ACCOUNT_MODEL", "MARGIN")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Account.Model != "margin" {
		t.Fatalf("expected account.model margin from env, got %q", cfg.Account.Model)
	}
}

func TestApplyEnvOrchestratorConcurrency(t *testing.T) {
	t.Setenv("ROBOQUANT_ORCHESTRATOR_CONCURRENCY", "8")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Orchestrator.Concurrency != 8 {
		t.Fatalf("expected concurrency 8 from env, got %d", cfg.Orchestrator.Concurrency)
	}
}

func TestApplyEnvJournalPrometheus(t *testing.T) {
	t.Setenv("ROBOQUANT_JOURNAL_PROMETHEUS", "true")
	cfg := Default()
	cfg.ApplyEnv()
	if !cfg.Journal.Prometheus {
		t.Fatal("expected journal.prometheus true from env")
	}
}

func TestApplyEnvLogLevel(t *testing.T) {
	t.Setenv("ROBOQUANT_LOG_LEVEL", "DEBUG")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level debug from env, got %q", cfg.LogLevel)
	}
}
