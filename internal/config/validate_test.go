package config

import "testing"

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got: %v", err)
	}
}

func TestValidateInvalidRunMode(t *testing.T) {
	cfg := Default()
	cfg.RunMode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid run_mode to fail validation")
	}
}

func TestValidateInvalidAccountModel(t *testing.T) {
	cfg := Default()
	cfg.Account.Model = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid account.model to fail validation")
	}
}

func TestValidateNonPositiveInitialDeposit(t *testing.T) {
	cfg := Default()
	cfg.Account.InitialDeposit = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected non-positive account.initial_deposit to fail validation")
	}
}

func TestValidateMarginRequiresLeverage(t *testing.T) {
	cfg := Default()
	cfg.Account.Model = "margin"
	cfg.Account.Leverage = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected margin model with zero leverage to fail validation")
	}
}

func TestValidateAnchoredWalkForwardRejectsOverlap(t *testing.T) {
	cfg := Default()
	cfg.Orchestrator.WalkForward.Anchored = true
	cfg.Orchestrator.WalkForward.Overlap = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected anchored walk-forward with nonzero overlap to fail validation")
	}
}

func TestValidateOptimizeRequiresGridParameters(t *testing.T) {
	cfg := Default()
	cfg.RunMode = "optimize"
	cfg.Search.Kind = "grid"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected grid search with no parameters to fail validation")
	}
}

func TestValidateOptimizeRequiresRandomSize(t *testing.T) {
	cfg := Default()
	cfg.RunMode = "optimize"
	cfg.Search.Kind = "random"
	cfg.Search.RandomSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected random search with zero size to fail validation")
	}
}

func TestValidateInvalidStrategyKind(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Kind = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid strategy.kind to fail validation")
	}
}

func TestValidateStrategyRequiresAssetSymbol(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Asset.Symbol = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty strategy.asset.symbol to fail validation")
	}
}
