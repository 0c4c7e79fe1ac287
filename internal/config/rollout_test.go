package config

import "testing"

func TestApplyProfileQuickClampsSweepSizing(t *testing.T) {
	cfg := Default()
	cfg.Orchestrator.Concurrency = 64
	cfg.Orchestrator.MonteCarlo.Samples = 1000

	if err := ApplyProfile(&cfg, "quick"); err != nil {
		t.Fatalf("ApplyProfile: %v", err)
	}
	if cfg.Orchestrator.Concurrency != 2 {
		t.Fatalf("expected concurrency clamped to 2, got %d", cfg.Orchestrator.Concurrency)
	}
	if cfg.Orchestrator.MonteCarlo.Samples != 20 {
		t.Fatalf("expected samples clamped to 20, got %d", cfg.Orchestrator.MonteCarlo.Samples)
	}
}

func TestApplyProfileStandardLeavesConfigUnchanged(t *testing.T) {
	cfg := Default()
	cfg.Orchestrator.Concurrency = 6
	cfg.Orchestrator.MonteCarlo.Samples = 42

	if err := ApplyProfile(&cfg, "standard"); err != nil {
		t.Fatalf("ApplyProfile: %v", err)
	}
	if cfg.Orchestrator.Concurrency != 6 {
		t.Fatalf("expected concurrency unchanged at 6, got %d", cfg.Orchestrator.Concurrency)
	}
	if cfg.Orchestrator.MonteCarlo.Samples != 42 {
		t.Fatalf("expected samples unchanged at 42, got %d", cfg.Orchestrator.MonteCarlo.Samples)
	}
}

func TestApplyProfileThoroughRaisesSampleFloor(t *testing.T) {
	cfg := Default()
	cfg.Orchestrator.MonteCarlo.Samples = 10

	if err := ApplyProfile(&cfg, "thorough"); err != nil {
		t.Fatalf("ApplyProfile: %v", err)
	}
	if cfg.Orchestrator.MonteCarlo.Samples != 500 {
		t.Fatalf("expected samples raised to 500, got %d", cfg.Orchestrator.MonteCarlo.Samples)
	}
}

func TestApplyProfileUnknown(t *testing.T) {
	cfg := Default()
	if err := ApplyProfile(&cfg, "unknown-profile"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}
