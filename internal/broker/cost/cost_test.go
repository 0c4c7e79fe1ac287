package cost

import "testing"

func TestCommissionBasedClampsToMinAndMax(t *testing.T) {
	model := CommissionBased{PerShare: 0.01, Min: 1, Max: 5}

	if got := model.Fee(10, 100); got != 1 {
		t.Fatalf("expected min clamp of 1, got %v", got)
	}
	if got := model.Fee(10000, 100); got != 5 {
		t.Fatalf("expected max clamp of 5, got %v", got)
	}
}

func TestPercentageFeeOnNotional(t *testing.T) {
	model := PercentageFee{Pct: 0.1}
	got := model.Fee(100, 50)
	want := 100.0 * 50.0 * 0.1 / 100
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
