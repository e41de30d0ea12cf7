package recovery

import "testing"

func f(v float64) *float64 {
	return &v
}

func TestComputeTargets(t *testing.T) {
	levels := Compute("C", f(60.0), f(75.0))

	if levels.RegimeCToBPrice == nil || *levels.RegimeCToBPrice != 90.0 {
		t.Errorf("C->B price = %v, want 90.0", levels.RegimeCToBPrice)
	}
	// Second rally compounds on the first target, not the trough
	if levels.RegimeBToAPrice == nil || *levels.RegimeBToAPrice != 112.5 {
		t.Errorf("B->A price = %v, want 112.5", levels.RegimeBToAPrice)
	}
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		wantB   float64
		wantA   float64
	}{
		{name: "halfway to B", current: 75.0, wantB: 50.0, wantA: 28.6},
		{name: "at B target", current: 90.0, wantB: 100.0, wantA: 57.1},
		{name: "beyond A target is capped", current: 150.0, wantB: 100.0, wantA: 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := Compute("C", f(60.0), f(tt.current))

			if levels.ProgressToB == nil || *levels.ProgressToB != tt.wantB {
				t.Errorf("progress to B = %v, want %.1f", levels.ProgressToB, tt.wantB)
			}
			if levels.ProgressToA == nil || *levels.ProgressToA != tt.wantA {
				t.Errorf("progress to A = %v, want %.1f", levels.ProgressToA, tt.wantA)
			}
		})
	}
}

func TestComputeNoProgressAtOrBelowTrough(t *testing.T) {
	levels := Compute("C", f(60.0), f(58.0))

	if levels.ProgressToB != nil || levels.ProgressToA != nil {
		t.Errorf("expected nil progress below trough, got %v / %v", levels.ProgressToB, levels.ProgressToA)
	}
	if levels.RegimeCToBPrice == nil {
		t.Error("thresholds should still be computed when price is below trough")
	}
}

func TestComputeMissingTrough(t *testing.T) {
	tests := []struct {
		name   string
		trough *float64
	}{
		{name: "nil trough", trough: nil},
		{name: "zero trough", trough: f(0)},
		{name: "negative trough", trough: f(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := Compute("A", tt.trough, f(100.0))

			if levels.RegimeCToBPrice != nil || levels.RegimeBToAPrice != nil {
				t.Error("threshold prices must be nil without a trough")
			}
			if levels.ProgressToB != nil || levels.ProgressToA != nil {
				t.Error("progress must be nil without a trough")
			}
			if levels.CurrentRegime != "A" {
				t.Errorf("regime not passed through: %s", levels.CurrentRegime)
			}
		})
	}
}

func TestComputeNonPositiveCurrentPrice(t *testing.T) {
	tests := []struct {
		name    string
		current *float64
	}{
		{name: "zero price", current: f(0)},
		{name: "negative price", current: f(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := Compute("C", f(60.0), tt.current)

			if levels.CurrentPrice != nil {
				t.Errorf("non-positive current price should be reported as unknown, got %v", *levels.CurrentPrice)
			}
			if levels.RegimeCToBPrice == nil || *levels.RegimeCToBPrice != 90.0 {
				t.Errorf("thresholds must still be computed: %v", levels.RegimeCToBPrice)
			}
			if levels.ProgressToB != nil {
				t.Errorf("no progress without a usable price, got %v", *levels.ProgressToB)
			}
		})
	}
}

func TestComputeRounding(t *testing.T) {
	levels := Compute("B", f(61.237), f(70.004))

	if *levels.TroughPrice != 61.24 {
		t.Errorf("trough not rounded to 2 decimals: %v", *levels.TroughPrice)
	}
	if *levels.CurrentPrice != 70.0 {
		t.Errorf("current price not rounded to 2 decimals: %v", *levels.CurrentPrice)
	}
	// 61.237 * 1.5 = 91.8555 -> 91.86
	if *levels.RegimeCToBPrice != 91.86 {
		t.Errorf("C->B price not rounded: %v", *levels.RegimeCToBPrice)
	}
}
