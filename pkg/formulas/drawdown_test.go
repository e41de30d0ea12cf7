package formulas

import (
	"testing"
	"time"
)

func series(closes ...float64) []PricePoint {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]PricePoint, len(closes))
	for i, c := range closes {
		out[i] = PricePoint{Date: base.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestCalculateDrawdownStats(t *testing.T) {
	stats := CalculateDrawdownStats(series(80, 100, 70, 50, 65))

	if stats == nil {
		t.Fatal("expected stats for non-empty series")
	}
	if stats.ATH != 100 {
		t.Errorf("ATH = %v, want 100", stats.ATH)
	}
	if stats.Trough != 50 {
		t.Errorf("trough = %v, want 50", stats.Trough)
	}
	if stats.CurrentPrice != 65 {
		t.Errorf("current = %v, want 65", stats.CurrentPrice)
	}
	if stats.DrawdownPct != -35.0 {
		t.Errorf("drawdown = %v, want -35.0", stats.DrawdownPct)
	}
}

func TestCalculateDrawdownStatsAtHigh(t *testing.T) {
	stats := CalculateDrawdownStats(series(50, 60, 70))

	if stats.DrawdownPct != 0 {
		t.Errorf("drawdown at a fresh high = %v, want 0", stats.DrawdownPct)
	}
	if stats.ATH != 70 {
		t.Errorf("ATH = %v, want 70", stats.ATH)
	}
}

func TestCalculateDrawdownStatsEmpty(t *testing.T) {
	if CalculateDrawdownStats(nil) != nil {
		t.Error("expected nil for empty series")
	}
}

func TestCalculateDrawdownStatsTroughTracksDeepestEpisode(t *testing.T) {
	// Two episodes: -30% then a shallower -10%. The trough belongs to the
	// deeper one even though it is older.
	stats := CalculateDrawdownStats(series(100, 70, 95, 110, 99))

	if stats.Trough != 70 {
		t.Errorf("trough = %v, want 70 (deepest episode)", stats.Trough)
	}
	if stats.ATH != 110 {
		t.Errorf("ATH = %v, want 110", stats.ATH)
	}
	if stats.DrawdownPct != -10.0 {
		t.Errorf("drawdown = %v, want -10.0", stats.DrawdownPct)
	}
}

func TestDrawdownSeries(t *testing.T) {
	dd := DrawdownSeries(series(100, 80, 100, 120))

	want := []float64{0, -20, 0, 0}
	if len(dd) != len(want) {
		t.Fatalf("length = %d, want %d", len(dd), len(want))
	}
	for i := range want {
		if dd[i] != want[i] {
			t.Errorf("dd[%d] = %v, want %v", i, dd[i], want[i])
		}
	}
}

func TestCloses(t *testing.T) {
	closes := Closes(series(1, 2, 3))
	if len(closes) != 3 || closes[2] != 3 {
		t.Errorf("unexpected closes: %v", closes)
	}
}
