package formulas

import (
	"math"
	"time"
)

// PricePoint is one daily close in a price series.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// DrawdownStats describes the current drawdown episode of a price series.
type DrawdownStats struct {
	CurrentPrice float64   `json:"current_price"`
	ATH          float64   `json:"ath"`
	ATHDate      time.Time `json:"ath_date"`
	DrawdownPct  float64   `json:"drawdown_pct"` // negative percentage, e.g. -25.3
	Trough       float64   `json:"trough"`       // close at the deepest drawdown
	TroughDate   time.Time `json:"trough_date"`
}

// CalculateDrawdownStats computes the drawdown from the running all-time
// high, the ATH itself and the trough of the deepest episode. Returns nil
// for an empty series.
func CalculateDrawdownStats(series []PricePoint) *DrawdownStats {
	if len(series) == 0 {
		return nil
	}

	ath := series[0].Close
	athDate := series[0].Date

	worst := 0.0
	trough := series[0].Close
	troughDate := series[0].Date

	for _, p := range series {
		if p.Close > ath {
			ath = p.Close
			athDate = p.Date
		}

		if ath > 0 {
			dd := (p.Close - ath) / ath
			if dd < worst {
				worst = dd
				trough = p.Close
				troughDate = p.Date
			}
		}
	}

	last := series[len(series)-1]
	currentDD := 0.0
	if ath > 0 {
		currentDD = (last.Close - ath) / ath
	}

	return &DrawdownStats{
		CurrentPrice: round2(last.Close),
		ATH:          round2(ath),
		ATHDate:      athDate,
		DrawdownPct:  round2(currentDD * 100),
		Trough:       round2(trough),
		TroughDate:   troughDate,
	}
}

// DrawdownSeries converts a price series into percentage drawdowns from the
// running maximum, one entry per input point.
func DrawdownSeries(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	peak := 0.0

	for i, p := range series {
		if p.Close > peak {
			peak = p.Close
		}
		if peak > 0 {
			out[i] = round2((p.Close - peak) / peak * 100)
		}
	}
	return out
}

// Closes extracts the close values of a price series.
func Closes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Close
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
