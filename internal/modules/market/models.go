package market

import (
	"time"

	"github.com/stavrosk/weltfolio/pkg/formulas"
)

// ChartPoint is one dated value in a dashboard chart series.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Indicators carries supplementary index statistics for the dashboard.
type Indicators struct {
	RSI14         *float64 `json:"rsi_14"`
	AnnualizedVol *float64 `json:"annualized_vol"`
}

// Snapshot aggregates everything the regime dashboard needs. Drawdown is
// nil when no price history could be fetched; VIX and CreditSpread are nil
// when their sources were unavailable.
type Snapshot struct {
	Drawdown        *formulas.DrawdownStats `json:"drawdown"`
	VIX             *float64                `json:"vix"`
	CreditSpread    *float64                `json:"credit_spread"`
	SpreadEstimated bool                    `json:"spread_estimated"` // true when derived from VIX, not FRED
	DrawdownChart   []ChartPoint            `json:"drawdown_chart"`
	PriceChart      []ChartPoint            `json:"price_chart"`
	Indicators      Indicators              `json:"indicators"`
	LastUpdated     time.Time               `json:"last_updated"`
}

// DrawdownPct returns the snapshot's drawdown percentage, or 0 when no
// history was available. Zero drawdown classifies as regime A.
func (s *Snapshot) DrawdownPct() float64 {
	if s.Drawdown == nil {
		return 0
	}
	return s.Drawdown.DrawdownPct
}

// Trough returns the trough price of the current drawdown episode, if known.
func (s *Snapshot) Trough() *float64 {
	if s.Drawdown == nil {
		return nil
	}
	v := s.Drawdown.Trough
	return &v
}

// CurrentPrice returns the latest index close, if known.
func (s *Snapshot) CurrentPrice() *float64 {
	if s.Drawdown == nil {
		return nil
	}
	v := s.Drawdown.CurrentPrice
	return &v
}
