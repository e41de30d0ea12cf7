package regime

import (
	"fmt"
	"math"
)

// Regime allocation table (equity / reserve fractions of the portfolio)
const (
	RegimeAEquity  = 0.80
	RegimeAReserve = 0.20

	RegimeBEquity  = 0.90
	RegimeBReserve = 0.10

	RegimeCEquity  = 1.00
	RegimeCReserve = 0.00
)

// Drawdown triggers, measured from the all-time high as decimal fractions
const (
	RegimeBDrawdownTrigger = -0.20
	RegimeCDrawdownTrigger = -0.40
)

// Credit spread thresholds (BBB OAS in percentage points)
const (
	SpreadElevated = 2.50
	SpreadExtreme  = 4.50
)

// VIXStressLevel is the VIX close at or above which volatility alone
// confirms market stress.
const VIXStressLevel = 30.0

// State is the outcome of a regime classification. Equity and reserve
// fractions always sum to 1.0.
type State struct {
	Regime      string   `json:"regime"` // "A", "B" or "C"
	Label       string   `json:"label"`
	EquityPct   float64  `json:"equity_pct"`   // target equity allocation (0-1)
	ReservePct  float64  `json:"reserve_pct"`  // target reserve allocation (0-1)
	DrawdownPct float64  `json:"drawdown_pct"` // input drawdown (negative %)
	Spread      *float64 `json:"spread"`
	VIX         *float64 `json:"vix"`
	TriggersMet []string `json:"triggers_met"`
	Description string   `json:"description"`
}

// Classify determines the market regime from the drawdown depth and the
// credit-spread / VIX stress indicators.
//
// drawdownPct is the decline from the all-time high. Magnitudes above 1 are
// read as percentages (-25.0 means -25%), magnitudes at or below 1 as
// decimal fractions (-0.25 means -25%). Inputs between -1% and -100%
// expressed as fractions are therefore indistinguishable from percentage
// inputs near -1; callers holding fractions should multiply by 100 first.
//
// A nil spread or VIX simply cannot confirm stress; Classify is defined for
// every input and never fails.
func Classify(drawdownPct float64, creditSpread, vix *float64) State {
	drawdown := drawdownPct
	if math.Abs(drawdownPct) > 1 {
		drawdown = drawdownPct / 100.0
	}

	var triggers []string

	spreadElevated := false
	spreadExtreme := false
	if creditSpread != nil {
		switch {
		case *creditSpread >= SpreadExtreme:
			spreadExtreme = true
			spreadElevated = true
			triggers = append(triggers,
				fmt.Sprintf("Credit spread %.2f%% >= %.2f%% (extreme)", *creditSpread, SpreadExtreme))
		case *creditSpread >= SpreadElevated:
			spreadElevated = true
			triggers = append(triggers,
				fmt.Sprintf("Credit spread %.2f%% >= %.2f%% (elevated)", *creditSpread, SpreadElevated))
		}
	}

	vixStressed := false
	if vix != nil && *vix >= VIXStressLevel {
		vixStressed = true
		triggers = append(triggers, fmt.Sprintf("VIX %.1f >= %.0f", *vix, VIXStressLevel))
	}

	stressConfirmed := spreadElevated || vixStressed

	// Most severe regime wins, so C is checked first.
	if drawdown <= RegimeCDrawdownTrigger && (spreadExtreme || stressConfirmed) {
		triggers = prependDrawdownTrigger(triggers, drawdownPct, RegimeCDrawdownTrigger)
		return State{
			Regime:      "C",
			Label:       "Escalation",
			EquityPct:   RegimeCEquity,
			ReservePct:  RegimeCReserve,
			DrawdownPct: drawdownPct,
			Spread:      creditSpread,
			VIX:         vix,
			TriggersMet: triggers,
			Description: "Full-scale market panic detected. Deploy ALL remaining reserves " +
				"into equities. Target allocation: 100% Equity / 0% Reserve.",
		}
	}

	if drawdown <= RegimeBDrawdownTrigger && stressConfirmed {
		triggers = prependDrawdownTrigger(triggers, drawdownPct, RegimeBDrawdownTrigger)
		return State{
			Regime:      "B",
			Label:       "Equity Scarcity",
			EquityPct:   RegimeBEquity,
			ReservePct:  RegimeBReserve,
			DrawdownPct: drawdownPct,
			Spread:      creditSpread,
			VIX:         vix,
			TriggersMet: triggers,
			Description: "Equity scarcity detected. Deploy 50% of the Investment Reserve " +
				"into equities. Target allocation: 90% Equity / 10% Reserve.",
		}
	}

	if len(triggers) == 0 {
		triggers = []string{"No crisis triggers active"}
	}

	return State{
		Regime:      "A",
		Label:       "Normal",
		EquityPct:   RegimeAEquity,
		ReservePct:  RegimeAReserve,
		DrawdownPct: drawdownPct,
		Spread:      creditSpread,
		VIX:         vix,
		TriggersMet: triggers,
		Description: "Markets operating normally. Maintain standard allocation: " +
			"80% Equity / 20% Reserve. Rebalance quarterly.",
	}
}

func prependDrawdownTrigger(triggers []string, drawdownPct, threshold float64) []string {
	msg := fmt.Sprintf("Drawdown %.1f%% <= %.0f%%", drawdownPct, threshold*100)
	return append([]string{msg}, triggers...)
}
