package allocation

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/stavrosk/weltfolio/internal/modules/catalog"
	"github.com/stavrosk/weltfolio/internal/modules/regime"
)

// rebalanceThreshold is the minimum trade size, as a fraction of the
// portfolio, that produces a rebalance action. Smaller deviations are left
// alone to avoid churning.
const rebalanceThreshold = 0.01

// Allocator turns a regime state and a portfolio value into concrete
// position sizes and rebalancing trades. It is stateless apart from the
// immutable catalog and safe for concurrent use.
type Allocator struct {
	cat *catalog.Catalog
}

// New creates an allocator over the given instrument catalog.
func New(cat *catalog.Catalog) *Allocator {
	return &Allocator{cat: cat}
}

// Compute builds the target allocation for the full model and the
// simplified 3-ETF model.
//
// Equity weights are normalized to sum to 1 before being scaled by the
// regime's equity fraction; reserve weights are taken as fractions of the
// reserve sleeve as given. Weight keys resolve against the whole universe,
// so any catalog instrument may be weighted into either sleeve; keys not in
// the catalog are dropped. Positions follow the catalog's declared order,
// equity legs first.
func (a *Allocator) Compute(portfolioValue float64, state regime.State, opts Options) Result {
	holdings := opts.Holdings
	if holdings == nil {
		holdings = map[catalog.Key]float64{}
	}

	equityWeights := opts.EquityWeights
	if equityWeights == nil {
		equityWeights = a.cat.EquityWeights()
	}
	reserveWeights := opts.ReserveWeights
	if reserveWeights == nil {
		reserveWeights = a.cat.ReserveWeights()
	}

	normedEquity := normalize(equityWeights)

	var positions []Position
	totalTERWeight := 0.0

	for _, key := range a.cat.Keys() {
		weight, ok := normedEquity[key]
		if !ok {
			continue
		}
		inst, ok := a.cat.Lookup(key)
		if !ok {
			continue
		}

		absWeight := weight * state.EquityPct
		targetValue := portfolioValue * absWeight
		currentValue := holdings[key]

		positions = append(positions, Position{
			Key:          key,
			Name:         inst.Name,
			ISIN:         inst.ISIN,
			Index:        inst.Index,
			TER:          inst.TER,
			TargetWeight: absWeight,
			TargetValue:  targetValue,
			CurrentValue: currentValue,
			TradeValue:   targetValue - currentValue,
		})
		totalTERWeight += absWeight * inst.TER
	}

	for _, key := range a.cat.Keys() {
		weight, ok := reserveWeights[key]
		if !ok {
			continue
		}

		if key == catalog.Cash {
			absWeight := weight * state.ReservePct
			targetValue := portfolioValue * absWeight
			currentValue := holdings[catalog.Cash]
			positions = append(positions, Position{
				Key:          catalog.Cash,
				Name:         "Cash / High-Yield Savings",
				ISIN:         "N/A",
				Index:        "N/A",
				TER:          0.0,
				TargetWeight: absWeight,
				TargetValue:  targetValue,
				CurrentValue: currentValue,
				TradeValue:   targetValue - currentValue,
			})
			continue
		}

		inst, ok := a.cat.Lookup(key)
		if !ok {
			continue
		}

		absWeight := weight * state.ReservePct
		targetValue := portfolioValue * absWeight
		currentValue := holdings[key]

		positions = append(positions, Position{
			Key:          key,
			Name:         inst.Name,
			ISIN:         inst.ISIN,
			Index:        inst.Index,
			TER:          inst.TER,
			TargetWeight: absWeight,
			TargetValue:  targetValue,
			CurrentValue: currentValue,
			TradeValue:   targetValue - currentValue,
		})
		totalTERWeight += absWeight * inst.TER
	}

	simplePositions := a.computeSimple(portfolioValue, state)

	var actions []string
	for _, p := range positions {
		if math.Abs(p.TradeValue) > rebalanceThreshold*portfolioValue {
			direction := "BUY"
			if p.TradeValue < 0 {
				direction = "SELL"
			}
			actions = append(actions, fmt.Sprintf("%s €%s of %s (%s)",
				direction, humanize.CommafWithDigits(math.Abs(p.TradeValue), 0), p.Name, p.Key))
		}
	}

	return Result{
		PortfolioValue:   portfolioValue,
		Regime:           state.Regime,
		EquityPct:        state.EquityPct,
		ReservePct:       state.ReservePct,
		EquityValue:      portfolioValue * state.EquityPct,
		ReserveValue:     portfolioValue * state.ReservePct,
		Positions:        positions,
		SimplePositions:  simplePositions,
		WeightedTER:      round4(totalTERWeight * 100),
		RebalanceActions: actions,
	}
}

// computeSimple scales the fixed 70/10/20 model by the regime's equity
// fraction relative to the 80% baseline. When the reserve drops below 20%
// the main index leg absorbs the remainder so the three legs still sum to 1.
func (a *Allocator) computeSimple(portfolioValue float64, state regime.State) []Position {
	var positions []Position

	for _, key := range a.cat.SimpleKeys() {
		inst, ok := a.cat.SimpleLookup(key)
		if !ok {
			continue
		}

		var weight float64
		switch key {
		case catalog.Cash:
			weight = state.ReservePct
		case catalog.SmallCaps:
			weight = 0.10 * (state.EquityPct / regime.RegimeAEquity)
		default:
			weight = inst.Weight * (state.EquityPct / regime.RegimeAEquity)
			if state.ReservePct < regime.RegimeAReserve {
				weight = state.EquityPct - 0.10*(state.EquityPct/regime.RegimeAEquity)
			}
		}

		positions = append(positions, Position{
			Key:          key,
			Name:         inst.Name,
			ISIN:         inst.ISIN,
			TER:          inst.TER,
			TargetWeight: weight,
			TargetValue:  portfolioValue * weight,
		})
	}

	return positions
}

// normalize scales weights to sum to 1. A zero sum passes the weights
// through untouched rather than dividing by zero.
func normalize(weights map[catalog.Key]float64) map[catalog.Key]float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return weights
	}

	out := make(map[catalog.Key]float64, len(weights))
	for k, w := range weights {
		out[k] = w / sum
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
