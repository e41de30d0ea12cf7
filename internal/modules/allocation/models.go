package allocation

import "github.com/stavrosk/weltfolio/internal/modules/catalog"

// Position is a single target holding in an allocation plan.
type Position struct {
	Key          catalog.Key `json:"key"`
	Name         string      `json:"name"`
	ISIN         string      `json:"isin"`
	Index        string      `json:"index"`
	TER          float64     `json:"ter"`
	TargetWeight float64     `json:"target_weight"` // fraction of total portfolio (0-1)
	TargetValue  float64     `json:"target_value"`  // in portfolio currency
	CurrentValue float64     `json:"current_value"`
	TradeValue   float64     `json:"trade_value"` // positive = buy, negative = sell
}

// Result is a complete allocation plan for one portfolio value and regime.
type Result struct {
	PortfolioValue   float64    `json:"portfolio_value"`
	Regime           string     `json:"regime"`
	EquityPct        float64    `json:"equity_pct"`
	ReservePct       float64    `json:"reserve_pct"`
	EquityValue      float64    `json:"equity_value"`
	ReserveValue     float64    `json:"reserve_value"`
	Positions        []Position `json:"positions"`
	SimplePositions  []Position `json:"simple_positions"`
	WeightedTER      float64    `json:"weighted_ter"` // percentage, rounded to 4 decimals
	RebalanceActions []string   `json:"rebalance_actions"`
}

// Options carries the optional allocator inputs. Nil weight maps fall back
// to the catalog defaults; a nil holdings map means no current positions.
type Options struct {
	Holdings       map[catalog.Key]float64
	EquityWeights  map[catalog.Key]float64
	ReserveWeights map[catalog.Key]float64
}
