package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/stavrosk/weltfolio/internal/modules/allocation"
	"github.com/stavrosk/weltfolio/internal/modules/catalog"
	"github.com/stavrosk/weltfolio/internal/modules/recovery"
	"github.com/stavrosk/weltfolio/internal/modules/regime"
)

const defaultPortfolioValue = 100000

// handleDashboard returns the market snapshot with the regime it implies
// and the recovery levels for the current drawdown episode.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.marketData.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Dashboard snapshot failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	state := regime.Classify(snap.DrawdownPct(), snap.CreditSpread, snap.VIX)
	levels := recovery.Compute(state.Regime, snap.Trough(), snap.CurrentPrice())

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"market":   snap,
		"regime":   state,
		"recovery": levels,
	})
}

type allocateRequest struct {
	PortfolioValue  *float64           `json:"portfolio_value"`
	CurrentHoldings map[string]float64 `json:"current_holdings"`
	EquityWeights   map[string]float64 `json:"equity_weights"`
	ReserveWeights  map[string]float64 `json:"reserve_weights"`
}

// handleAllocate computes target allocations for a portfolio value under
// the live market regime. Explicit weights in the request win over persisted
// overrides, which win over the catalog defaults.
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	pv := float64(defaultPortfolioValue)
	if req.PortfolioValue != nil {
		pv = *req.PortfolioValue
	}

	snap, err := s.marketData.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Allocate snapshot failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	state := regime.Classify(snap.DrawdownPct(), snap.CreditSpread, snap.VIX)

	equityWeights, reserveWeights, err := s.resolveWeights(req.EquityWeights, req.ReserveWeights)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := s.allocator.Compute(pv, state, allocation.Options{
		Holdings:       toKeyMap(req.CurrentHoldings),
		EquityWeights:  equityWeights,
		ReserveWeights: reserveWeights,
	})

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"allocation": allocationPayload(result),
	})
}

type simulateRequest struct {
	DrawdownPct    *float64           `json:"drawdown_pct"`
	CreditSpread   *float64           `json:"credit_spread"`
	VIX            *float64           `json:"vix"`
	PortfolioValue *float64           `json:"portfolio_value"`
	EquityWeights  map[string]float64 `json:"equity_weights"`
	ReserveWeights map[string]float64 `json:"reserve_weights"`
}

// handleSimulate classifies a hypothetical drawdown/spread/VIX combination
// and returns the allocation it would imply.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	drawdown := 0.0
	if req.DrawdownPct != nil {
		drawdown = *req.DrawdownPct
	}
	pv := float64(defaultPortfolioValue)
	if req.PortfolioValue != nil {
		pv = *req.PortfolioValue
	}

	state := regime.Classify(drawdown, req.CreditSpread, req.VIX)

	equityWeights, reserveWeights, err := s.resolveWeights(req.EquityWeights, req.ReserveWeights)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := s.allocator.Compute(pv, state, allocation.Options{
		EquityWeights:  equityWeights,
		ReserveWeights: reserveWeights,
	})

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"regime":     state,
		"allocation": allocationPayload(result),
	})
}

// handleReference returns the configuration tables, including any saved
// weight overrides.
func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	overrides, err := s.weightsRepo.Get()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load weight overrides")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	effectiveEquity := s.cat.EquityWeights()
	if overrides.Equity != nil {
		effectiveEquity = overrides.Equity
	}
	effectiveReserve := s.cat.ReserveWeights()
	if overrides.Reserve != nil {
		effectiveReserve = overrides.Reserve
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"equity_weights":           effectiveEquity,
		"reserve_weights":          effectiveReserve,
		"original_equity_weights":  s.cat.EquityWeights(),
		"original_reserve_weights": s.cat.ReserveWeights(),
		"has_saved_defaults":       overrides.HasAny(),
		"etfs":                     s.cat.Instruments(),
		"simple_etfs":              s.cat.SimpleInstruments(),
	})
}

type saveWeightsRequest struct {
	EquityWeights  map[string]float64 `json:"equity_weights"`
	ReserveWeights map[string]float64 `json:"reserve_weights"`
}

// handleSaveWeights persists custom weights as the new defaults. Unknown
// instrument keys are rejected rather than silently dropped.
func (s *Server) handleSaveWeights(w http.ResponseWriter, r *http.Request) {
	var req saveWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if len(req.EquityWeights) == 0 && len(req.ReserveWeights) == 0 {
		s.writeError(w, http.StatusBadRequest, "Provide equity_weights and/or reserve_weights")
		return
	}

	if len(req.EquityWeights) > 0 {
		weightsMap, err := validateGroupKeys(req.EquityWeights, s.cat.EquityKeys())
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "equity_weights: "+err.Error())
			return
		}
		if err := s.weightsRepo.SaveEquity(weightsMap); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if len(req.ReserveWeights) > 0 {
		weightsMap, err := validateGroupKeys(req.ReserveWeights, s.cat.ReserveKeys())
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "reserve_weights: "+err.Error())
			return
		}
		if err := s.weightsRepo.SaveReserve(weightsMap); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleDeleteWeights removes saved overrides, restoring catalog defaults.
func (s *Server) handleDeleteWeights(w http.ResponseWriter, r *http.Request) {
	if err := s.weightsRepo.Delete(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// resolveWeights picks the effective weight maps: explicit request weights,
// then persisted overrides, then nil (allocator falls back to the catalog).
func (s *Server) resolveWeights(equity, reserve map[string]float64) (map[catalog.Key]float64, map[catalog.Key]float64, error) {
	equityOut := toKeyMap(equity)
	reserveOut := toKeyMap(reserve)

	if equityOut != nil && reserveOut != nil {
		return equityOut, reserveOut, nil
	}

	overrides, err := s.weightsRepo.Get()
	if err != nil {
		return nil, nil, err
	}
	if equityOut == nil {
		equityOut = overrides.Equity
	}
	if reserveOut == nil {
		reserveOut = overrides.Reserve
	}
	return equityOut, reserveOut, nil
}

// allocationPayload shapes an allocation result for the API, rounding the
// sleeve values for presentation.
func allocationPayload(result allocation.Result) map[string]interface{} {
	return map[string]interface{}{
		"portfolio_value":   result.PortfolioValue,
		"regime":            result.Regime,
		"equity_pct":        result.EquityPct,
		"reserve_pct":       result.ReservePct,
		"equity_value":      round2(result.EquityValue),
		"reserve_value":     round2(result.ReserveValue),
		"weighted_ter":      result.WeightedTER,
		"rebalance_actions": result.RebalanceActions,
		"positions":         result.Positions,
		"simple_positions":  result.SimplePositions,
	}
}

func validateGroupKeys(src map[string]float64, allowed []catalog.Key) (map[catalog.Key]float64, error) {
	known := make(map[catalog.Key]bool, len(allowed))
	for _, k := range allowed {
		known[k] = true
	}

	out := make(map[catalog.Key]float64, len(src))
	for k, v := range src {
		key := catalog.Key(k)
		if !known[key] {
			return nil, &unknownKeyError{key: k}
		}
		out[key] = v
	}
	return out, nil
}

type unknownKeyError struct {
	key string
}

func (e *unknownKeyError) Error() string {
	return "unknown instrument key: " + e.key
}

func toKeyMap(src map[string]float64) map[catalog.Key]float64 {
	if src == nil {
		return nil
	}
	out := make(map[catalog.Key]float64, len(src))
	for k, v := range src {
		out[catalog.Key(k)] = v
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
