package market

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/stavrosk/weltfolio/internal/clients/fred"
	"github.com/stavrosk/weltfolio/internal/clients/yahoo"
	"github.com/stavrosk/weltfolio/pkg/formulas"
)

// chartWindow is roughly two trading years of daily closes.
const chartWindow = 504

// Provider supplies market snapshots to the HTTP layer.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// priceSource is the slice of the Yahoo client the service needs.
type priceSource interface {
	GetDailyHistory(ctx context.Context, symbol, period string) ([]formulas.PricePoint, error)
	GetLatestClose(ctx context.Context, symbol string) (float64, error)
}

// spreadSource is the slice of the FRED client the service needs.
type spreadSource interface {
	HasAPIKey() bool
	GetLatestValue(ctx context.Context, seriesID string) (float64, error)
}

// Config holds market service configuration.
type Config struct {
	IndexTicker string        // index used for drawdown tracking, e.g. "URTH"
	Period      string        // history range, e.g. "5y"
	CacheTTL    time.Duration // snapshot staleness window
	Log         zerolog.Logger
}

// Service aggregates price history, VIX and credit-spread data into
// dashboard snapshots, caching the result for the configured TTL. A failed
// source degrades the snapshot rather than failing it: the classifier
// treats missing stress indicators as not-stressed.
type Service struct {
	prices  priceSource
	spreads spreadSource
	ticker  string
	period  string
	cache   *snapshotCache
	log     zerolog.Logger
}

// NewService creates a market data service over the given clients.
func NewService(prices *yahoo.Client, spreads *fred.Client, cfg Config) *Service {
	return newService(prices, spreads, cfg)
}

func newService(prices priceSource, spreads spreadSource, cfg Config) *Service {
	ticker := cfg.IndexTicker
	if ticker == "" {
		ticker = "URTH"
	}
	period := cfg.Period
	if period == "" {
		period = "5y"
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Service{
		prices:  prices,
		spreads: spreads,
		ticker:  ticker,
		period:  period,
		cache:   newSnapshotCache(ttl),
		log:     cfg.Log.With().Str("service", "market").Logger(),
	}
}

// Snapshot returns the current market snapshot, served from cache while
// fresh.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cache.get(); ok {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches all sources and replaces the cached snapshot.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{LastUpdated: time.Now().UTC()}

	series, err := s.prices.GetDailyHistory(ctx, s.ticker, s.period)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", s.ticker).Msg("Failed to fetch index history")
	} else {
		snap.Drawdown = formulas.CalculateDrawdownStats(series)

		recent := series
		if len(recent) > chartWindow {
			recent = recent[len(recent)-chartWindow:]
		}
		snap.PriceChart = priceChart(recent)
		snap.DrawdownChart = drawdownChart(recent)

		closes := formulas.Closes(series)
		snap.Indicators.RSI14 = formulas.CalculateRSI(closes, 14)
		snap.Indicators.AnnualizedVol = formulas.CalculateVolatility(closes)
	}

	snap.VIX = s.fetchVIX(ctx)
	snap.CreditSpread, snap.SpreadEstimated = s.fetchCreditSpread(ctx, snap.VIX)

	s.cache.put(snap)
	s.log.Info().
		Bool("have_history", snap.Drawdown != nil).
		Bool("have_vix", snap.VIX != nil).
		Bool("have_spread", snap.CreditSpread != nil).
		Bool("spread_estimated", snap.SpreadEstimated).
		Msg("Market snapshot refreshed")

	return snap, nil
}

// Invalidate drops the cached snapshot so the next call refetches.
func (s *Service) Invalidate() {
	s.cache.invalidate()
}

func (s *Service) fetchVIX(ctx context.Context) *float64 {
	val, err := s.prices.GetLatestClose(ctx, yahoo.VIXSymbol)
	if err != nil {
		s.log.Warn().Err(err).Msg("VIX fetch failed")
		return nil
	}
	v := round2(val)
	return &v
}

// fetchCreditSpread prefers the FRED BBB OAS series. Without an API key, or
// when FRED fails, it estimates the spread from the VIX level
// (VIX 12 -> ~1.6, VIX 30 -> ~3.2, VIX 50 -> ~5.0).
func (s *Service) fetchCreditSpread(ctx context.Context, vix *float64) (*float64, bool) {
	if s.spreads != nil && s.spreads.HasAPIKey() {
		val, err := s.spreads.GetLatestValue(ctx, fred.SpreadSeries)
		if err == nil {
			v := round2(val)
			return &v, false
		}
		s.log.Warn().Err(err).Msg("FRED fetch failed, falling back to VIX estimate")
	}

	if vix == nil {
		return nil, false
	}
	estimated := round2(0.5 + *vix*0.09)
	return &estimated, true
}

func priceChart(series []formulas.PricePoint) []ChartPoint {
	out := make([]ChartPoint, 0, len(series))
	for _, p := range series {
		out = append(out, ChartPoint{
			Date:  p.Date.Format("2006-01-02"),
			Value: round2(p.Close),
		})
	}
	return out
}

func drawdownChart(series []formulas.PricePoint) []ChartPoint {
	dd := formulas.DrawdownSeries(series)
	out := make([]ChartPoint, 0, len(series))
	for i, p := range series {
		out = append(out, ChartPoint{
			Date:  p.Date.Format("2006-01-02"),
			Value: dd[i],
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
