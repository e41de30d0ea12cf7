package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stavrosk/weltfolio/internal/clients/yahoo"
	"github.com/stavrosk/weltfolio/pkg/formulas"
)

type stubPrices struct {
	series      []formulas.PricePoint
	historyErr  error
	latest      map[string]float64
	latestErr   error
	historyHits int
}

func (s *stubPrices) GetDailyHistory(ctx context.Context, symbol, period string) ([]formulas.PricePoint, error) {
	s.historyHits++
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.series, nil
}

func (s *stubPrices) GetLatestClose(ctx context.Context, symbol string) (float64, error) {
	if s.latestErr != nil {
		return 0, s.latestErr
	}
	return s.latest[symbol], nil
}

type stubSpreads struct {
	hasKey bool
	value  float64
	err    error
}

func (s *stubSpreads) HasAPIKey() bool {
	return s.hasKey
}

func (s *stubSpreads) GetLatestValue(ctx context.Context, seriesID string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.value, nil
}

func day(offset int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func testSeries() []formulas.PricePoint {
	// Peak at 100 then a fall to 60 and a partial recovery to 75
	prices := []float64{80, 90, 100, 85, 70, 60, 68, 75}
	series := make([]formulas.PricePoint, len(prices))
	for i, p := range prices {
		series[i] = formulas.PricePoint{Date: day(i), Close: p}
	}
	return series
}

func testConfig() Config {
	return Config{
		IndexTicker: "URTH",
		Period:      "5y",
		CacheTTL:    time.Hour,
		Log:         zerolog.Nop(),
	}
}

func TestSnapshotAggregates(t *testing.T) {
	prices := &stubPrices{
		series: testSeries(),
		latest: map[string]float64{yahoo.VIXSymbol: 22.5},
	}
	spreads := &stubSpreads{hasKey: true, value: 1.87}

	svc := newService(prices, spreads, testConfig())
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.Drawdown)
	assert.Equal(t, 75.0, snap.Drawdown.CurrentPrice)
	assert.Equal(t, 100.0, snap.Drawdown.ATH)
	assert.Equal(t, -25.0, snap.Drawdown.DrawdownPct)
	assert.Equal(t, 60.0, snap.Drawdown.Trough)

	require.NotNil(t, snap.VIX)
	assert.Equal(t, 22.5, *snap.VIX)

	require.NotNil(t, snap.CreditSpread)
	assert.Equal(t, 1.87, *snap.CreditSpread)
	assert.False(t, snap.SpreadEstimated)

	assert.Len(t, snap.PriceChart, len(testSeries()))
	assert.Len(t, snap.DrawdownChart, len(testSeries()))
	assert.Equal(t, -25.0, snap.DrawdownChart[len(snap.DrawdownChart)-1].Value)
}

func TestSnapshotServedFromCache(t *testing.T) {
	prices := &stubPrices{
		series: testSeries(),
		latest: map[string]float64{yahoo.VIXSymbol: 15},
	}
	svc := newService(prices, &stubSpreads{}, testConfig())

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, prices.historyHits, "second snapshot must come from cache")
}

func TestRefreshBypassesCache(t *testing.T) {
	prices := &stubPrices{
		series: testSeries(),
		latest: map[string]float64{yahoo.VIXSymbol: 15},
	}
	svc := newService(prices, &stubSpreads{}, testConfig())

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, prices.historyHits)
}

func TestInvalidateDropsCache(t *testing.T) {
	prices := &stubPrices{
		series: testSeries(),
		latest: map[string]float64{yahoo.VIXSymbol: 15},
	}
	svc := newService(prices, &stubSpreads{}, testConfig())

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	svc.Invalidate()
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, prices.historyHits)
}

func TestSpreadFallsBackToVIXEstimate(t *testing.T) {
	prices := &stubPrices{
		series: testSeries(),
		latest: map[string]float64{yahoo.VIXSymbol: 30},
	}

	t.Run("no API key", func(t *testing.T) {
		svc := newService(prices, &stubSpreads{hasKey: false}, testConfig())
		snap, err := svc.Refresh(context.Background())
		require.NoError(t, err)

		require.NotNil(t, snap.CreditSpread)
		assert.InDelta(t, 0.5+30*0.09, *snap.CreditSpread, 1e-9)
		assert.True(t, snap.SpreadEstimated)
	})

	t.Run("FRED failure", func(t *testing.T) {
		svc := newService(prices, &stubSpreads{hasKey: true, err: errors.New("rate limited")}, testConfig())
		snap, err := svc.Refresh(context.Background())
		require.NoError(t, err)

		require.NotNil(t, snap.CreditSpread)
		assert.True(t, snap.SpreadEstimated)
	})
}

func TestDegradedSnapshotWithoutSources(t *testing.T) {
	prices := &stubPrices{
		historyErr: errors.New("upstream down"),
		latestErr:  errors.New("upstream down"),
	}
	svc := newService(prices, &stubSpreads{}, testConfig())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err, "a degraded snapshot is still a snapshot")

	assert.Nil(t, snap.Drawdown)
	assert.Nil(t, snap.VIX)
	assert.Nil(t, snap.CreditSpread)
	assert.Equal(t, 0.0, snap.DrawdownPct())
	assert.Nil(t, snap.Trough())
	assert.Nil(t, snap.CurrentPrice())
}
