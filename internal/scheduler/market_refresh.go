package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stavrosk/weltfolio/internal/modules/market"
)

// MarketRefreshJob keeps the market snapshot cache warm so dashboard hits
// never pay the upstream fetch latency.
type MarketRefreshJob struct {
	service *market.Service
	log     zerolog.Logger
}

// NewMarketRefreshJob creates a new market refresh job.
func NewMarketRefreshJob(service *market.Service, log zerolog.Logger) *MarketRefreshJob {
	return &MarketRefreshJob{
		service: service,
		log:     log.With().Str("job", "market_refresh").Logger(),
	}
}

// Name returns the job name
func (j *MarketRefreshJob) Name() string {
	return "market_refresh"
}

// Run refreshes the market snapshot
func (j *MarketRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := j.service.Refresh(ctx); err != nil {
		return err
	}
	return nil
}
