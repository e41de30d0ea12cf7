package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stavrosk/weltfolio/internal/clients/fred"
	"github.com/stavrosk/weltfolio/internal/clients/yahoo"
	"github.com/stavrosk/weltfolio/internal/config"
	"github.com/stavrosk/weltfolio/internal/database"
	"github.com/stavrosk/weltfolio/internal/modules/allocation"
	"github.com/stavrosk/weltfolio/internal/modules/catalog"
	"github.com/stavrosk/weltfolio/internal/modules/market"
	"github.com/stavrosk/weltfolio/internal/modules/weights"
	"github.com/stavrosk/weltfolio/internal/scheduler"
	"github.com/stavrosk/weltfolio/internal/server"
	"github.com/stavrosk/weltfolio/pkg/logger"
)

func main() {
	// Load configuration first so the log level is honored
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting weltfolio")

	// Instrument catalog (optionally overridden from TOML)
	cat, err := catalog.NewLoader(log).Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load instrument catalog")
	}

	// Database for persisted weight overrides
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Market data provider
	marketService := market.NewService(
		yahoo.NewClient(log),
		fred.NewClient(cfg.FredAPIKey, log),
		market.Config{
			IndexTicker: cfg.IndexTicker,
			CacheTTL:    cfg.CacheTTL,
			Log:         log,
		},
	)

	// Background snapshot refresh keeps the cache warm
	sched := scheduler.New(log)
	refreshJob := scheduler.NewMarketRefreshJob(marketService, log)
	if err := sched.AddJob("@every 25m", refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register market refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		Catalog:     cat,
		Allocator:   allocation.New(cat),
		MarketData:  marketService,
		WeightsRepo: weights.NewRepository(db.Conn(), log),
		DevMode:     cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
