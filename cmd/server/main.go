// Package main is the entry point for the persona portfolio engine.
// The persona holds a simulated portfolio, keeps market knowledge current,
// and periodically rebalances and trades on market signals.
//
// Startup order:
// 1. Configuration from environment variables (.env file supported)
// 2. Structured logging
// 3. Trade ledger (optional SQLite database)
// 4. Persona initialization from the saved snapshot in the data directory
// 5. Scheduled jobs (manage cycle, market research, ledger health)
// 6. HTTP API
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/persona/internal/clients/marketfeed"
	"github.com/aristath/persona/internal/config"
	"github.com/aristath/persona/internal/database"
	"github.com/aristath/persona/internal/events"
	"github.com/aristath/persona/internal/modules/persona"
	"github.com/aristath/persona/internal/modules/portfolio"
	"github.com/aristath/persona/internal/modules/trading"
	"github.com/aristath/persona/internal/scheduler"
	"github.com/aristath/persona/internal/server"
	"github.com/aristath/persona/pkg/logger"
)

const healthCheckSchedule = "@every 10m"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error is still reported
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting persona")

	eventManager := events.NewManager(log)

	// Trade ledger
	var ledgerDB *database.DB
	var recorder trading.TradeRecorder
	if cfg.LedgerEnabled {
		ledgerDB, err = database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, "ledger.db"),
			Profile: database.ProfileLedger,
			Name:    "ledger",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open ledger database")
		}
		defer ledgerDB.Close()

		if err := ledgerDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate ledger database")
		}
		recorder = trading.NewTradeRepository(ledgerDB.Conn(), log)
		log.Info().Str("path", ledgerDB.Path()).Msg("Trade ledger enabled")
	}

	personaCfg := persona.DefaultConfig()
	personaCfg.Name = cfg.PersonaName
	personaCfg.Role = cfg.PersonaRole
	personaCfg.RiskTolerance = cfg.RiskTolerance
	personaCfg.CashReserves = cfg.CashReserves
	personaCfg.Sizing.BuyFraction = cfg.SignalBuyFraction
	personaCfg.Sizing.SellFraction = cfg.SignalSellFraction
	personaCfg.SnapshotFormat, err = portfolio.ParseSnapshotFormat(cfg.SnapshotFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid snapshot format")
	}

	agent := persona.New(personaCfg, recorder, eventManager, log)
	// A missing snapshot is logged by Initialize; the persona starts empty
	_ = agent.Initialize(cfg.DataDir)

	// Scheduled jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.ManageSchedule, scheduler.NewManageCycleJob(agent, 0, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule manage cycle")
	}
	if cfg.MarketFeedURL != "" {
		feed := marketfeed.NewClient(cfg.MarketFeedURL, log)
		if err := sched.AddJob(cfg.ResearchSchedule, scheduler.NewResearchJob(agent, feed, 0, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule market research")
		}
	} else {
		log.Info().Msg("MARKET_FEED_URL not set, scheduled market research disabled")
	}
	if ledgerDB != nil {
		if err := sched.AddJob(healthCheckSchedule, scheduler.NewHealthCheckJob(ledgerDB, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule ledger health check")
		}
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:          log,
		Agent:        agent,
		EventManager: eventManager,
		LedgerDB:     ledgerDB,
		DataDir:      cfg.DataDir,
		Port:         cfg.Port,
		DevMode:      cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Waits for a running job to finish
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if path, err := agent.SaveSnapshot(cfg.DataDir); err != nil {
		log.Error().Err(err).Msg("Failed to save portfolio snapshot")
	} else {
		log.Info().Str("path", path).Msg("Portfolio snapshot saved")
	}

	log.Info().Msg("Server stopped")
}
