package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbase/portfolio-engine/internal/api"
	"github.com/finbase/portfolio-engine/internal/config"
	"github.com/finbase/portfolio-engine/internal/database"
	"github.com/finbase/portfolio-engine/internal/logging"
	"github.com/finbase/portfolio-engine/internal/pricefeed"
	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/scheduler"
	"github.com/finbase/portfolio-engine/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Create services
	ledgerService := service.NewLedgerService(log)
	valuationService := service.NewValuationService()
	aggregationService := service.NewAggregationService()
	performanceService := service.NewPerformanceService(snapshotRepo)
	goalService := service.NewGoalService(goalRepo, allocationRepo, log)
	alertService := service.NewAlertService(
		alertRepo,
		priceRepo,
		depositRepo,
		goalService,
		allocationRepo,
		performanceService,
		log,
	)
	portfolioService := service.NewPortfolioService(holdingRepo, summaryRepo)
	recomputeService := service.NewRecomputeService(
		transactionRepo,
		holdingRepo,
		priceRepo,
		depositRepo,
		assetRepo,
		summaryRepo,
		ledgerService,
		valuationService,
		aggregationService,
		performanceService,
		goalService,
		alertService,
		cfg.Engine.Workers,
		log,
	)

	// Price feed is optional: without a fernet key the engine values
	// holdings against whatever prices collaborators have stored.
	var refresher *pricefeed.Refresher
	if cfg.Feed.FernetKey != "" {
		tokens, err := pricefeed.NewTokenStore(settingRepo, cfg.Feed.FernetKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize feed token store")
		}

		token, err := tokens.Load()
		if err != nil {
			log.Warn().Err(err).Msg("No feed token available, fetching quotes unauthenticated")
			token = ""
		}

		client := pricefeed.NewClient(cfg.Feed.BaseURL, token)
		refresher = pricefeed.NewRefresher(client, transactionRepo, priceRepo, log)
	}

	// Scheduled passes
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Engine.SnapshotSchedule, scheduler.NewSnapshotJob(refresher, recomputeService, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule snapshot job")
	}
	if err := sched.AddJob(cfg.Engine.AlertSchedule, scheduler.NewAlertJob(recomputeService, alertRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule alert job")
	}
	sched.Start()
	defer sched.Stop()

	// Create router
	router := api.NewRouter(
		db,
		portfolioService,
		performanceService,
		goalService,
		alertService,
		recomputeService,
		cfg,
		log,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
