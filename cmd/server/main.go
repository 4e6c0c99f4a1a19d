package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/robfig/cron/v3"

	"github.com/OnlyTachi/personal-finance-manager/internal/api"
	"github.com/OnlyTachi/personal-finance-manager/internal/config"
	"github.com/OnlyTachi/personal-finance-manager/internal/database"
	"github.com/OnlyTachi/personal-finance-manager/internal/marketdata"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	liabilityRepo := repository.NewLiabilityRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	marketDataRepo := repository.NewMarketDataRepository(db)

	// External providers
	quoteClient := marketdata.NewQuoteClient(cfg.Market.QuoteBaseURL, cfg.Market.CryptoBaseURL, cfg.Market.RequestTimeout)
	indexClient := marketdata.NewIndexClient(cfg.Market.IndexBaseURL, cfg.Market.RequestTimeout)

	// Create services
	systemService := service.NewSystemService(db)
	if cfg.Session.Key == "" {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			log.Fatalf("Failed to generate session key: %v", err)
		}
		cfg.Session.Key = key.Encode()
		log.Println("SESSION_KEY not set; using an ephemeral key, sessions will not survive restarts")
	}
	sessionService, err := service.NewSessionService(userRepo, cfg.Session.Key, cfg.Session.TTL)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	rateSource := service.NewStoredRateSource(marketDataRepo)
	quoteSource := service.NewStoredQuoteSource(marketDataRepo)
	valuationService := service.NewValuationService(rateSource, quoteSource, cfg.Market.QuoteStaleness)
	ledgerService := service.NewLedgerService(assetRepo, transactionRepo, valuationService, cfg.Market.ClockSkewTolerance)
	withdrawalService := service.NewWithdrawalService(ledgerService, valuationService, transactionRepo)
	assetService := service.NewAssetService(assetRepo, ledgerService, valuationService)
	liabilityService := service.NewLiabilityService(liabilityRepo)
	snapshotService := service.NewSnapshotService(assetRepo, transactionRepo, snapshotRepo, ledgerService, valuationService)
	projectionService := service.NewProjectionService(rateSource)
	marketDataService := service.NewMarketDataService(marketDataRepo, assetRepo, quoteClient, indexClient)

	// Scheduled jobs: market data refresh, then the daily snapshot.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Market.RefreshCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := marketDataService.RefreshIndexRates(ctx); err != nil {
			log.Printf("Index rate refresh failed: %v", err)
		}
		if err := marketDataService.RefreshQuotes(ctx); err != nil {
			log.Printf("Quote refresh failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule market data refresh: %v", err)
	}
	if _, err := scheduler.AddFunc(cfg.Market.SnapshotCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		usernames, err := userRepo.ListUsernames()
		if err != nil {
			log.Printf("Snapshot job failed to list users: %v", err)
			return
		}
		for _, username := range usernames {
			if err := snapshotService.EnsureDailySnapshot(ctx, username); err != nil {
				log.Printf("Snapshot for %s failed: %v", username, err)
			}
		}
	}); err != nil {
		log.Fatalf("Failed to schedule daily snapshot: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Session:     sessionService,
		Assets:      assetService,
		Ledger:      ledgerService,
		Withdrawals: withdrawalService,
		Liabilities: liabilityService,
		Snapshots:   snapshotService,
		Projections: projectionService,
		MarketData:  marketDataService,
	}, cfg)

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
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
