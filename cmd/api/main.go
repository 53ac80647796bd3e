package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bullion/internal/config"
	"bullion/internal/database"
	"bullion/internal/logger"
	"bullion/internal/metrics"
	"bullion/internal/server"
	"bullion/internal/services"
)

// @title           Bullion Ledger API
// @version         1.0
// @description     Multi-currency registry and running-balance statements for bullion and currency trading accounts.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	recorder := metrics.NewPrometheusRecorder("bullion")
	cache := services.NewStatementCache(appConfig.StatementCacheSize, appConfig.StatementCacheTTL)
	accountService := services.NewAccountService(db, appConfig.PrimaryCurrency, cache)
	ledgerService := services.NewLedgerService(db, accountService, cache)
	statementService := services.NewStatementService(accountService, ledgerService, appConfig.LedgerOptions(), cache, recorder)
	auditService := services.NewAuditService(db)

	router := server.NewRouter(server.Dependencies{
		Accounts:       accountService,
		Ledger:         ledgerService,
		Statements:     statementService,
		Audit:          auditService,
		Recorder:       recorder,
		MetricsHandler: recorder.Handler(),
		EnableSwagger:  appConfig.Env != "production",
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Starting bullion ledger server",
			"port", appConfig.Port,
			"tracked_currencies", appConfig.TrackedCurrencies,
			"primary_currency", appConfig.PrimaryCurrency,
		)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
