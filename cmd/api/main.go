package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	_ "github.com/familybudget/backend/docs"
	"github.com/familybudget/backend/internal/cache"
	"github.com/familybudget/backend/internal/config"
	"github.com/familybudget/backend/internal/handler"
	"github.com/familybudget/backend/internal/logger"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/internal/repository/memory"
	"github.com/familybudget/backend/internal/retry"
	"github.com/familybudget/backend/internal/scheduler"
	"github.com/familybudget/backend/internal/service"
)

// @title Family Budget API
// @version 1.0
// @description Monthly family budgeting with cascading category allocation and savings tracking.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.Logger()
	slog.SetDefault(appLogger)

	store, closeStore, err := openStore(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	// Initialize services
	ledgerService := service.NewLedgerService(store)
	ledgerService.SetCache(openCache(cfg, appLogger))
	expenseService := service.NewExpenseService(ledgerService)
	reconcileService := service.NewReconcileService(store)

	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Ledger:         ledgerService,
		Expenses:       expenseService,
		Store:          store,
	})

	// Nightly reconciliation of the current month
	var reconcileScheduler *scheduler.Scheduler
	if cfg.ReconcileEnabled {
		schedCfg := scheduler.Config{
			Schedule: cfg.ReconcileSchedule,
			Timeout:  cfg.ReconcileTimeout,
			Enabled:  cfg.ReconcileEnabled,
		}
		reconcileScheduler = scheduler.New(schedCfg, reconcileService, appLogger)
		if err := reconcileScheduler.Start(); err != nil {
			appLogger.Error("Failed to start reconcile scheduler", slog.String("error", err.Error()))
			reconcileScheduler = nil
		}
	}

	// Create server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		appLogger.Info("Shutting down server...")

		// Stop scheduler first
		if reconcileScheduler != nil {
			ctx := reconcileScheduler.Stop()
			<-ctx.Done()
			appLogger.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			appLogger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	appLogger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("store", cfg.StoreBackend),
		slog.String("env", cfg.Env),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Server failed: %v", err)
	}
}

// openStore returns the configured LedgerStore and a function releasing it.
// Postgres may still be starting, so connecting is retried.
func openStore(cfg *config.Config, l *slog.Logger) (repository.LedgerStore, func(), error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		l.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 5

	var db *sqlx.DB
	err := retry.Do(ctx, retryCfg, l, "connect database", func() error {
		var err error
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.MigrateOnStart {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return repository.NewLedgerRepository(db), func() { _ = db.Close() }, nil
}

// openCache connects the overview cache. Redis problems never stop the
// server; it runs uncached instead.
func openCache(cfg *config.Config, l *slog.Logger) service.OverviewCache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		l.Warn("Overview cache disabled", slog.String("error", err.Error()))
		return cache.Noop{}
	}
	l.Info("Overview cache enabled", slog.Duration("ttl", cfg.CacheTTL))
	return cache.NewRedisOverviewCache(client, cfg.CacheTTL)
}
