package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/core/services"
	"github.com/dgrad/efintrack/internal/handlers"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/dgrad/efintrack/internal/observability/metrics"
	"github.com/dgrad/efintrack/internal/platform/config"
	"github.com/dgrad/efintrack/internal/repositories/database/pgsql"
	"github.com/dgrad/efintrack/internal/repositories/memory"
	"github.com/dgrad/efintrack/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title           e-FinTrack API
// @version         1.0
// @description     Ledger kernel for expense requests, statements, payments, receipts and monthly closings.
// @host            localhost:8080
// @BasePath        /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	txManager, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	container := services.NewServiceContainer(services.Dependencies{
		TxManager:         txManager,
		Policy:            cfg.Policy(),
		ReferenceAttempts: cfg.ReferenceMaxAttempts,
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to build rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.ActorHeader, "X-Request-ID"},
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			MaxAge:        12 * time.Hour,
		}),
		middleware.RateLimit(limiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, container)
	if !cfg.IsProduction {
		handlers.RegisterSwaggerRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore builds the transaction manager for the configured driver and
// registers metrics against it.
func openStore(ctx context.Context, cfg *config.Config) (portsrepo.TransactionManager, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		metrics.Init(nil)
		return memory.New(), func() {}, nil
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		database.ClosePgxPool(dbPool)
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	metrics.Init(dbPool)
	return pgsql.NewTxManager(dbPool, cfg.TxTimeout, cfg.TxMaxRetries), func() { database.ClosePgxPool(dbPool) }, nil
}
