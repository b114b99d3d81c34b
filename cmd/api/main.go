package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/lorrc/helpdesk-core/internal/adapters/primary/http"
	mw "github.com/lorrc/helpdesk-core/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/postgres"
	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/redislock"
	"github.com/lorrc/helpdesk-core/internal/auth"
	"github.com/lorrc/helpdesk-core/internal/config"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/services"
	"github.com/lorrc/helpdesk-core/internal/infrastructure/logging"
	"github.com/lorrc/helpdesk-core/internal/infrastructure/metrics"
)

// tokenTTL only matters for tokens minted locally; verification honours
// whatever expiry the issuer set.
const tokenTTL = 24 * time.Hour

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)
	logger.Debug("configuration loaded", "config", cfg.String())

	// 3. Initialize Database Pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	// 4. Ticket creation lock: Redis when configured so that several
	// replicas allocate numbers one at a time, otherwise in-process.
	health := httpAdapter.NewHealthHandler(pool, cfg.App.Version)

	var creationLock ports.CreationLock = services.NewLocalCreationLock()
	if cfg.Redis.Enabled() {
		redisClient, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		creationLock = redislock.New(redisClient, redislock.Options{
			Key: cfg.Redis.LockKey,
			TTL: cfg.Redis.LockTTL,
		}, logger)
		health.WithCheck("redis", httpAdapter.HealthCheckerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
		logger.Info("redis creation lock enabled", "addr", cfg.Redis.Addr)
	}

	// 5. Metrics
	var (
		recorder ports.MetricsRecorder = ports.NoopMetrics{}
		exporter httpAdapter.MetricsExporter
	)
	if cfg.Metrics.Enabled {
		prom := metrics.NewRecorder()
		prom.RecordBuildInfo(cfg.App.Version, cfg.App.Environment)
		recorder = prom
		exporter = prom
	}

	// 6. Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer rateLimiter.Stop()
	}

	// 7. Dependency Injection (Wiring the Hexagon)
	ticketRepo := postgres.NewTicketRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	ticketService := services.NewTicketService(services.TicketServiceDeps{
		Tickets:     ticketRepo,
		History:     postgres.NewHistoryRepository(pool),
		Attachments: postgres.NewAttachmentRepository(pool),
		Users:       userRepo,
		Catalog:     postgres.NewCatalogRepository(pool),
		Tx:          postgres.NewTransactionManager(pool),
		Lock:        creationLock,
		Metrics:     recorder,
		Logger:      logger,
	})

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Logger:         logger,
		TokenManager:   auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, tokenTTL),
		Callers:        services.NewCallerService(userRepo),
		Tickets:        ticketService,
		Dashboard:      services.NewDashboardService(ticketRepo, nil),
		Reports:        services.NewReportService(ticketRepo, nil),
		Health:         health,
		RateLimiter:    rateLimiter,
		Metrics:        exporter,
		MetricsPath:    cfg.Metrics.Path,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return
	}

	logger.Info("server shutdown complete")
}
