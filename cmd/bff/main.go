package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facturaja/facturaja-bff/internal/config"
	"github.com/facturaja/facturaja-bff/internal/handler"
	"github.com/facturaja/facturaja-bff/internal/infra/cache"
	"github.com/facturaja/facturaja-bff/internal/infra/client"
	"github.com/facturaja/facturaja-bff/internal/infra/demo"
	"github.com/facturaja/facturaja-bff/internal/infra/observability"
	"github.com/facturaja/facturaja-bff/internal/infra/resilience"
	"github.com/facturaja/facturaja-bff/internal/infra/session"
	"github.com/facturaja/facturaja-bff/internal/port"
	"github.com/facturaja/facturaja-bff/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("environment", cfg.Environment),
		zap.String("backend_url", cfg.BackendURL),
		zap.Bool("use_redis", cfg.UseRedis()),
		zap.Bool("demo_mode", cfg.DemoMode),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Sessions ---
	var sessions port.SessionStore
	var checks []handler.HealthCheck
	if cfg.UseRedis() {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		store := session.NewRedisStore(rdb)
		defer store.Close()
		sessions = store
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		logger.Info("sessions stored in redis", zap.String("addr", cfg.RedisAddr))
	} else {
		store := session.NewMemoryStore(cfg.SessionTTL)
		defer store.Close()
		sessions = store
		logger.Info("sessions stored in process memory")
	}

	// --- Cache ---
	views := cache.New[any](cfg.CacheTTL)
	defer views.Close()

	// --- Backend client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backend := client.NewBackendClient(httpClient, cfg.BackendURL, resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}, metrics, logger)

	// --- Services ---
	screens := service.NewScreens(service.ScreenDeps{
		Resources: backend,
		Views:     views,
		Metrics:   metrics,
		Logger:    logger,
		DemoMode:  cfg.DemoMode,
	}, service.PageSizes{
		Default: cfg.DefaultPageSize,
		Audit:   cfg.AuditPageSize,
	}, demo.New(time.Now()))

	svc := handler.Services{
		Screens:   screens,
		Invoices:  service.NewInvoiceService(screens.Invoices, logger),
		Payments:  service.NewPaymentService(screens.Payments, screens.Invoices, logger),
		Directory: service.NewDirectoryService(screens, logger),
		Reports:   service.NewReportService(screens, logger),
		Relay:     service.NewRelayService(backend, logger),
		Auth:      service.NewAuthService(backend, sessions, views, cfg.SessionSecret, cfg.SessionTTL, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svc, handler.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		RequestTimeout: cfg.RequestTimeout,
		Production:     cfg.IsProduction(),
	}, checks, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
