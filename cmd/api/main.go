// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

// Command api is the entry point for the WDTP HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers and background jobs.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/wdtp/api/internal/api"
	"github.com/wdtp/api/internal/core/directory"
	"github.com/wdtp/api/internal/core/wage"
	"github.com/wdtp/api/internal/platform/cache"
	"github.com/wdtp/api/internal/platform/config"
	"github.com/wdtp/api/internal/platform/constants"
	"github.com/wdtp/api/internal/platform/middleware"
	"github.com/wdtp/api/internal/platform/migration"
	pgstore "github.com/wdtp/api/internal/platform/postgres"
	redisstore "github.com/wdtp/api/internal/platform/redis"
	"github.com/wdtp/api/internal/platform/sec"
	"github.com/wdtp/api/internal/scheduler"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "wdtp"))
	slog.SetDefault(log)

	log.Info("[WDTP] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "wdtp"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Runtime context for the middleware housekeeping goroutines. Cancelled
	// on the way out so rate limiter cleanup loops exit with the server.
	runtimeCtx, runtimeCancel := context.WithCancel(context.Background())
	defer runtimeCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Verifier ─────────────────────────────────────────────────
	// Optional: without a public key the API accepts only anonymous traffic.
	var verifier middleware.TokenVerifier
	if cfg.JWTPubKeyPath != "" {
		tokenService, err := sec.NewTokenService(cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, err, "initialize token verifier")
		verifier = tokenService
		log.Info("token_verification_enabled")
	} else {
		log.Info("token_verification_disabled")
	}

	// ── 7. Health Handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	versions := cache.NewRedisVersionStore(rdb)
	bus := cache.NewBus(versions, log)
	responses := cache.NewResponseCache(rdb, versions, time.Duration(cfg.ResponseCacheTTL)*time.Second, log)

	wageRepository := wage.NewPostgresRepository(pool)
	wageService := wage.NewService(wageRepository, wageRepository, bus, log)
	wageHandler := wage.NewHandler(wageService, responses, middleware.SubmitThrottle(runtimeCtx))

	directoryRepository := directory.NewPostgresRepository(pool)
	directoryService := directory.NewService(directoryRepository)
	directoryHandler := directory.NewHandler(directoryService, wageService, responses)

	// ── 9. Reconciliation Scheduler ───────────────────────────────────────
	if cfg.ReconcileSchedule != "" {
		reconciler := scheduler.New(wageService, cfg.ReconcileSchedule, log)
		must(log, reconciler.Start(runtimeCtx), "start reconciliation scheduler")
		defer reconciler.Stop()
	}

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Directory: directoryHandler,
		Wage:      wageHandler,
	}

	server := api.NewServer(runtimeCtx, cfg, log, verifier, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
