// Copyright (c) 2026 The Pensieve Index. All rights reserved.

// Command api is the entry point for the Pensieve Index HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
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

	"github.com/thepensieveindex/pensieve-api/internal/api"
	"github.com/thepensieveindex/pensieve-api/internal/audit"
	"github.com/thepensieveindex/pensieve-api/internal/core/fandom"
	"github.com/thepensieveindex/pensieve-api/internal/core/rules"
	"github.com/thepensieveindex/pensieve-api/internal/core/story"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/internal/discovery"
	"github.com/thepensieveindex/pensieve-api/internal/platform/config"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
	"github.com/thepensieveindex/pensieve-api/internal/platform/migration"
	pgstore "github.com/thepensieveindex/pensieve-api/internal/platform/postgres"
	redisstore "github.com/thepensieveindex/pensieve-api/internal/platform/redis"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
	"github.com/thepensieveindex/pensieve-api/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "pensieve-api"))
	slog.SetDefault(log)

	log.Info("[PensieveIndex] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "pensieve-api"))
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

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	auditor := audit.NewPostgresRecorder(pool)

	fandomService := fandom.NewService(fandom.NewPostgresRepository(pool), auditor, log)
	taxonomyService := taxonomy.NewService(taxonomy.NewPostgresRepository(pool), fandomService, auditor, log)
	rulesService := rules.NewService(rules.NewPostgresRepository(pool), fandomService, auditor, log)
	storyService := story.NewService(story.NewPostgresRepository(pool), fandomService, taxonomyService, auditor, log)

	userRepository := auth.NewPostgresUserRepository(pool)
	sessionRepository := auth.NewRedisSessionRepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, jwtSvc, auditor, log)

	// Discovery pipeline. The story index caches candidate sets in Redis;
	// corpus mutations invalidate it through the hook below.
	storyIndex := discovery.NewStoryIndex(storyService, rdb, log)
	storyService.SetIndexInvalidator(storyIndex)

	discoveryService := discovery.NewService(
		fandomService,
		taxonomyService,
		discovery.NewResolver(taxonomyService),
		discovery.NewValidator(rulesService, log),
		discovery.NewAnalyzer(),
		discovery.NewScorer(cfg.PlotBlockWeight),
		discovery.NewPromptGenerator(),
		discovery.NewSnapshotStore(rdb),
		storyIndex,
		log,
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Fandom:    fandom.NewHandler(fandomService),
		Taxonomy:  taxonomy.NewHandler(taxonomyService),
		Rules:     rules.NewHandler(rulesService),
		Story:     story.NewHandler(storyService),
		Discovery: discovery.NewHandler(discoveryService),
	}

	// Server-lifetime context. Cancelled at exit so background middleware
	// goroutines (rate limiter cleanup) stop with the process.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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
