// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Spark HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the local fallback store (memory, mirrored to disk or Redis).
//  4. Build the remote datastore (REST, or PostgreSQL + migrations), if configured.
//  5. Wire repositories, services and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// An unreachable remote never aborts startup: the server comes up in demo mode
// and switches to live mode per call as soon as the remote answers.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/spark/internal/api"
	"github.com/taibuivan/spark/internal/platform/config"
	"github.com/taibuivan/spark/internal/platform/constants"
	"github.com/taibuivan/spark/internal/platform/migration"
	pgstore "github.com/taibuivan/spark/internal/platform/postgres"
	redisstore "github.com/taibuivan/spark/internal/platform/redis"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/posts"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/internal/users/account"
	"github.com/taibuivan/spark/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "spark"))
	slog.SetDefault(log)

	log.Info("[Spark] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "spark"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("remote", string(cfg.RemoteKind())),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Local Store ────────────────────────────────────────────────────
	local, rdb := buildLocalStore(startupCtx, cfg, log)
	if rdb != nil {
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 4. Remote Datastore ───────────────────────────────────────────────
	remote, closeRemote := buildRemote(startupCtx, cfg, log)
	defer closeRemote()

	failover := storage.NewFailover(remote, local, cfg.RemoteTimeout, log)

	// ── 5. Token Service ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.TokenSecret, constants.AuthIssuer, constants.TokenTTL)
	must(log, err, "initialize token service")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{}
	if failover.HasRemote() {
		dependencies.CheckRemote = failover.CheckRemote
	}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewIdentityRepository(failover)
	sessionStore := auth.NewSessionStore(local)
	authService := auth.NewService(userRepository, sessionStore, tokens)

	postRepository := posts.NewRepository(failover)
	postService := posts.NewService(postRepository, posts.NewReconciler(failover),
		posts.WithAnonymousVotes(cfg.AllowAnonymousVotes),
	)

	accountService := account.NewService(userRepository, postRepository)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Health:  api.NewHealthHandler(dependencies, log),
		Auth:    auth.NewHandler(authService, cfg.IsProduction()),
		Posts:   posts.NewHandler(postService),
		Account: account.NewHandler(accountService),
	}

	server := api.NewServer(cfg, log, tokens, authService, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
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

// buildLocalStore creates the fallback store and restores it from its mirror.
//
// DATA_DIR takes precedence over REDIS_URL. An unreachable Redis leaves the
// store in memory only. The returned client is nil unless Redis is in use.
func buildLocalStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage.MemoryBackend, *goredis.Client) {
	options := append(auth.UniqueKeys(), posts.UniqueKeys()...)

	var rdb *goredis.Client
	switch {
	case cfg.DataDir != "":
		mirror, err := storage.NewFileMirror(cfg.DataDir)
		must(log, err, "prepare data directory")
		options = append(options, storage.WithMirror(mirror))
		log.Info("local_store_mirror", slog.String("kind", "file"), slog.String("dir", cfg.DataDir))

	case cfg.RedisURL != "":
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("local_store_redis_unavailable", slog.Any("error", err))
			break
		}
		rdb = client
		options = append(options, storage.WithMirror(storage.NewRedisMirror(client)))
		log.Info("local_store_mirror", slog.String("kind", "redis"))

	default:
		log.Warn("local_store_memory_only")
	}

	local := storage.NewMemoryBackend(log, options...)
	if err := local.Restore(ctx, auth.ResourceUsers, auth.ResourceSessions, posts.ResourcePosts, posts.ResourceVotes); err != nil {
		log.Error("local_store_restore_failed", slog.Any("error", err))
	}
	return local, rdb
}

// buildRemote returns the remote datastore selected by configuration, or nil.
// The returned func releases its resources.
func buildRemote(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Backend, func()) {
	switch cfg.RemoteKind() {
	case config.RemoteREST:
		return storage.NewRESTBackend(cfg.SupabaseEndpoint(), cfg.SupabaseKey(), cfg.RemoteTimeout), func() {}

	case config.RemotePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.RemoteTimeout, log)
		must(log, err, "configure postgres")

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			log.Warn("migrations_skipped", slog.Any("error", err))
		}

		return storage.NewPostgresBackend(pool), func() {
			log.Info("closing postgres pool")
			pool.Close()
		}

	default:
		log.Warn("remote_datastore_disabled")
		return nil, func() {}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors
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
