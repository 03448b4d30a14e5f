// Package main is the entrypoint for the failsight API server.
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

	"github.com/rohanmhetar/failsight/internal/api"
	"github.com/rohanmhetar/failsight/internal/api/handler"
	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/internal/embed"
	embedcache "github.com/rohanmhetar/failsight/internal/embed/cache"
	"github.com/rohanmhetar/failsight/internal/embed/lexical"
	"github.com/rohanmhetar/failsight/internal/engine"
	"github.com/rohanmhetar/failsight/internal/store"
	"github.com/rohanmhetar/failsight/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"data_source", cfg.Data.Source,
		"embed_provider", cfg.Embed.Provider,
		"env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the record store
	recordStore, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 3. Build the embedding provider, optionally behind the Redis cache
	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("embedding provider initialized", "provider", embedder.Name())

	// 4. Build the engine (loads the dataset)
	eng, err := engine.New(ctx, recordStore, embedder, lexical.NewProvider(), cfg.Analysis, logger)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	// 5. Build router with dependencies
	deps := api.Dependencies{
		HealthHandler:         handler.NewHealthHandler(recordStore, eng),
		AnalyzeHandler:        handler.NewAnalyzeHandler(eng),
		DatasetSummaryHandler: handler.NewDatasetSummaryHandler(eng),
		DatasetReloadHandler:  handler.NewDatasetReloadHandler(eng),
	}
	router := api.NewRouter(deps)

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// buildStore opens the configured record-store backend. For Postgres it also
// applies migrations.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Data.Source {
	case "postgres":
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database connected, migrations applied")
		return store.NewPostgresStore(pool), pool.Close, nil
	default:
		slog.Info("using csv record store", "dir", cfg.Data.CSVDir)
		return store.NewCSVStore(cfg.Data.CSVDir), func() {}, nil
	}
}

// buildEmbedder constructs the embedding provider and wraps it with the
// Redis vector cache when REDIS_URL is set.
func buildEmbedder(ctx context.Context, cfg *config.Config) (models.Embedder, error) {
	embedder, err := embed.NewProvider(cfg.Embed)
	if err != nil {
		return nil, fmt.Errorf("create embed provider: %w", err)
	}
	if cfg.Redis.URL == "" {
		return embedder, nil
	}

	cached, err := embedcache.New(embedder, cfg.Redis.URL, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	if err := cached.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis embedding cache connected")
	return cached, nil
}
