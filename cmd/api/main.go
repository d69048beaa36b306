// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

// Command api is the entry point for the Tana server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env supported).
//  3. Open the collection file store.
//  4. Wire the metadata lookup providers.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	"github.com/joho/godotenv"

	"github.com/aokidev/tana/internal/api"
	"github.com/aokidev/tana/internal/collection"
	"github.com/aokidev/tana/internal/export"
	"github.com/aokidev/tana/internal/lookup"
	"github.com/aokidev/tana/internal/platform/config"
	"github.com/aokidev/tana/internal/platform/constants"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Tana] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("data_file", cfg.DataFile),
		slog.Bool("rakuten_enabled", cfg.RakutenAppID != ""),
		slog.Bool("madb_enabled", cfg.MADBEnabled),
	)

	// ── 3. Collection Store ───────────────────────────────────────────────
	store, err := collection.NewFileRepository(cfg.DataFile)
	must(log, err, "open collection file")

	// ── 4. Metadata Lookup ────────────────────────────────────────────────
	google := lookup.NewGoogleBooks(cfg.GoogleBooksURL, cfg.LookupTimeout)

	var rakuten *lookup.Rakuten
	if cfg.RakutenAppID != "" {
		rakuten = lookup.NewRakuten(cfg.RakutenBooksURL, cfg.RakutenAppID, cfg.LookupTimeout)
	}

	var madb *lookup.MADB
	if cfg.MADBEnabled {
		madb = lookup.NewMADB(cfg.MADBSparqlURL, cfg.LookupTimeout)
	}

	finder := lookup.NewService(google, rakuten, madb, log)

	// ── 5. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStore: store.Ping,
	}, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	collectionService := collection.NewService(store, finder, log)
	collectionHandler := collection.NewHandler(collectionService, finder)
	exportHandler := export.NewHandler(collectionService)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Collection: collectionHandler,
		Export:     exportHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
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

	// Give in-flight requests (including outstanding lookups) time to complete.
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
