// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package main is the entry point for the Cinematch server.
//
// Cinematch predicts how a user would rate a movie from the ratings of
// users with similar taste (Pearson user-user collaborative filtering).
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, environment (koanf v2)
//  2. Database: DuckDB ratings store, optional MovieLens CSV import
//  3. Snapshots: BadgerDB store for precomputed similarity matrices
//  4. Engine: recommendation engine wired to the database and snapshots
//  5. Supervisor: training loop, snapshot GC and HTTP server under suture
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// for SHUTDOWN_TIMEOUT, then the snapshot store and database are closed.
//
// # Example
//
//	export RATINGS_CSV=/data/ml-latest-small/ratings.csv
//	export MOVIES_CSV=/data/ml-latest-small/movies.csv
//	./cinematch
//	curl localhost:8080/api/v1/users/1/recommendations?k=10&titles=true
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/database"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/supervisor"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Cinematch stopped with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LoggingConfig())
	logging.Info().Str("version", version).Str("addr", cfg.Addr()).Msg("Starting Cinematch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if err := importCSVs(ctx, db, &cfg.Database); err != nil {
		return err
	}

	store, err := openSnapshots(&cfg.Snapshot)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing snapshot store")
			}
		}()
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	engine, err := initRecommend(cfg, db, store, tree)
	if err != nil {
		return err
	}
	if store != nil {
		addSnapshotMaintenance(tree, store, cfg.Snapshot.GCInterval)
	}

	handler := api.NewHandler(engine,
		api.WithCatalog(db),
		api.WithHealthChecker(db),
		api.WithVersion(version),
	)
	addHTTPServer(tree, cfg, api.NewRouter(handler, routerConfig(cfg)))

	logging.Info().Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logging.Info().Msg("Cinematch stopped")
	return nil
}

func routerConfig(cfg *config.Config) api.RouterConfig {
	rc := api.DefaultRouterConfig()
	rc.CORSAllowedOrigins = cfg.Server.CORSOrigins
	rc.RateLimitRequests = cfg.Server.RateLimitReqs
	rc.RateLimitWindow = cfg.Server.RateLimitWindow
	rc.RateLimitDisabled = cfg.Server.RateLimitDisabled
	if rc.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	return rc
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
}
