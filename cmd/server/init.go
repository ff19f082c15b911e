// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/database"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/snapshot"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

// importCSVs loads MovieLens files when configured. Movies go first so
// titles are available as soon as the first model is trained.
func importCSVs(ctx context.Context, db *database.DB, cfg *config.DatabaseConfig) error {
	if cfg.MoviesCSV != "" {
		n, err := db.ImportMoviesCSV(ctx, cfg.MoviesCSV)
		if err != nil {
			return fmt.Errorf("import movies: %w", err)
		}
		logging.Info().Str("path", cfg.MoviesCSV).Int64("rows", n).Msg("Movies imported")
	}
	if cfg.RatingsCSV != "" {
		n, err := db.ImportRatingsCSV(ctx, cfg.RatingsCSV)
		if err != nil {
			return fmt.Errorf("import ratings: %w", err)
		}
		logging.Info().Str("path", cfg.RatingsCSV).Int64("rows", n).Msg("Ratings imported")
	}

	stats, err := db.GetRatingStats(ctx)
	if err != nil {
		return err
	}
	logging.Info().
		Int64("ratings", stats.Ratings).
		Int64("users", stats.Users).
		Int64("movies", stats.Movies).
		Msg("Rating store ready")
	return nil
}

// openSnapshots returns nil when snapshots are disabled.
func openSnapshots(cfg *config.SnapshotConfig) (*snapshot.Store, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Snapshot store disabled (SNAPSHOT_ENABLED=false)")
		return nil, nil
	}
	store, err := snapshot.Open(cfg.Path, cfg.InMemory, snapshot.WithRetain(cfg.Retain))
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store, nil
}

// initRecommend builds the engine and adds its training loop to the model layer.
func initRecommend(cfg *config.Config, db *database.DB, store *snapshot.Store, tree *supervisor.SupervisorTree) (*recommend.Engine, error) {
	logger := logging.WithComponent("recommend")

	engine, err := recommend.NewEngine(cfg.RecommendEngineConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(db)
	if store != nil {
		engine.SetModelStore(store)
	}

	tree.AddModelService(services.NewRecommendService(engine, services.RecommendServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
	}, logger))

	logger.Info().
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Dur("train_interval", cfg.Recommend.TrainInterval).
		Float64("threshold", cfg.Recommend.Threshold).
		Bool("snapshots", store != nil).
		Msg("Recommendation service added to supervisor tree")
	return engine, nil
}

func addSnapshotMaintenance(tree *supervisor.SupervisorTree, store *snapshot.Store, interval time.Duration) {
	tree.AddDataService(services.NewSnapshotMaintenanceService(store, interval, logging.WithComponent("snapshot")))
}

func addHTTPServer(tree *supervisor.SupervisorTree, cfg *config.Config, handler http.Handler) {
	tree.AddAPIService(services.NewHTTPServerService(
		newHTTPServer(cfg, handler),
		cfg.Server.ShutdownTimeout,
		logging.WithComponent("http"),
	))
}
