// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// RecommendEngine is the part of recommend.Engine the training loop needs.
type RecommendEngine interface {
	Train(ctx context.Context) error
}

// RecommendServiceConfig holds configuration for the training loop.
type RecommendServiceConfig struct {
	// TrainOnStartup trains once before the first tick.
	TrainOnStartup bool

	// TrainInterval is the retraining period. Zero disables retraining.
	TrainInterval time.Duration
}

// RecommendService drives periodic training of the similarity model.
type RecommendService struct {
	engine RecommendEngine
	config RecommendServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRecommendService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine RecommendEngine, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	return &RecommendService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "recommend").Logger(),
		name:   "recommend-service",
	}
}

// Serve implements suture.Service.
//
// Training failures are logged and never returned: a restart would only
// repeat the same run against the same data.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("recommendation service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	if s.config.TrainInterval <= 0 {
		<-ctx.Done()
		s.logger.Info().Msg("recommendation service shutting down")
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.train(ctx, "scheduled")
		}
	}
}

func (s *RecommendService) train(ctx context.Context, trigger string) {
	err := s.engine.Train(ctx)
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Str("trigger", trigger).Msg("training already running, skipped")
	case errors.Is(err, recommend.ErrInsufficientData):
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("not enough ratings to train")
	case ctx.Err() != nil:
	default:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("training failed, keeping previous model")
	}
}

// String returns the service name for logging.
func (s *RecommendService) String() string {
	return s.name
}
