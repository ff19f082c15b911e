// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"net"
	"os"
	"strconv"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// RecommendEngineConfig converts the flat koanf settings into the engine's config.
func (c *Config) RecommendEngineConfig() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		Pearson: recommend.PearsonConfig{
			Threshold: r.Threshold,
			Workers:   r.Workers,
		},
		Ratings: recommend.RatingsConfig{
			Min: r.MinRating,
			Max: r.MaxRating,
		},
		Training: recommend.TrainingConfig{
			Interval:   r.TrainInterval,
			MinRatings: r.MinRatings,
			MinUsers:   r.MinUsers,
			Timeout:    r.TrainTimeout,
		},
		Limits: recommend.LimitsConfig{
			MaxCandidates:     r.MaxCandidates,
			DefaultK:          r.DefaultK,
			MaxK:              r.MaxK,
			PredictionTimeout: r.PredictionTimeout,
		},
		Cache: recommend.CacheConfig{
			Enabled:           r.CacheEnabled,
			TTL:               r.CacheTTL,
			MaxEntries:        r.CacheMaxEntries,
			InvalidateOnTrain: r.InvalidateOnTrain,
		},
	}
}

// LoggingConfig returns the logging package configuration.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		Caller:    c.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
