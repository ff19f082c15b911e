// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Pearson contains similarity and neighborhood parameters.
	Pearson PearsonConfig `json:"pearson"`

	// Ratings defines the valid rating scale.
	Ratings RatingsConfig `json:"ratings"`

	// Training contains training schedule parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`
}

// PearsonConfig contains similarity and neighborhood parameters.
type PearsonConfig struct {
	// Threshold is the default neighborhood threshold. Neighbors must have
	// similarity strictly greater than this value.
	// Default: 0.0.
	Threshold float64 `json:"threshold"`

	// Workers is the number of matrix precompute workers.
	// Zero selects runtime.NumCPU().
	// Default: 0.
	Workers int `json:"workers"`
}

// RatingsConfig defines the valid rating scale.
type RatingsConfig struct {
	// Min is the lowest valid rating.
	// Default: 1.
	Min float64 `json:"min"`

	// Max is the highest valid rating.
	// Default: 5.
	Max float64 `json:"max"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// Interval is the time between scheduled training runs.
	// Default: 6h.
	Interval time.Duration `json:"interval"`

	// MinRatings is the minimum number of ratings required to train.
	// Default: 1.
	MinRatings int `json:"min_ratings"`

	// MinUsers is the minimum number of users required to train.
	// Default: 2.
	MinUsers int `json:"min_users"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates is the maximum number of unrated movies scored per request.
	// Default: 5000.
	MaxCandidates int `json:"max_candidates"`

	// DefaultK is the default number of recommendations to return.
	// Default: 20.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k"`

	// PredictionTimeout is the maximum time for a single recommendation request.
	// Default: 5s.
	PredictionTimeout time.Duration `json:"prediction_timeout"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether recommendation responses are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`

	// InvalidateOnTrain controls whether the cache is cleared after training.
	// Default: true.
	InvalidateOnTrain bool `json:"invalidate_on_train"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Pearson: PearsonConfig{
			Threshold: 0,
			Workers:   0,
		},
		Ratings: RatingsConfig{
			Min: 1,
			Max: 5,
		},
		Training: TrainingConfig{
			Interval:   6 * time.Hour,
			MinRatings: 1,
			MinUsers:   2,
			Timeout:    30 * time.Minute,
		},
		Limits: LimitsConfig{
			MaxCandidates:     5000,
			DefaultK:          20,
			MaxK:              100,
			PredictionTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:           true,
			TTL:               5 * time.Minute,
			MaxEntries:        10000,
			InvalidateOnTrain: true,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if math.IsNaN(c.Pearson.Threshold) || c.Pearson.Threshold < -1 || c.Pearson.Threshold > 1 {
		return fmt.Errorf("pearson.threshold must be in [-1, 1], got %f", c.Pearson.Threshold)
	}
	if c.Pearson.Workers < 0 {
		return fmt.Errorf("pearson.workers must be non-negative, got %d", c.Pearson.Workers)
	}

	if !(c.Ratings.Min < c.Ratings.Max) {
		return fmt.Errorf("ratings.min must be below ratings.max, got %f >= %f", c.Ratings.Min, c.Ratings.Max)
	}

	if c.Training.MinRatings < 0 {
		return fmt.Errorf("training.min_ratings must be non-negative, got %d", c.Training.MinRatings)
	}
	if c.Training.MinUsers < 0 {
		return fmt.Errorf("training.min_users must be non-negative, got %d", c.Training.MinUsers)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.Interval < 0 {
		return fmt.Errorf("training.interval must be non-negative, got %v", c.Training.Interval)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.PredictionTimeout <= 0 {
		return fmt.Errorf("limits.prediction_timeout must be positive, got %v", c.Limits.PredictionTimeout)
	}

	if c.Cache.Enabled {
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}

// MarshalJSON renders durations as strings ("5m0s") instead of nanoseconds.
func (c *Config) MarshalJSON() ([]byte, error) {
	type training struct {
		Interval   string `json:"interval"`
		MinRatings int    `json:"min_ratings"`
		MinUsers   int    `json:"min_users"`
		Timeout    string `json:"timeout"`
	}
	type limits struct {
		MaxCandidates     int    `json:"max_candidates"`
		DefaultK          int    `json:"default_k"`
		MaxK              int    `json:"max_k"`
		PredictionTimeout string `json:"prediction_timeout"`
	}
	type cache struct {
		Enabled           bool   `json:"enabled"`
		TTL               string `json:"ttl"`
		MaxEntries        int    `json:"max_entries"`
		InvalidateOnTrain bool   `json:"invalidate_on_train"`
	}

	return json.Marshal(&struct {
		Pearson  PearsonConfig `json:"pearson"`
		Ratings  RatingsConfig `json:"ratings"`
		Training training      `json:"training"`
		Limits   limits        `json:"limits"`
		Cache    cache         `json:"cache"`
	}{
		Pearson: c.Pearson,
		Ratings: c.Ratings,
		Training: training{
			Interval:   c.Training.Interval.String(),
			MinRatings: c.Training.MinRatings,
			MinUsers:   c.Training.MinUsers,
			Timeout:    c.Training.Timeout.String(),
		},
		Limits: limits{
			MaxCandidates:     c.Limits.MaxCandidates,
			DefaultK:          c.Limits.DefaultK,
			MaxK:              c.Limits.MaxK,
			PredictionTimeout: c.Limits.PredictionTimeout.String(),
		},
		Cache: cache{
			Enabled:           c.Cache.Enabled,
			TTL:               c.Cache.TTL.String(),
			MaxEntries:        c.Cache.MaxEntries,
			InvalidateOnTrain: c.Cache.InvalidateOnTrain,
		},
	})
}
