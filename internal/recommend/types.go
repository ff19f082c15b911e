// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

var (
	// ErrNotTrained is returned by queries before the first successful training run.
	ErrNotTrained = errors.New("model not trained")

	// ErrUserNotFound is returned when a user has no profile in the active model.
	ErrUserNotFound = errors.New("user not found")

	// ErrTrainingInProgress is returned when Train is called while a run is active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrInsufficientData is returned when the rating set is below the training minimums.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrNoDataProvider is returned by Train when no DataProvider is set.
	ErrNoDataProvider = errors.New("data provider not set")
)

// DataProvider supplies ratings for training. Typically the database layer.
type DataProvider interface {
	// GetRatings returns every explicit rating.
	GetRatings(ctx context.Context) ([]ratings.Rating, error)
}

// ModelStore persists precomputed similarity matrices keyed by the
// fingerprint of the rating set they were computed from.
type ModelStore interface {
	// LoadModel returns the cells stored for fingerprint, or ok=false.
	LoadModel(ctx context.Context, fingerprint uint64) (cells []float64, ok bool, err error)

	// SaveModel stores cells under fingerprint.
	SaveModel(ctx context.Context, fingerprint uint64, profiles int, cells []float64) error
}

// Request represents a recommendation request.
type Request struct {
	// UserID is the user to generate recommendations for.
	UserID int `json:"user_id"`

	// K is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// Threshold overrides Config.Pearson.Threshold when set.
	Threshold *float64 `json:"threshold,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredMovie is a movie with its predicted rating.
type ScoredMovie struct {
	MovieID      int     `json:"movie_id"`
	Predicted    float64 `json:"predicted_rating"`
	Contributors int     `json:"contributors"`
	Weight       float64 `json:"weight"`
}

// Response represents a recommendation response.
type Response struct {
	// Items is ordered by predicted rating, highest first.
	Items []ScoredMovie `json:"items"`

	// TotalCandidates is the number of neighborhood movies scored.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID    string    `json:"request_id"`
	UserID       int       `json:"user_id"`
	Threshold    float64   `json:"threshold"`
	LatencyMS    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	ModelVersion int       `json:"model_version"`
	TrainedAt    time.Time `json:"trained_at"`
	Timestamp    time.Time `json:"timestamp"`
}

// Neighbor is a similar user.
type Neighbor struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// Prediction is a predicted rating for one (user, movie) pair.
type Prediction struct {
	UserID       int     `json:"user_id"`
	MovieID      int     `json:"movie_id"`
	Rating       float64 `json:"rating"`
	OK           bool    `json:"ok"`
	Contributors int     `json:"contributors"`
	Weight       float64 `json:"weight"`
	Threshold    float64 `json:"threshold"`
	AlreadyRated bool    `json:"already_rated"`
}

// UserSummary describes one profile in the active model.
type UserSummary struct {
	UserID      int     `json:"user_id"`
	InternalID  int     `json:"internal_id"`
	MeanRating  float64 `json:"mean_rating"`
	RatingCount int     `json:"rating_count"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// RatingCount is the number of ratings in the active model.
	RatingCount int `json:"rating_count"`

	// MovieCount is the number of distinct rated movies.
	MovieCount int `json:"movie_count"`

	// UserCount is the number of profiles.
	UserCount int `json:"user_count"`

	// ModelVersion is the current model version.
	ModelVersion int `json:"model_version"`

	// Fingerprint identifies the rating set behind the active model.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Restored is true when the active matrix came from the snapshot store.
	Restored bool `json:"restored"`

	// AsymmetricPairs is the number of order-dependent similarity pairs seen.
	AsymmetricPairs int64 `json:"asymmetric_pairs"`

	// PrecomputeDurationMS is how long the matrix build took.
	PrecomputeDurationMS int64 `json:"precompute_duration_ms"`
}

// Metrics contains engine counters for the status endpoint.
type Metrics struct {
	RequestCount    int64 `json:"request_count"`
	PredictionCount int64 `json:"prediction_count"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
	TrainingCount   int64 `json:"training_count"`
	ErrorCount      int64 `json:"error_count"`
}
