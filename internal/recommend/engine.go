// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend/pearson"
	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

// Engine owns the active similarity model and serves queries against it.
// Training builds a complete new model and swaps it in atomically, so
// queries never observe a partially built matrix. It is safe for
// concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Active model
	model        atomic.Pointer[model]
	modelVersion atomic.Int32

	// Training state
	trainMu     sync.Mutex
	statusMu    sync.RWMutex
	trainStatus TrainingStatus

	// Metrics
	requestCount    atomic.Int64
	predictionCount atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	trainingCount   atomic.Int64
	errorCount      atomic.Int64

	// Recommendation response cache (nil when disabled)
	cache *expirable.LRU[string, *Response]

	dataProvider DataProvider
	store        ModelStore
}

// model is one immutable trained state.
type model struct {
	set       *ratings.Set
	engine    *pearson.Engine
	version   int
	trainedAt time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}

	if cfg.Cache.Enabled {
		e.cache = expirable.NewLRU[string, *Response](cfg.Cache.MaxEntries, nil, cfg.Cache.TTL)
	}

	return e, nil
}

// SetDataProvider sets the rating source used by Train.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetModelStore sets an optional snapshot store. When set, Train reuses a
// stored matrix for an unchanged rating set and saves new ones.
func (e *Engine) SetModelStore(store ModelStore) {
	e.store = store
}

// Train loads all ratings, builds profiles and the similarity matrix, and
// activates the new model. Returns ErrTrainingInProgress if a run is active.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return ErrNoDataProvider
	}

	ctx = logging.ContextWithTrainingID(ctx, logging.GenerateTrainingID())
	logger := logging.FromContext(ctx, e.logger)

	start := time.Now()
	e.setTraining(true)
	logger.Info().Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	next, restored, err := e.buildModel(trainCtx, logger)
	duration := time.Since(start)
	if err != nil {
		e.errorCount.Add(1)
		e.finishTraining(duration, err)
		metrics.RecordTraining(metrics.TrainingError, duration, 0)
		logger.Error().Err(err).Msg("model training failed")
		return err
	}

	e.activate(next)
	e.finishTraining(duration, nil)

	result := metrics.TrainingSuccess
	if restored {
		result = metrics.TrainingRestored
	}
	metrics.RecordTraining(result, duration, next.version)

	logger.Info().
		Int("version", next.version).
		Int("users", next.set.Len()).
		Bool("restored", restored).
		Dur("duration", duration).
		Msg("model training complete")

	return nil
}

// buildModel loads data and produces a model without activating it.
func (e *Engine) buildModel(ctx context.Context, logger zerolog.Logger) (*model, bool, error) {
	raw, err := e.dataProvider.GetRatings(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get ratings: %w", err)
	}

	if len(raw) < e.config.Training.MinRatings {
		return nil, false, fmt.Errorf("%w: %d ratings < %d", ErrInsufficientData, len(raw), e.config.Training.MinRatings)
	}

	bounds := ratings.Bounds{Min: e.config.Ratings.Min, Max: e.config.Ratings.Max}
	set, err := ratings.Build(raw, bounds)
	if err != nil {
		return nil, false, fmt.Errorf("build profiles: %w", err)
	}

	if set.Len() < e.config.Training.MinUsers {
		return nil, false, fmt.Errorf("%w: %d users < %d", ErrInsufficientData, set.Len(), e.config.Training.MinUsers)
	}

	logger.Info().
		Int("ratings", set.RatingCount()).
		Int("users", set.Len()).
		Int("movies", len(set.Movies())).
		Str("fingerprint", fingerprintString(set.Fingerprint())).
		Msg("loaded training data")

	opts := []pearson.Option{
		pearson.WithWorkers(e.config.Pearson.Workers),
		pearson.WithLogger(logger),
	}

	if sim, ok := e.restoreMatrix(ctx, set, opts, logger); ok {
		return &model{set: set, engine: sim}, true, nil
	}

	sim, err := pearson.NewWithContext(ctx, set.Profiles(), opts...)
	if err != nil {
		return nil, false, fmt.Errorf("build similarity matrix: %w", err)
	}

	stats := sim.Stats()
	metrics.RecordPrecompute(stats.PrecomputeDuration, stats.Profiles, stats.AsymmetricPairs)

	e.saveMatrix(ctx, set, sim, logger)

	return &model{set: set, engine: sim}, false, nil
}

// restoreMatrix tries the snapshot store. Any failure falls back to recomputation.
func (e *Engine) restoreMatrix(ctx context.Context, set *ratings.Set, opts []pearson.Option, logger zerolog.Logger) (*pearson.Engine, bool) {
	if e.store == nil {
		return nil, false
	}

	cells, ok, err := e.store.LoadModel(ctx, set.Fingerprint())
	if err != nil {
		logger.Warn().Err(err).Msg("snapshot load failed, recomputing")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	sim, err := pearson.Restore(set.Profiles(), cells, opts...)
	if err != nil {
		logger.Warn().Err(err).Msg("snapshot rejected, recomputing")
		return nil, false
	}

	metrics.SetModelSize(set.Len())
	logger.Info().Int("profiles", set.Len()).Msg("restored similarity matrix from snapshot")
	return sim, true
}

func (e *Engine) saveMatrix(ctx context.Context, set *ratings.Set, sim *pearson.Engine, logger zerolog.Logger) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveModel(ctx, set.Fingerprint(), sim.Len(), sim.Cells()); err != nil {
		logger.Warn().Err(err).Msg("snapshot save failed")
	}
}

// activate installs next as the active model.
func (e *Engine) activate(next *model) {
	next.version = int(e.modelVersion.Add(1))
	next.trainedAt = time.Now()
	e.model.Store(next)

	if e.cache != nil && e.config.Cache.InvalidateOnTrain {
		e.cache.Purge()
		e.logger.Debug().Msg("cache cleared")
	}

	stats := next.engine.Stats()
	e.statusMu.Lock()
	e.trainStatus.LastTrainedAt = next.trainedAt
	e.trainStatus.ModelVersion = next.version
	e.trainStatus.RatingCount = next.set.RatingCount()
	e.trainStatus.MovieCount = len(next.set.Movies())
	e.trainStatus.UserCount = next.set.Len()
	e.trainStatus.Fingerprint = fingerprintString(next.set.Fingerprint())
	e.trainStatus.Restored = stats.Restored
	e.trainStatus.AsymmetricPairs = stats.AsymmetricPairs
	e.trainStatus.PrecomputeDurationMS = stats.PrecomputeDuration.Milliseconds()
	e.statusMu.Unlock()
}

func (e *Engine) setTraining(active bool) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.IsTraining = active
	if active {
		e.trainStatus.LastError = ""
	}
}

func (e *Engine) finishTraining(duration time.Duration, err error) {
	e.trainingCount.Add(1)

	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainingDurationMS = duration.Milliseconds()
	if err != nil {
		e.trainStatus.LastError = err.Error()
	}
}

// current returns the active model or ErrNotTrained.
func (e *Engine) current() (*model, error) {
	m := e.model.Load()
	if m == nil {
		return nil, ErrNotTrained
	}
	return m, nil
}

// IsTrained reports whether a model is active.
func (e *Engine) IsTrained() bool {
	return e.model.Load() != nil
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.trainStatus
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:    e.requestCount.Load(),
		PredictionCount: e.predictionCount.Load(),
		CacheHits:       e.cacheHits.Load(),
		CacheMisses:     e.cacheMisses.Load(),
		TrainingCount:   e.trainingCount.Load(),
		ErrorCount:      e.errorCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

func fingerprintString(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}
