// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes.
const (
	OutcomePredicted   = "predicted"
	OutcomeNoEvidence  = "no_evidence"
	OutcomeUnknownUser = "unknown_user"
)

// Training results.
const (
	TrainingSuccess  = "success"
	TrainingRestored = "restored"
	TrainingError    = "error"
	TrainingSkipped  = "skipped"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBRowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_rows_loaded_total",
			Help: "Total number of rows imported or read, by table",
		},
		[]string{"table"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Similarity Engine Metrics
	PrecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_precompute_duration_seconds",
			Help:    "Duration of similarity matrix precomputation in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	Profiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_profiles",
			Help: "Number of profiles in the active model",
		},
	)

	MatrixCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_matrix_cells",
			Help: "Number of cells in the active similarity matrix",
		},
	)

	AsymmetricPairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_asymmetric_pairs_total",
			Help: "Total number of profile pairs whose similarity depended on argument order",
		},
	)

	SimilarityQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_queries_total",
			Help: "Total number of pairwise similarity lookups",
		},
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_predictions_total",
			Help: "Total number of rating predictions by outcome",
		},
		[]string{"outcome"},
	)

	NeighborhoodSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neighborhood_size",
			Help:    "Number of neighbors selected per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_training_runs_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300, 600},
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the active model",
		},
	)

	// Snapshot Metrics
	SnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_operations_total",
			Help: "Total number of model snapshot operations",
		},
		[]string{"operation", "result"},
	)

	// Recommendation Cache Metrics
	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of active API requests",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordRowsLoaded adds n to the rows loaded counter for table.
func RecordRowsLoaded(table string, n int) {
	DBRowsLoaded.WithLabelValues(table).Add(float64(n))
}

// RecordCircuitBreakerTransition records a state change and the new state.
// state follows gobreaker's numbering: 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordPrecompute records a completed similarity matrix build.
func RecordPrecompute(duration time.Duration, profiles int, asymmetric int64) {
	PrecomputeDuration.Observe(duration.Seconds())
	SetModelSize(profiles)
	if asymmetric > 0 {
		AsymmetricPairs.Add(float64(asymmetric))
	}
}

// SetModelSize updates the profile and matrix cell gauges.
func SetModelSize(profiles int) {
	Profiles.Set(float64(profiles))
	MatrixCells.Set(float64(profiles) * float64(profiles))
}

// RecordSimilarityQuery counts a pairwise similarity lookup.
func RecordSimilarityQuery() {
	SimilarityQueries.Inc()
}

// RecordPrediction counts a prediction by outcome.
func RecordPrediction(outcome string) {
	Predictions.WithLabelValues(outcome).Inc()
}

// RecordNeighborhood observes the size of a selected neighborhood.
func RecordNeighborhood(size int) {
	NeighborhoodSize.Observe(float64(size))
}

// RecordTraining records a training run.
func RecordTraining(result string, duration time.Duration, version int) {
	TrainingRuns.WithLabelValues(result).Inc()
	TrainingDuration.Observe(duration.Seconds())
	if result == TrainingSuccess || result == TrainingRestored {
		ModelVersion.Set(float64(version))
	}
}

// RecordSnapshot records a snapshot store operation.
func RecordSnapshot(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SnapshotOperations.WithLabelValues(operation, result).Inc()
}

// RecordCacheHit counts a recommendation cache hit.
func RecordCacheHit() {
	RecommendCacheHits.Inc()
}

// RecordCacheMiss counts a recommendation cache miss.
func RecordCacheMiss() {
	RecommendCacheMisses.Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
