// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry at package init through
promauto and exposed by the API server at /metrics.

# Available Metrics

Similarity Engine:
  - similarity_precompute_duration_seconds: Matrix build time (histogram)
  - similarity_profiles, similarity_matrix_cells: Active model size (gauges)
  - similarity_asymmetric_pairs_total: Order-dependent pairs seen (counter)
  - similarity_queries_total: Pairwise lookups (counter)
  - rating_predictions_total: Predictions (counter)
    Labels: outcome (predicted, no_evidence, unknown_user)
  - neighborhood_size: Neighbors per query (histogram)

Training:
  - model_training_runs_total: Training runs (counter)
    Labels: result (success, restored, error, skipped)
  - model_training_duration_seconds: Training time (histogram)
  - model_version: Active model version (gauge)
  - snapshot_operations_total: Snapshot store calls (counter)
    Labels: operation, result

Database:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
  - duckdb_rows_loaded_total: Rows imported or read (counter)
  - circuit_breaker_state, circuit_breaker_transitions_total

API:
  - api_requests_total: Requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Latency (histogram)
  - api_active_requests: In-flight requests (gauge)
  - recommend_cache_hits_total, recommend_cache_misses_total

# Usage

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
*/
package metrics
