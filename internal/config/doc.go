// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config provides centralized configuration management for Cinematch.

# Configuration Sources

Load layers three sources with Koanf v2, later sources winning:
  - Built-in defaults (structs provider)
  - An optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/cinematch/config.yaml
  - Environment variables, through an explicit name mapping

Unmapped environment variables are ignored.

# Configuration Structure

  - ServerConfig: HTTP listen address, timeouts, CORS and per-IP rate limiting
  - LoggingConfig: zerolog level, format and caller info
  - DatabaseConfig: DuckDB file, tuning, CSV import paths and circuit breaker
  - SnapshotConfig: BadgerDB store for precomputed similarity matrices
  - RecommendConfig: neighborhood threshold, rating scale, training schedule,
    request limits and response cache

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - HTTP_TIMEOUT (default: 30s), HTTP_SHUTDOWN_TIMEOUT (default: 10s)
  - CORS_ORIGINS: comma-separated (default: *)
  - RATE_LIMIT_REQUESTS (default: 100), RATE_LIMIT_WINDOW (default: 1m)
  - DISABLE_RATE_LIMIT (default: false)

Logging:
  - LOG_LEVEL (default: info), LOG_FORMAT (default: json), LOG_CALLER

Database:
  - DUCKDB_PATH (default: /data/cinematch.duckdb)
  - DUCKDB_MAX_MEMORY (default: 1GB), DUCKDB_THREADS (default: 0 = NumCPU)
  - DUCKDB_QUERY_TIMEOUT (default: 2m)
  - RATINGS_CSV, MOVIES_CSV: MovieLens files imported at startup
  - DB_BREAKER_MIN_REQS, DB_BREAKER_RATIO, DB_BREAKER_TIMEOUT

Snapshots:
  - SNAPSHOT_ENABLED (default: true), SNAPSHOT_PATH (default: /data/snapshots)
  - SNAPSHOT_IN_MEMORY (default: false)

Recommendation engine:
  - RECOMMEND_THRESHOLD (default: 0), RECOMMEND_WORKERS (default: 0 = NumCPU)
  - RECOMMEND_MIN_RATING, RECOMMEND_MAX_RATING (default: 1 and 5)
  - RECOMMEND_TRAIN_ON_STARTUP (default: true)
  - RECOMMEND_TRAIN_INTERVAL (default: 6h, 0 disables retraining)
  - RECOMMEND_TRAIN_TIMEOUT (default: 30m)
  - RECOMMEND_MIN_RATINGS, RECOMMEND_MIN_USERS
  - RECOMMEND_MAX_CANDIDATES, RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K
  - RECOMMEND_PREDICTION_TIMEOUT
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES
  - RECOMMEND_INVALIDATE_ON_TRAIN

# Validation

Validate runs go-playground/validator struct tags through the validation
package, then cross-field checks. The recommend section is also checked
against recommend.Config.Validate so the loader and the engine never
disagree about what is valid.

# Thread Safety

Config is immutable after Load() and safe for concurrent read access.
*/
package config
