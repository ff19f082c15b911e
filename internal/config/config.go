// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT: listen address (default: 0.0.0.0:8080)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: per-IP limit (default: 100 per 1m)
//   - DISABLE_RATE_LIMIT: turn rate limiting off
type ServerConfig struct {
	Host              string        `koanf:"host" validate:"required"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: database file, or ":memory:" (default: /data/cinematch.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: DuckDB worker threads, 0 = NumCPU (default: 0)
//   - RATINGS_CSV, MOVIES_CSV: MovieLens files imported at startup
type DatabaseConfig struct {
	Path                   string        `koanf:"path" validate:"required"`
	MaxMemory              string        `koanf:"max_memory" validate:"required"`
	Threads                int           `koanf:"threads" validate:"gte=0"`
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"`
	QueryTimeout           time.Duration `koanf:"query_timeout" validate:"gt=0"`
	RatingsCSV             string        `koanf:"ratings_csv"`
	MoviesCSV              string        `koanf:"movies_csv"`

	// Circuit breaker around rating reads.
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"gte=1"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// SnapshotConfig holds BadgerDB snapshot store settings.
//
// Environment Variables:
//   - SNAPSHOT_ENABLED: persist similarity matrices (default: true)
//   - SNAPSHOT_PATH: badger directory (default: /data/snapshots)
//   - SNAPSHOT_IN_MEMORY: keep snapshots in memory only (default: false)
//   - SNAPSHOT_RETAIN: matrices kept after each save (default: 2)
//   - SNAPSHOT_GC_INTERVAL: value log GC period, 0 disables (default: 10m)
type SnapshotConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory   bool          `koanf:"in_memory"`
	Retain     int           `koanf:"retain" validate:"gte=1"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// RecommendConfig holds recommendation engine settings.
// It mirrors recommend.Config with koanf keys; see RecommendEngineConfig.
type RecommendConfig struct {
	TrainOnStartup bool `koanf:"train_on_startup"`

	Threshold float64 `koanf:"threshold" validate:"similarity"`
	Workers   int     `koanf:"workers" validate:"gte=0"`

	MinRating float64 `koanf:"min_rating" validate:"finite"`
	MaxRating float64 `koanf:"max_rating" validate:"finite,gtfield=MinRating"`

	TrainInterval time.Duration `koanf:"train_interval" validate:"gte=0"`
	TrainTimeout  time.Duration `koanf:"train_timeout" validate:"gt=0"`
	MinRatings    int           `koanf:"min_ratings" validate:"gte=0"`
	MinUsers      int           `koanf:"min_users" validate:"gte=0"`

	MaxCandidates     int           `koanf:"max_candidates" validate:"gte=1"`
	DefaultK          int           `koanf:"default_k" validate:"gte=1"`
	MaxK              int           `koanf:"max_k" validate:"gtefield=DefaultK"`
	PredictionTimeout time.Duration `koanf:"prediction_timeout" validate:"gt=0"`

	CacheEnabled      bool          `koanf:"cache_enabled"`
	CacheTTL          time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	CacheMaxEntries   int           `koanf:"cache_max_entries" validate:"gte=0"`
	InvalidateOnTrain bool          `koanf:"invalidate_on_train"`
}
