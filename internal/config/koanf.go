// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:                   "/data/cinematch.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			QueryTimeout:           2 * time.Minute,
			BreakerMinRequests:     5,
			BreakerFailureRatio:    0.6,
			BreakerTimeout:         30 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Enabled:    true,
			Path:       "/data/snapshots",
			Retain:     2,
			GCInterval: 10 * time.Minute,
		},
		Recommend: RecommendConfig{
			TrainOnStartup:    true,
			Threshold:         0,
			Workers:           0,
			MinRating:         1,
			MaxRating:         5,
			TrainInterval:     6 * time.Hour,
			TrainTimeout:      30 * time.Minute,
			MinRatings:        1,
			MinUsers:          2,
			MaxCandidates:     5000,
			DefaultK:          20,
			MaxK:              100,
			PredictionTimeout: 5 * time.Second,
			CacheEnabled:      true,
			CacheTTL:          5 * time.Minute,
			CacheMaxEntries:   10000,
			InvalidateOnTrain: true,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML values are already slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database mappings
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"duckdb_query_timeout": "database.query_timeout",
	"ratings_csv":          "database.ratings_csv",
	"movies_csv":           "database.movies_csv",
	"db_breaker_min_reqs":  "database.breaker_min_requests",
	"db_breaker_ratio":     "database.breaker_failure_ratio",
	"db_breaker_timeout":   "database.breaker_timeout",

	// Snapshot mappings
	"snapshot_enabled":     "snapshot.enabled",
	"snapshot_path":        "snapshot.path",
	"snapshot_in_memory":   "snapshot.in_memory",
	"snapshot_retain":      "snapshot.retain",
	"snapshot_gc_interval": "snapshot.gc_interval",

	// Recommendation engine mappings
	"recommend_train_on_startup":    "recommend.train_on_startup",
	"recommend_threshold":           "recommend.threshold",
	"recommend_workers":             "recommend.workers",
	"recommend_min_rating":          "recommend.min_rating",
	"recommend_max_rating":          "recommend.max_rating",
	"recommend_train_interval":      "recommend.train_interval",
	"recommend_train_timeout":       "recommend.train_timeout",
	"recommend_min_ratings":         "recommend.min_ratings",
	"recommend_min_users":           "recommend.min_users",
	"recommend_max_candidates":      "recommend.max_candidates",
	"recommend_default_k":           "recommend.default_k",
	"recommend_max_k":               "recommend.max_k",
	"recommend_prediction_timeout":  "recommend.prediction_timeout",
	"recommend_cache_enabled":       "recommend.cache_enabled",
	"recommend_cache_ttl":           "recommend.cache_ttl",
	"recommend_cache_max_entries":   "recommend.cache_max_entries",
	"recommend_invalidate_on_train": "recommend.invalidate_on_train",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - RECOMMEND_THRESHOLD -> recommend.threshold
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
