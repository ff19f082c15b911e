// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "bad port", modify: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "bad log level", modify: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "logging.level"},
		{name: "bad log format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "empty database path", modify: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "breaker ratio above one", modify: func(c *Config) { c.Database.BreakerFailureRatio = 1.5 }, wantErr: "database.breaker_failure_ratio"},
		{name: "threshold out of range", modify: func(c *Config) { c.Recommend.Threshold = -1.5 }, wantErr: "recommend.threshold"},
		{name: "inverted rating scale", modify: func(c *Config) { c.Recommend.MaxRating = 0 }, wantErr: "recommend.max_rating"},
		{name: "max k below default k", modify: func(c *Config) { c.Recommend.MaxK = 1 }, wantErr: "recommend.max_k"},
		{name: "zero train timeout", modify: func(c *Config) { c.Recommend.TrainTimeout = 0 }, wantErr: "recommend.train_timeout"},
		{
			name:    "snapshot path required on disk",
			modify:  func(c *Config) { c.Snapshot.Path = "" },
			wantErr: "snapshot.path",
		},
		{
			name: "snapshot path optional in memory",
			modify: func(c *Config) {
				c.Snapshot.Path = ""
				c.Snapshot.InMemory = true
			},
		},
		{name: "snapshot retain zero", modify: func(c *Config) { c.Snapshot.Retain = 0 }, wantErr: "snapshot.retain"},
		{
			name:    "rate limit without window",
			modify:  func(c *Config) { c.Server.RateLimitWindow = 0 },
			wantErr: "rate_limit_window",
		},
		{
			name: "rate limit disabled",
			modify: func(c *Config) {
				c.Server.RateLimitDisabled = true
				c.Server.RateLimitReqs = 0
			},
		},
		{
			name:    "cache enabled without entries",
			modify:  func(c *Config) { c.Recommend.CacheMaxEntries = 0 },
			wantErr: "cache.max_entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_RecommendEngineConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.Threshold = 0.2
	cfg.Recommend.Workers = 3
	cfg.Recommend.CacheTTL = time.Minute

	rc := cfg.RecommendEngineConfig()
	if err := rc.Validate(); err != nil {
		t.Fatalf("engine config invalid: %v", err)
	}
	if rc.Pearson.Threshold != 0.2 || rc.Pearson.Workers != 3 {
		t.Errorf("Pearson = %+v", rc.Pearson)
	}
	if rc.Ratings.Min != 1 || rc.Ratings.Max != 5 {
		t.Errorf("Ratings = %+v", rc.Ratings)
	}
	if rc.Cache.TTL != time.Minute || !rc.Cache.Enabled {
		t.Errorf("Cache = %+v", rc.Cache)
	}
	if rc.Training.Interval != cfg.Recommend.TrainInterval {
		t.Errorf("Training.Interval = %v, want %v", rc.Training.Interval, cfg.Recommend.TrainInterval)
	}
}

func TestConfig_LoggingConfigAndAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000

	lc := cfg.LoggingConfig()
	if lc.Level != "warn" || lc.Format != "json" || !lc.Timestamp || lc.Output == nil {
		t.Errorf("LoggingConfig() = %+v", lc)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", got)
	}
}
