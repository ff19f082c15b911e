// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/database"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/supervisor"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("SNAPSHOT_IN_MEMORY", "true")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestRouterConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.CORSOrigins = []string{"https://example.com"}
	cfg.Server.RateLimitReqs = 7
	cfg.Server.RateLimitWindow = time.Second
	cfg.Server.RateLimitDisabled = true

	rc := routerConfig(cfg)
	if len(rc.CORSAllowedOrigins) != 1 || rc.RateLimitRequests != 7 || rc.RateLimitWindow != time.Second || !rc.RateLimitDisabled {
		t.Errorf("routerConfig() = %+v", rc)
	}
}

func TestNewHTTPServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9999
	cfg.Server.Timeout = 5 * time.Second

	srv := newHTTPServer(cfg, http.NotFoundHandler())
	if srv.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 5*time.Second || srv.IdleTimeout != 10*time.Second {
		t.Errorf("timeouts = %v / %v", srv.ReadHeaderTimeout, srv.IdleTimeout)
	}
}

func TestOpenSnapshots(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		store, err := openSnapshots(&config.SnapshotConfig{Enabled: false})
		if err != nil || store != nil {
			t.Errorf("openSnapshots() = %v, %v, want nil, nil", store, err)
		}
	})

	t.Run("in memory", func(t *testing.T) {
		store, err := openSnapshots(&config.SnapshotConfig{Enabled: true, InMemory: true, Retain: 1})
		if err != nil {
			t.Fatalf("openSnapshots() error = %v", err)
		}
		defer store.Close()
	})
}

func TestWiring_ImportAndTrain(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Database.MoviesCSV = filepath.Join(dir, "movies.csv")
	cfg.Database.RatingsCSV = filepath.Join(dir, "ratings.csv")
	writeFile(t, cfg.Database.MoviesCSV, "movieId,title,genres\n1,Alien (1979),Horror|Sci-Fi\n2,Heat (1995),Action\n3,Up (2009),Animation\n")
	writeFile(t, cfg.Database.RatingsCSV, "userId,movieId,rating,timestamp\n"+
		"1,1,5,0\n1,2,3,0\n2,1,4,0\n2,2,2,0\n2,3,5,0\n3,1,1,0\n3,3,2,0\n")

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := importCSVs(ctx, db, &cfg.Database); err != nil {
		t.Fatalf("importCSVs() error = %v", err)
	}

	store, err := openSnapshots(&cfg.Snapshot)
	if err != nil {
		t.Fatalf("openSnapshots() error = %v", err)
	}
	defer store.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("test"), supervisor.TreeConfig{})
	if err != nil {
		t.Fatal(err)
	}
	engine, err := initRecommend(cfg, db, store, tree)
	if err != nil {
		t.Fatalf("initRecommend() error = %v", err)
	}
	if err := engine.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if got := engine.GetStatus().UserCount; got != 3 {
		t.Errorf("UserCount = %d, want 3", got)
	}

	metas, err := store.List(ctx)
	if err != nil || len(metas) != 1 {
		t.Errorf("snapshot List() = %v, %v, want one saved matrix", metas, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
