// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

var _ recommend.DataProvider = (*DB)(nil)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections can
// hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func testConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Path:                ":memory:",
		MaxMemory:           "512MB",
		QueryTimeout:        30 * time.Second,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerTimeout:      time.Minute,
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(testConfig())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInsertAndGetRatings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := []ratings.Rating{
		{UserID: 2, MovieID: 10, Value: 4},
		{UserID: 1, MovieID: 20, Value: 3},
		{UserID: 1, MovieID: 10, Value: 5},
	}
	if err := db.InsertRatings(ctx, in); err != nil {
		t.Fatalf("InsertRatings() error = %v", err)
	}
	// Re-rating replaces the earlier value.
	if err := db.InsertRatings(ctx, []ratings.Rating{{UserID: 2, MovieID: 10, Value: 1.5}}); err != nil {
		t.Fatalf("InsertRatings() error = %v", err)
	}

	got, err := db.GetRatings(ctx)
	if err != nil {
		t.Fatalf("GetRatings() error = %v", err)
	}
	want := []ratings.Rating{
		{UserID: 1, MovieID: 10, Value: 5},
		{UserID: 1, MovieID: 20, Value: 3},
		{UserID: 2, MovieID: 10, Value: 1.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetRatings() = %+v, want %+v", got, want)
	}

	stats, err := db.GetRatingStats(ctx)
	if err != nil {
		t.Fatalf("GetRatingStats() error = %v", err)
	}
	if stats.Ratings != 3 || stats.Users != 2 || stats.Movies != 2 {
		t.Errorf("GetRatingStats() = %+v, want 3 ratings, 2 users, 2 movies", stats)
	}
}

func TestInsertRatings_Empty(t *testing.T) {
	db := setupTestDB(t)

	if err := db.InsertRatings(context.Background(), nil); err != nil {
		t.Errorf("InsertRatings(nil) error = %v", err)
	}
	got, err := db.GetRatings(context.Background())
	if err != nil {
		t.Fatalf("GetRatings() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetRatings() = %v, want empty", got)
	}
}

func TestMovies(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	movies := []ratings.Movie{
		{ID: 1, Title: "Toy Story (1995)", Genres: []string{"Adventure", "Animation"}},
		{ID: 2, Title: "Heat (1995)", Genres: []string{"Action"}},
		{ID: 3, Title: "Untitled"},
	}
	if err := db.InsertMovies(ctx, movies); err != nil {
		t.Fatalf("InsertMovies() error = %v", err)
	}

	t.Run("get one", func(t *testing.T) {
		m, err := db.GetMovie(ctx, 1)
		if err != nil {
			t.Fatalf("GetMovie() error = %v", err)
		}
		if !reflect.DeepEqual(*m, movies[0]) {
			t.Errorf("GetMovie() = %+v, want %+v", *m, movies[0])
		}
	})

	t.Run("no genres", func(t *testing.T) {
		m, err := db.GetMovie(ctx, 3)
		if err != nil {
			t.Fatalf("GetMovie() error = %v", err)
		}
		if m.Genres != nil {
			t.Errorf("Genres = %v, want nil", m.Genres)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := db.GetMovie(ctx, 999); !errors.Is(err, ErrMovieNotFound) {
			t.Errorf("GetMovie(999) error = %v, want ErrMovieNotFound", err)
		}
	})

	t.Run("batch skips unknown", func(t *testing.T) {
		got, err := db.GetMovies(ctx, []int{2, 1, 42})
		if err != nil {
			t.Fatalf("GetMovies() error = %v", err)
		}
		if len(got) != 2 || got[2].Title != "Heat (1995)" {
			t.Errorf("GetMovies() = %+v", got)
		}
	})
}

func TestImportCSV(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ratingsPath := writeFile(t, "ratings.csv",
		"userId,movieId,rating,timestamp\n"+
			"1,1,4.0,964982703\n"+
			"1,3,4.5,964981247\n"+
			"2,1,2.5,964982224\n")
	moviesPath := writeFile(t, "movie's list.csv",
		"movieId,title,genres\n"+
			"1,Toy Story (1995),Adventure|Animation|Children\n"+
			"3,\"American President, The (1995)\",Comedy|Drama|Romance\n")

	n, err := db.ImportRatingsCSV(ctx, ratingsPath)
	if err != nil {
		t.Fatalf("ImportRatingsCSV() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ImportRatingsCSV() = %d rows, want 3", n)
	}

	if _, err := db.ImportMoviesCSV(ctx, moviesPath); err != nil {
		t.Fatalf("ImportMoviesCSV() error = %v", err)
	}

	got, err := db.GetRatings(ctx)
	if err != nil {
		t.Fatalf("GetRatings() error = %v", err)
	}
	want := []ratings.Rating{
		{UserID: 1, MovieID: 1, Value: 4},
		{UserID: 1, MovieID: 3, Value: 4.5},
		{UserID: 2, MovieID: 1, Value: 2.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetRatings() = %+v, want %+v", got, want)
	}

	m, err := db.GetMovie(ctx, 3)
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if m.Title != "American President, The (1995)" || len(m.Genres) != 3 {
		t.Errorf("GetMovie(3) = %+v", m)
	}
}

func TestImportCSV_MissingFile(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ImportRatingsCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ImportRatingsCSV() error = %v, want os.ErrNotExist", err)
	}
}

func TestCircuitBreaker_OpensOnFailures(t *testing.T) {
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// Every read now fails with "database is closed".
	if err := db.conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := db.GetRatings(ctx)
		if err == nil || errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d: error = %v, want underlying failure", i, err)
		}
	}

	if _, err := db.GetRatings(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("GetRatings() error = %v, want ErrCircuitOpen", err)
	}
	if got := db.BreakerState(); got != "open" {
		t.Errorf("BreakerState() = %q, want open", got)
	}
}

func TestCircuitBreaker_RatingStatsTripsBreaker(t *testing.T) {
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := db.GetRatingStats(ctx)
		if err == nil || errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d: error = %v, want underlying failure", i, err)
		}
	}

	if got := db.BreakerState(); got != "open" {
		t.Errorf("BreakerState() = %q, want open", got)
	}
	if _, err := db.GetRatingStats(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("GetRatingStats() error = %v, want ErrCircuitOpen", err)
	}
}

func TestIsBreakerSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"movie not found", ErrMovieNotFound, true},
		{"canceled", context.Canceled, true},
		{"wrapped canceled", errors.Join(errors.New("query"), context.Canceled), true},
		{"deadline", context.DeadlineExceeded, false},
		{"io failure", errors.New("IO Error: disk full"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBreakerSuccess(tt.err); got != tt.want {
				t.Errorf("isBreakerSuccess(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"(no genres listed)", nil},
		{"Drama", []string{"Drama"}},
		{"Action|Sci-Fi", []string{"Action", "Sci-Fi"}},
		{"Action||", []string{"Action"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := splitGenres(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitGenres(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuoteLiteral(t *testing.T) {
	if got := quoteLiteral("/data/it's.csv"); got != "'/data/it''s.csv'" {
		t.Errorf("quoteLiteral() = %s", got)
	}
}
