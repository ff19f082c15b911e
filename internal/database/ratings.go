// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

// RatingStats summarizes the ratings table.
type RatingStats struct {
	Ratings int64 `json:"ratings"`
	Users   int64 `json:"users"`
	Movies  int64 `json:"movies"`
}

// GetRatings returns every rating ordered by user then movie.
// It implements recommend.DataProvider.
func (db *DB) GetRatings(ctx context.Context) ([]ratings.Rating, error) {
	return castResult[[]ratings.Rating](db.breaker.execute(func() (interface{}, error) {
		return db.queryRatings(ctx)
	}))
}

func (db *DB) queryRatings(ctx context.Context) ([]ratings.Rating, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, movie_id, rating FROM ratings ORDER BY user_id, movie_id`)
	if err != nil {
		metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer closeWithLog(rows, "ratings rows")

	var out []ratings.Rating
	for rows.Next() {
		var r ratings.Rating
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Value); err != nil {
			metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		out = append(out, r)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}

	metrics.RecordRowsLoaded("ratings", len(out))
	logging.Debug().Int("rows", len(out)).Dur("duration", time.Since(start)).Msg("Loaded ratings")
	return out, nil
}

// InsertRatings upserts rs in a single transaction. A later rating for the
// same (user, movie) replaces the earlier one.
func (db *DB) InsertRatings(ctx context.Context, rs []ratings.Rating) (err error) {
	if len(rs) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "ratings", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO ratings (user_id, movie_id, rating) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rating insert: %w", err)
	}
	defer closeWithLog(stmt, "rating insert statement")

	for i := range rs {
		if _, err = stmt.ExecContext(ctx, rs[i].UserID, rs[i].MovieID, rs[i].Value); err != nil {
			return fmt.Errorf("failed to insert rating (user %d, movie %d): %w", rs[i].UserID, rs[i].MovieID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ratings: %w", err)
	}
	return nil
}

// InsertMovies upserts catalog entries. Genres are stored pipe-separated.
func (db *DB) InsertMovies(ctx context.Context, movies []ratings.Movie) (err error) {
	if len(movies) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "movies", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO movies (movie_id, title, genres) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare movie insert: %w", err)
	}
	defer closeWithLog(stmt, "movie insert statement")

	for i := range movies {
		m := &movies[i]
		if _, err = stmt.ExecContext(ctx, m.ID, m.Title, strings.Join(m.Genres, "|")); err != nil {
			return fmt.Errorf("failed to insert movie %d: %w", m.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movies: %w", err)
	}
	return nil
}

// GetMovie returns catalog metadata for id, or ErrMovieNotFound.
func (db *DB) GetMovie(ctx context.Context, id int) (*ratings.Movie, error) {
	return castResult[*ratings.Movie](db.breaker.execute(func() (interface{}, error) {
		return db.queryMovie(ctx, id)
	}))
}

func (db *DB) queryMovie(ctx context.Context, id int) (*ratings.Movie, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var (
		m      ratings.Movie
		genres sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT movie_id, title, genres FROM movies WHERE movie_id = ?`, id).
		Scan(&m.ID, &m.Title, &genres)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "movies", time.Since(start), nil)
		return nil, fmt.Errorf("%w: %d", ErrMovieNotFound, id)
	}
	metrics.RecordDBQuery("select", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie %d: %w", id, err)
	}

	m.Genres = splitGenres(genres.String)
	return &m, nil
}

// GetMovies returns metadata for the known IDs among ids, keyed by ID.
// Unknown IDs are omitted.
func (db *DB) GetMovies(ctx context.Context, ids []int) (map[int]ratings.Movie, error) {
	if len(ids) == 0 {
		return map[int]ratings.Movie{}, nil
	}
	return castResult[map[int]ratings.Movie](db.breaker.execute(func() (interface{}, error) {
		return db.queryMovies(ctx, ids)
	}))
}

func (db *DB) queryMovies(ctx context.Context, ids []int) (map[int]ratings.Movie, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	start := time.Now()
	//nolint:gosec // G201: only "?" placeholders are interpolated
	query := fmt.Sprintf(`SELECT movie_id, title, genres FROM movies WHERE movie_id IN (%s)`,
		strings.Join(placeholders, ", "))
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBQuery("select", "movies", time.Since(start), err)
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer closeWithLog(rows, "movie rows")

	out := make(map[int]ratings.Movie, len(ids))
	for rows.Next() {
		var (
			m      ratings.Movie
			genres sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Title, &genres); err != nil {
			metrics.RecordDBQuery("select", "movies", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		m.Genres = splitGenres(genres.String)
		out[m.ID] = m
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return out, nil
}

// GetRatingStats counts ratings, distinct users and distinct movies.
func (db *DB) GetRatingStats(ctx context.Context) (*RatingStats, error) {
	return castResult[*RatingStats](db.breaker.execute(func() (interface{}, error) {
		return db.queryRatingStats(ctx)
	}))
}

func (db *DB) queryRatingStats(ctx context.Context) (*RatingStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var s RatingStats
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id), COUNT(DISTINCT movie_id) FROM ratings`).
		Scan(&s.Ratings, &s.Users, &s.Movies)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}
	return &s, nil
}

// splitGenres parses the MovieLens "A|B|C" genre list.
// "(no genres listed)" and empty strings yield nil.
func splitGenres(s string) []string {
	if s == "" || s == "(no genres listed)" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
