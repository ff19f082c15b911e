// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// ImportRatingsCSV loads a MovieLens ratings file (userId,movieId,rating[,timestamp])
// through DuckDB's CSV reader. Existing (user, movie) rows are replaced.
// Returns the number of rows read from the file.
func (db *DB) ImportRatingsCSV(ctx context.Context, path string) (int64, error) {
	query := fmt.Sprintf(`INSERT OR REPLACE INTO ratings (user_id, movie_id, rating)
		SELECT CAST(userId AS INTEGER), CAST(movieId AS INTEGER), CAST(rating AS DOUBLE)
		FROM read_csv_auto(%s, header = true)`, quoteLiteral(path))
	return db.importCSV(ctx, "ratings", path, query)
}

// ImportMoviesCSV loads a MovieLens movies file (movieId,title,genres).
func (db *DB) ImportMoviesCSV(ctx context.Context, path string) (int64, error) {
	query := fmt.Sprintf(`INSERT OR REPLACE INTO movies (movie_id, title, genres)
		SELECT CAST(movieId AS INTEGER), CAST(title AS TEXT), CAST(genres AS TEXT)
		FROM read_csv_auto(%s, header = true, quote = '"')`, quoteLiteral(path))
	return db.importCSV(ctx, "movies", path, query)
}

func (db *DB) importCSV(ctx context.Context, table, path, query string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%s csv: %w", table, err)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query)
	metrics.RecordDBQuery("import", table, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to import %s from %s: %w", table, path, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		n = -1
	}
	if n > 0 {
		metrics.RecordRowsLoaded(table, int(n))
	}

	logging.Info().
		Str("table", table).
		Str("path", path).
		Int64("rows", n).
		Dur("duration", time.Since(start)).
		Msg("CSV imported")
	return n, nil
}

// quoteLiteral renders s as a SQL string literal.
// DuckDB table functions do not accept bound parameters for file paths.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
