// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package database stores ratings and movie metadata in DuckDB.
//
// # Overview
//
// DB is the rating source for the recommendation engine: GetRatings
// implements recommend.DataProvider. Ratings arrive either through
// InsertRatings or from MovieLens CSV files loaded with DuckDB's
// read_csv_auto (ImportRatingsCSV, ImportMoviesCSV).
//
// # Files
//
//   - database.go: connection lifecycle, pool tuning, checkpoints
//   - database_schema.go: ratings and movies tables
//   - ratings.go: rating and catalog reads and writes
//   - import.go: CSV import
//   - circuit_breaker.go: sony/gobreaker protection for reads
//
// # Schema
//
//	ratings(user_id INTEGER, movie_id INTEGER, rating DOUBLE, PRIMARY KEY(user_id, movie_id))
//	movies(movie_id INTEGER PRIMARY KEY, title TEXT, genres TEXT)
//
// A (user, movie) pair holds at most one rating; writes replace.
//
// # Circuit Breaker
//
// GetRatings, GetMovie and GetMovies run through a circuit breaker. Once
// the failure ratio over DatabaseConfig.BreakerMinRequests calls reaches
// BreakerFailureRatio the breaker opens and reads fail immediately with
// ErrCircuitOpen until BreakerTimeout elapses. Missing rows and cancelled
// contexts do not count as failures. State changes are exported through
// the circuit breaker metrics.
//
// # Thread Safety
//
// DB is safe for concurrent use; database/sql pools the connections.
package database
