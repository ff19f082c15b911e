// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/cinematch/internal/logging"
)

var (
	// ErrCircuitOpen is returned when the read circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("database circuit breaker open")

	// ErrMovieNotFound is returned by GetMovie for an unknown movie ID.
	ErrMovieNotFound = errors.New("movie not found")
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
