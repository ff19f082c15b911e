// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

import "errors"

var (
	// ErrNilProfile is returned when the profile universe contains a nil entry.
	ErrNilProfile = errors.New("pearson: nil profile")

	// ErrInvalidProfileID is returned when a profile's internal ID lies outside [0, n).
	ErrInvalidProfileID = errors.New("pearson: internal id out of range")

	// ErrDuplicateProfileID is returned when two profiles share an internal ID.
	ErrDuplicateProfileID = errors.New("pearson: duplicate internal id")

	// ErrUnknownProfile is returned by queries for a profile outside the engine's universe.
	ErrUnknownProfile = errors.New("pearson: profile not in universe")

	// ErrMatrixSize is returned by Restore when the cell count is not n*n.
	ErrMatrixSize = errors.New("pearson: matrix size mismatch")

	// ErrAsymmetricMatrix is returned by Restore when cells[a][b] != cells[b][a].
	ErrAsymmetricMatrix = errors.New("pearson: matrix is not symmetric")
)
