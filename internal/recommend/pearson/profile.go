// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

// MovieID identifies a movie. The engine treats it as an opaque key.
type MovieID int

// Profile is a user's rating history as seen by the engine.
//
// Implementations must be immutable for the lifetime of an Engine and
// comparable with ==; pointer types satisfy this naturally.
type Profile interface {
	// InternalID returns the dense, zero-based index of the profile.
	// IDs must be unique within the set handed to New.
	InternalID() int

	// MeanRating returns the mean over all of the profile's ratings.
	MeanRating() float64

	// RatingFor returns the rating given to m. Only valid when HasRated(m).
	RatingFor(m MovieID) float64

	// HasRated reports whether the profile rated m.
	HasRated(m MovieID) bool

	// CommonMovies returns the movies rated by both profiles.
	// The result must be the same set regardless of argument order.
	CommonMovies(other Profile) []MovieID
}
