// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package ratings turns raw (user, movie, rating) triples into immutable
// profiles suitable for the pearson engine.
//
// Build assigns each user a dense internal ID in ascending user-ID order,
// so the same rating set always yields the same IDs and the same
// Fingerprint. Profiles precompute their mean rating once.
package ratings
