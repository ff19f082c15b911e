// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package pearson implements user-user similarity and rating prediction
// using the Pearson correlation coefficient over co-rated movies.
//
// # Similarity
//
// For two profiles a and b with co-rated movies C, each rating is centered
// on the profile's mean over ALL of its ratings (not only those in C):
//
//	sim(a, b) = sum((r_a - mean_a) * (r_b - mean_b)) /
//	            sqrt(sum((r_a - mean_a)^2) * sum((r_b - mean_b)^2))
//
// A zero denominator (including an empty C) yields 0. When |C| is below
// DampingFloor the result is scaled by |C|/DampingFloor, so correlations
// built on a handful of movies carry proportionally less weight.
//
// # Similarity Cache
//
// An Engine precomputes sim(a, b) for every ordered pair of profiles at
// construction and stores the results in a dense n*n matrix addressed by
// each profile's InternalID. Precomputation is split across workers by
// unordered pair: the worker owning row a computes every pair (a, b) with
// b >= a in both directions and writes both cells, so every cell has
// exactly one writer.
//
// # Prediction
//
//	predict(p, m) = mean_p + sum(sim(p, q) * (r_q(m) - mean_q)) / sum(sim(p, q))
//
// summed over neighbors q with sim(p, q) > threshold that rated m. When the
// weight sum is not positive the prediction falls back to 0; Predict reports
// that case explicitly through Prediction.OK.
//
// # Thread Safety
//
// The matrix and profile universe are never mutated after construction.
// All query methods are safe for concurrent use without locking.
package pearson
