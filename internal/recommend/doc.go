// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend serves user-based collaborative filtering queries on
// top of the pearson similarity engine.
//
// # Architecture
//
// The Engine owns a single immutable model: a ratings.Set of profiles and
// the pearson.Engine holding their precomputed similarity matrix. Training
// loads all ratings from a DataProvider, validates them against the
// configured rating scale, builds the matrix (or restores it from a
// ModelStore when the rating set is unchanged) and swaps the new model in
// with an atomic pointer store.
//
// # Queries
//
//   - Similarity: cached pairwise similarity between two users
//   - Neighbors: users with similarity strictly above a threshold
//   - Predict: mean-centered weighted average over neighbors who rated a movie
//   - Recommend: top-K unrated movies by predicted rating
//
// Predictions with no positive neighbor weight report OK=false with a
// rating of 0 rather than a fabricated score. Recommend drops them.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetDataProvider(db)
//	engine.SetModelStore(snapshots)
//	if err := engine.Train(ctx); err != nil { ... }
//
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: 42, K: 10})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Training is serialized with
// TryLock; a second concurrent Train returns ErrTrainingInProgress. Queries
// read the active model without locking and are never blocked by training.
package recommend
