// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package snapshot persists precomputed similarity matrices in BadgerDB.
//
// Building the full pairwise matrix is the expensive part of training.
// Store keys each matrix by the fingerprint of the rating set it was
// computed from, so a restart (or a scheduled retrain with no new
// ratings) restores the matrix instead of recomputing it.
//
// # Layout
//
//	meta:<fingerprint hex>           JSON Meta (profiles, cells, chunks, created_at)
//	model:<fingerprint hex>:<chunk>  little-endian float64 cells, 64Ki cells per chunk
//
// Chunks are written before meta and meta is deleted before chunks, so
// readers only ever see complete models. LoadModel verifies the cell
// count against meta and reports ErrCorrupt on mismatch; the engine then
// recomputes.
//
// # Retention
//
// SaveModel keeps the DefaultRetain most recent models (see WithRetain).
// Prune removes everything except one fingerprint, and RunGC reclaims
// value log space afterwards.
package snapshot
