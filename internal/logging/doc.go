// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package logging provides centralized zerolog-based logging.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Server starting")
//	logging.Err(err).Msg("Operation failed")
//
//	// Request- or training-scoped
//	logging.Ctx(ctx).Info().Int("user_id", id).Msg("Prediction served")
//
// Components take a zerolog.Logger by value and derive a child logger with
// a "component" field; the global helpers exist for main and middleware.
//
// # slog Interop
//
// The supervisor tree logs through sutureslog, which expects *slog.Logger.
// NewSlogLogger returns one backed by the global zerolog logger.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
