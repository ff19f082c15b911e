// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services provides suture.Service wrappers for Cinematch components.

Each wrapper translates a component lifecycle into suture's Serve(ctx)
pattern and implements fmt.Stringer for supervisor log messages.

# Available Services

HTTPServerService:
  - Wraps *http.Server with graceful shutdown
  - http.ErrServerClosed is a clean stop

RecommendService:
  - Trains on startup and every TrainInterval
  - Failed runs keep the previous model active

SnapshotMaintenanceService:
  - Runs BadgerDB value log GC on the snapshot store
*/
package services
