// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinematch/internal/snapshot"
)

// SnapshotGC reclaims space in the snapshot store.
type SnapshotGC interface {
	RunGC() error
}

// SnapshotMaintenanceService periodically runs value log GC on the
// snapshot store so pruned matrices release disk space.
type SnapshotMaintenanceService struct {
	store    SnapshotGC
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewSnapshotMaintenanceService creates the GC loop. A non-positive
// interval makes Serve idle until canceled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotMaintenanceService(store SnapshotGC, interval time.Duration, logger zerolog.Logger) *SnapshotMaintenanceService {
	return &SnapshotMaintenanceService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "snapshot-gc").Logger(),
		name:     "snapshot-maintenance",
	}
}

// Serve implements suture.Service. A closed store returns
// suture.ErrDoNotRestart so the supervisor drops the service; other GC
// errors are logged and retried on the next tick.
func (s *SnapshotMaintenanceService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			err := s.store.RunGC()
			switch {
			case err == nil:
				s.logger.Debug().Dur("duration", time.Since(start)).Msg("snapshot GC complete")
			case errors.Is(err, snapshot.ErrClosed):
				s.logger.Info().Msg("snapshot store closed, stopping GC")
				return suture.ErrDoNotRestart
			default:
				s.logger.Warn().Err(err).Msg("snapshot GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *SnapshotMaintenanceService) String() string {
	return s.name
}
