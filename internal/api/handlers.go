// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

// Catalog resolves movie metadata for recommendation responses.
type Catalog interface {
	GetMovies(ctx context.Context, ids []int) (map[int]ratings.Movie, error)
}

// HealthChecker reports storage connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// Handler serves the prediction API.
type Handler struct {
	engine    *recommend.Engine
	catalog   Catalog
	health    HealthChecker
	version   string
	startTime time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithCatalog enables title enrichment on recommendations.
func WithCatalog(c Catalog) HandlerOption {
	return func(h *Handler) { h.catalog = c }
}

// WithHealthChecker reports database state on /health.
func WithHealthChecker(hc HealthChecker) HandlerOption {
	return func(h *Handler) { h.health = hc }
}

// WithVersion sets the version reported on /health.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates a Handler around engine.
func NewHandler(engine *recommend.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:    engine,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
