// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/middleware"
)

// NewRouter builds the HTTP handler for the prediction API.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(logging.WithComponent("http"), cfg.SlowRequest))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "no such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Health probes are exempt from rate limiting.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/", h.Health)
		r.Get("/ready", h.Ready)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/status", h.Status)
		r.Get("/profiles", h.Profiles)
		r.Get("/similarity", h.Similarity)
		r.Post("/train", h.Train)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/neighbors", h.Neighbors)
			r.Get("/predict/{movieID}", h.Predict)
			r.Get("/recommendations", h.Recommendations)
		})
	})

	return r
}
