// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	ModelTrained      bool    `json:"model_trained"`
	DatabaseConnected bool    `json:"database_connected"`
	CircuitBreaker    string  `json:"circuit_breaker,omitempty"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Training recommend.TrainingStatus `json:"training"`
	Metrics  recommend.Metrics        `json:"metrics"`
	Config   *recommend.Config        `json:"config"`
	CacheLen int                      `json:"cache_entries"`
}

// Health handles GET /api/v1/health.
//
// The status is "healthy" when a model is active and the database
// answers, and "degraded" otherwise. It always returns 200 so load
// balancers keep routing to a node that can still answer from its model.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	trained := h.engine.IsTrained()
	dbConnected := true
	breaker := ""
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		dbConnected = h.health.Ping(ctx) == nil
		cancel()
		breaker = h.health.BreakerState()
	}

	status := "healthy"
	if !trained || !dbConnected {
		status = "degraded"
	}

	respondSuccess(w, r, HealthStatus{
		Status:            status,
		Version:           h.version,
		ModelTrained:      trained,
		DatabaseConnected: dbConnected,
		CircuitBreaker:    breaker,
		UptimeSeconds:     time.Since(h.startTime).Seconds(),
	}, start)
}

// Ready handles GET /api/v1/health/ready: 200 once a model is active.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.engine.IsTrained() {
		respondEngineError(w, r, recommend.ErrNotTrained)
		return
	}
	respondSuccess(w, r, map[string]bool{"ready": true}, start)
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, StatusResponse{
		Training: h.engine.GetStatus(),
		Metrics:  h.engine.GetMetrics(),
		Config:   h.engine.GetConfig(),
		CacheLen: h.engine.CacheLen(),
	}, start)
}
