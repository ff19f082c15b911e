// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// SimilarityResult is the body of GET /similarity.
type SimilarityResult struct {
	UserA      int     `json:"user_a"`
	UserB      int     `json:"user_b"`
	Similarity float64 `json:"similarity"`
}

// NeighborsResult is the body of GET /users/{userID}/neighbors.
type NeighborsResult struct {
	UserID    int                  `json:"user_id"`
	Threshold *float64             `json:"threshold,omitempty"`
	Neighbors []recommend.Neighbor `json:"neighbors"`
}

// RecommendedMovie is a scored movie with optional catalog metadata.
type RecommendedMovie struct {
	recommend.ScoredMovie
	Title  string   `json:"title,omitempty"`
	Genres []string `json:"genres,omitempty"`
}

// RecommendationsResult is the body of GET /users/{userID}/recommendations.
type RecommendationsResult struct {
	Items           []RecommendedMovie         `json:"items"`
	TotalCandidates int                        `json:"total_candidates"`
	Metadata        recommend.ResponseMetadata `json:"model"`
}

// Profiles handles GET /api/v1/profiles.
func (h *Handler) Profiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	users, err := h.engine.Users(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondList(w, r, users, len(users), start)
}

// Similarity handles GET /api/v1/similarity?a=&b=.
func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, err := parseSimilarityQuery(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	sim, err := h.engine.Similarity(r.Context(), *q.A, *q.B)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, SimilarityResult{UserA: *q.A, UserB: *q.B, Similarity: sim}, start)
}

// Neighbors handles GET /api/v1/users/{userID}/neighbors?threshold=.
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := pathInt(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	q, ok := h.thresholdQuery(w, r)
	if !ok {
		return
	}

	neighbors, err := h.engine.Neighbors(r.Context(), userID, q.Threshold)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondList(w, r, NeighborsResult{
		UserID:    userID,
		Threshold: q.Threshold,
		Neighbors: neighbors,
	}, len(neighbors), start)
}

// Predict handles GET /api/v1/users/{userID}/predict/{movieID}?threshold=.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := pathInt(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	movieID, err := pathInt(r, "movieID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	q, ok := h.thresholdQuery(w, r)
	if !ok {
		return
	}

	pred, err := h.engine.Predict(r.Context(), userID, movieID, q.Threshold)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, pred, start)
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
// With titles=true each item is enriched from the movie catalog; a
// catalog failure degrades to untitled items.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := pathInt(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	q, err := parseRecommendQuery(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		UserID:    userID,
		K:         q.K,
		Threshold: q.Threshold,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	items := make([]RecommendedMovie, len(resp.Items))
	for i, it := range resp.Items {
		items[i] = RecommendedMovie{ScoredMovie: it}
	}
	if q.Titles && h.catalog != nil && len(items) > 0 {
		h.enrich(r.Context(), items)
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: statusSuccess,
		Data: RecommendationsResult{
			Items:           items,
			TotalCandidates: resp.TotalCandidates,
			Metadata:        resp.Metadata,
		},
		Metadata: Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.Metadata.CacheHit,
			Count:       intPtr(len(items)),
		},
	})
}

func (h *Handler) enrich(ctx context.Context, items []RecommendedMovie) {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.MovieID
	}
	movies, err := h.catalog.GetMovies(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("movie catalog unavailable, returning untitled items")
		return
	}
	for i := range items {
		if m, ok := movies[items[i].MovieID]; ok {
			items[i].Title = m.Title
			items[i].Genres = m.Genres
		}
	}
}

// Train handles POST /api/v1/train.
//
// By default training runs in the background and the handler answers 202.
// With wait=true the handler blocks until the run finishes and returns the
// resulting status.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	wait, err := queryBool(r, "wait")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	if h.engine.GetStatus().IsTraining {
		respondEngineError(w, r, recommend.ErrTrainingInProgress)
		return
	}

	// Training outlives the request; keep its values for log correlation.
	ctx := context.WithoutCancel(r.Context())

	if wait {
		if err := h.engine.Train(ctx); err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondSuccess(w, r, h.engine.GetStatus(), start)
		return
	}

	go func() {
		err := h.engine.Train(ctx)
		switch {
		case err == nil:
		case errors.Is(err, recommend.ErrTrainingInProgress):
			logging.Ctx(ctx).Debug().Msg("training already running")
		default:
			logging.Ctx(ctx).Warn().Err(err).Msg("manual training failed")
		}
	}()

	respondJSON(w, r, http.StatusAccepted, &APIResponse{
		Status: statusSuccess,
		Data:   map[string]string{"message": "training started"},
		Metadata: Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// thresholdQuery parses and validates ?threshold=, writing the error
// response itself when it returns false.
func (h *Handler) thresholdQuery(w http.ResponseWriter, r *http.Request) (ThresholdQuery, bool) {
	q, err := parseThresholdQuery(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return q, false
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, r, verr)
		return q, false
	}
	return q, true
}

func intPtr(v int) *int { return &v }
