// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// SimilarityQuery is GET /similarity?a=&b=.
type SimilarityQuery struct {
	A *int `query:"a" validate:"required"`
	B *int `query:"b" validate:"required"`
}

// ThresholdQuery carries the optional neighbor threshold override.
type ThresholdQuery struct {
	Threshold *float64 `query:"threshold" validate:"omitempty,similarity"`
}

// RecommendQuery is GET /users/{userID}/recommendations?k=&threshold=.
// K above the configured maximum is clamped by the engine.
type RecommendQuery struct {
	K         int      `query:"k" validate:"gte=0"`
	Threshold *float64 `query:"threshold" validate:"omitempty,similarity"`
	Titles    bool     `query:"titles"`
}

// paramError is a malformed query or path parameter.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.name, e.value)
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

// queryFloat rejects NaN and infinities so they never reach the validator.
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &paramError{name: name, value: raw}
	}
	return v, nil
}

func parseSimilarityQuery(r *http.Request) (SimilarityQuery, error) {
	var q SimilarityQuery
	var err error
	if q.A, err = queryInt(r, "a"); err != nil {
		return q, err
	}
	q.B, err = queryInt(r, "b")
	return q, err
}

func parseThresholdQuery(r *http.Request) (ThresholdQuery, error) {
	th, err := queryFloat(r, "threshold")
	return ThresholdQuery{Threshold: th}, err
}

func parseRecommendQuery(r *http.Request) (RecommendQuery, error) {
	var q RecommendQuery
	k, err := queryInt(r, "k")
	if err != nil {
		return q, err
	}
	if k != nil {
		q.K = *k
	}
	if q.Threshold, err = queryFloat(r, "threshold"); err != nil {
		return q, err
	}
	q.Titles, err = queryBool(r, "titles")
	return q, err
}
