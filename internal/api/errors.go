// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinematch/internal/database"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Error codes for API responses.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeNotTrained         = "MODEL_NOT_TRAINED"
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	ErrCodeInsufficientData   = "INSUFFICIENT_DATA"
	ErrCodeDatabase           = "DATABASE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// respondEngineError maps engine and storage errors to HTTP responses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeUserNotFound, err.Error(), nil)
	case errors.Is(err, recommend.ErrNotTrained):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotTrained, "model has not been trained yet", nil)
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeTrainingInProgress, "training is already in progress", nil)
	case errors.Is(err, recommend.ErrInsufficientData):
		respondError(w, r, http.StatusUnprocessableEntity, ErrCodeInsufficientData, err.Error(), err)
	case errors.Is(err, database.ErrCircuitOpen):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeDatabase, "database temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal error", err)
	}
}

// respondValidationError writes a 400 with per-field details.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, r, http.StatusBadRequest, &APIResponse{
		Status: statusError,
		Error: &APIError{
			Code:    ErrCodeValidation,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}
