// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator, reports fields by their
// external names (query parameter, koanf key or JSON name), and converts
// failures into the API's VALIDATION_ERROR body.
//
// # Custom Tags
//
//   - similarity: a finite float in [-1, 1], used for neighborhood thresholds
//   - finite: a float that is neither NaN nor infinite
//
// Both accept pointer fields and treat nil as valid, so optional
// overrides can be combined with omitempty.
//
// # Usage
//
//	type neighborsParams struct {
//	    UserID    int      `query:"user_id" validate:"gte=0"`
//	    Threshold *float64 `query:"threshold" validate:"omitempty,similarity"`
//	}
//
//	if err := validation.ValidateStruct(&params); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// The configuration loader uses the same validator for koanf-tagged structs,
// so a bad setting is reported as e.g. "recommend.pearson.threshold must be
// a similarity between -1 and 1".
package validation
