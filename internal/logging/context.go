// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	trainingIDKey contextKey = "training_id"
)

// GenerateRequestID returns a new UUID for an API request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateTrainingID returns a short ID for a training run.
func GenerateTrainingID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID attaches a request ID to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithTrainingID attaches a training run ID to ctx.
func ContextWithTrainingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, trainingIDKey, id)
}

// TrainingIDFromContext returns the training run ID in ctx, or "".
func TrainingIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(trainingIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with any IDs carried by ctx.
//
//	logging.Ctx(ctx).Info().Int("user_id", id).Msg("prediction served")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := FromContext(ctx, Logger())
	return &l
}

// FromContext enriches base with any IDs carried by ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func FromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	logCtx := base.With()
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := TrainingIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("training_id", id)
	}
	return logCtx.Logger()
}
