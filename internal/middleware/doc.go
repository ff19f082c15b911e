// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package middleware provides chi-compatible HTTP middleware for the
prediction API.

  - RequestID: propagates or generates X-Request-ID into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge by route
  - AccessLog: one zerolog line per request with level by status and latency

Order matters: RequestID must run first so the others see the ID.

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger, time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
