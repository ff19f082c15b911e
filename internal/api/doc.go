// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api exposes the similarity model over HTTP using chi.

All endpoints live under /api/v1 and answer with the APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","request_id":"...","query_time_ms":0}}

Endpoints:

	GET  /api/v1/health                                  liveness and model/database state
	GET  /api/v1/health/ready                            503 until a model is active
	GET  /api/v1/status                                  training status, counters and config
	GET  /api/v1/profiles                                users in the active model
	GET  /api/v1/similarity?a=&b=                        cached similarity of two users
	GET  /api/v1/users/{userID}/neighbors?threshold=     neighbors above threshold
	GET  /api/v1/users/{userID}/predict/{movieID}        predicted rating, ok=false without evidence
	GET  /api/v1/users/{userID}/recommendations?k=&threshold=&titles=
	POST /api/v1/train?wait=                             retrain now
	GET  /metrics                                        Prometheus

Error mapping: unknown user 404, no model yet 503, training already
running 409, invalid query 400.
*/
package api
