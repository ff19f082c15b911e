// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// cacheKey includes the model version so entries from an older model are
// never served even when InvalidateOnTrain is off.
func cacheKey(userID, k int, threshold float64, version int) string {
	return "rec:" + strconv.Itoa(userID) +
		":" + strconv.Itoa(k) +
		":" + strconv.FormatFloat(threshold, 'g', -1, 64) +
		":v" + strconv.Itoa(version)
}

// tryGetCachedResponse returns a copy of a cached response, or nil.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(key string, req Request, start time.Time, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cache.Get(key)
	if !ok {
		e.cacheMisses.Add(1)
		metrics.RecordCacheMiss()
		return nil
	}

	e.cacheHits.Add(1)
	metrics.RecordCacheHit()

	resp := copyResponse(cached)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	logger.Debug().Msg("cache hit")
	return resp
}

func (e *Engine) storeCache(key string, resp *Response) {
	if e.cache == nil {
		return
	}
	e.cache.Add(key, copyResponse(resp))
}

// copyResponse creates a copy safe to hand to callers.
func copyResponse(resp *Response) *Response {
	items := make([]ScoredMovie, len(resp.Items))
	copy(items, resp.Items)

	return &Response{
		Items:           items,
		TotalCandidates: resp.TotalCandidates,
		Metadata:        resp.Metadata,
	}
}

// CacheLen returns the number of cached responses.
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}
