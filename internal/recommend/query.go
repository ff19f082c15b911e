// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend/pearson"
	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

// threshold resolves an optional override against the configured default.
func (e *Engine) threshold(override *float64) float64 {
	if override != nil {
		return *override
	}
	return e.config.Pearson.Threshold
}

// profile looks up userID in m.
func (m *model) profile(userID int) (*ratings.Profile, error) {
	p, ok := m.set.ByUser(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	return p, nil
}

// Users lists the profiles in the active model in internal-ID order.
func (e *Engine) Users(_ context.Context) ([]UserSummary, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}

	ids := m.set.UserIDs()
	out := make([]UserSummary, 0, len(ids))
	for _, uid := range ids {
		p, _ := m.set.ByUser(uid)
		out = append(out, UserSummary{
			UserID:      uid,
			InternalID:  p.InternalID(),
			MeanRating:  p.MeanRating(),
			RatingCount: p.Count(),
		})
	}
	return out, nil
}

// Similarity returns the cached similarity between two users.
func (e *Engine) Similarity(_ context.Context, userA, userB int) (float64, error) {
	m, err := e.current()
	if err != nil {
		return 0, err
	}
	a, err := m.profile(userA)
	if err != nil {
		return 0, err
	}
	b, err := m.profile(userB)
	if err != nil {
		return 0, err
	}

	metrics.RecordSimilarityQuery()
	return m.engine.Similarity(a, b)
}

// Neighbors returns every other user whose similarity to userID exceeds
// the threshold, most similar first.
func (e *Engine) Neighbors(_ context.Context, userID int, threshold *float64) ([]Neighbor, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	p, err := m.profile(userID)
	if err != nil {
		return nil, err
	}

	hood, err := m.engine.Neighborhood(p, e.threshold(threshold))
	if err != nil {
		return nil, fmt.Errorf("select neighbors: %w", err)
	}
	metrics.RecordNeighborhood(len(hood))

	out := make([]Neighbor, len(hood))
	for i, nb := range hood {
		out[i] = Neighbor{
			UserID:     nb.Profile.(*ratings.Profile).UserID(),
			Similarity: nb.Similarity,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out, nil
}

// Predict predicts userID's rating of movieID. A prediction without
// positive neighbor weight is returned with OK=false and Rating=0.
func (e *Engine) Predict(ctx context.Context, userID, movieID int, threshold *float64) (*Prediction, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	p, err := m.profile(userID)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeUnknownUser)
		return nil, err
	}

	th := e.threshold(threshold)
	pred, err := m.engine.Predict(p, pearson.MovieID(movieID), th)
	if err != nil {
		return nil, fmt.Errorf("predict rating: %w", err)
	}
	e.predictionCount.Add(1)
	recordOutcome(pred)

	logger := logging.FromContext(ctx, e.logger)
	logger.Debug().
		Int("user_id", userID).
		Int("movie_id", movieID).
		Bool("ok", pred.OK).
		Int("contributors", pred.Contributors).
		Msg("rating predicted")

	return &Prediction{
		UserID:       userID,
		MovieID:      movieID,
		Rating:       pred.Rating,
		OK:           pred.OK,
		Contributors: pred.Contributors,
		Weight:       pred.Weight,
		Threshold:    th,
		AlreadyRated: p.HasRated(pearson.MovieID(movieID)),
	}, nil
}

func recordOutcome(pred pearson.Prediction) {
	if pred.OK {
		metrics.RecordPrediction(metrics.OutcomePredicted)
	} else {
		metrics.RecordPrediction(metrics.OutcomeNoEvidence)
	}
}

// Recommend predicts ratings for movies the user has not rated and returns
// the top K with positive evidence, highest prediction first.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	m, err := e.current()
	if err != nil {
		return nil, err
	}

	req = e.prepareRequest(req)
	th := e.threshold(req.Threshold)
	logger := e.createRequestLogger(ctx, req)
	logger.Debug().Msg("processing recommendation request")

	key := cacheKey(req.UserID, req.K, th, m.version)
	if resp := e.tryGetCachedResponse(key, req, start, logger); resp != nil {
		return resp, nil
	}

	p, err := m.profile(req.UserID)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeUnknownUser)
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.config.Limits.PredictionTimeout)
	defer cancel()

	candidates, err := e.candidates(m, p, th)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	items, err := e.scoreCandidates(reqCtx, m, p, candidates, th)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	if len(items) > req.K {
		items = items[:req.K]
	}

	resp := &Response{
		Items:           items,
		TotalCandidates: len(candidates),
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			UserID:       req.UserID,
			Threshold:    th,
			LatencyMS:    time.Since(start).Milliseconds(),
			ModelVersion: m.version,
			TrainedAt:    m.trainedAt,
			Timestamp:    time.Now(),
		},
	}
	e.storeCache(key, resp)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	if req.K <= 0 {
		req.K = e.config.Limits.DefaultK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(ctx context.Context, req Request) zerolog.Logger {
	return logging.FromContext(ctx, e.logger).With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Logger()
}

// scoreChunk is the number of candidates predicted between context checks.
const scoreChunk = 256

// candidates returns the movies rated by p's neighborhood that p has not
// rated. Movies rated by more neighbors come first (ties by ascending ID)
// and the list is capped at MaxCandidates. Movies no neighbor rated can
// never be predicted, so nothing scorable is lost before the cap.
func (e *Engine) candidates(m *model, p *ratings.Profile, th float64) ([]pearson.MovieID, error) {
	hood, err := m.engine.Neighborhood(p, th)
	if err != nil {
		return nil, fmt.Errorf("neighborhood: %w", err)
	}
	metrics.RecordNeighborhood(len(hood))

	support := make(map[pearson.MovieID]int)
	for _, nb := range hood {
		for _, mid := range nb.Profile.(*ratings.Profile).RatedMovies() {
			if !p.HasRated(mid) {
				support[mid]++
			}
		}
	}

	out := make([]pearson.MovieID, 0, len(support))
	for mid := range support {
		out = append(out, mid)
	}
	sort.Slice(out, func(i, j int) bool {
		if support[out[i]] != support[out[j]] {
			return support[out[i]] > support[out[j]]
		}
		return out[i] < out[j]
	})

	if len(out) > e.config.Limits.MaxCandidates {
		out = out[:e.config.Limits.MaxCandidates]
	}
	return out, nil
}

// scoreCandidates predicts every candidate and keeps those with evidence.
// ctx is checked between chunks so PredictionTimeout bounds the whole pass.
func (e *Engine) scoreCandidates(ctx context.Context, m *model, p *ratings.Profile, candidates []pearson.MovieID, th float64) ([]ScoredMovie, error) {
	preds := make([]pearson.Prediction, 0, len(candidates))
	for lo := 0; lo < len(candidates); lo += scoreChunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hi := min(lo+scoreChunk, len(candidates))
		chunk, err := m.engine.PredictMany(p, candidates[lo:hi], th)
		if err != nil {
			return nil, err
		}
		preds = append(preds, chunk...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]ScoredMovie, 0, len(preds))
	for i, pred := range preds {
		recordOutcome(pred)
		if !pred.OK {
			continue
		}
		items = append(items, ScoredMovie{
			MovieID:      int(candidates[i]),
			Predicted:    pred.Rating,
			Contributors: pred.Contributors,
			Weight:       pred.Weight,
		})
	}
	e.predictionCount.Add(int64(len(preds)))

	sort.Slice(items, func(i, j int) bool {
		if items[i].Predicted != items[j].Predicted {
			return items[i].Predicted > items[j].Predicted
		}
		return items[i].MovieID < items[j].MovieID
	})

	return items, nil
}
