// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"io"
	"math"
	"runtime"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend/pearson"
	"github.com/tomtom215/cinematch/internal/recommend/ratings"
)

// mockDataProvider serves a fixed rating slice.
type mockDataProvider struct {
	ratings []ratings.Rating
	err     error
	block   chan struct{} // when non-nil, GetRatings waits on it
	calls   int
	mu      sync.Mutex
}

func (m *mockDataProvider) GetRatings(ctx context.Context) ([]ratings.Rating, error) {
	m.mu.Lock()
	m.calls++
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.ratings, m.err
}

// memStore is an in-memory ModelStore.
type memStore struct {
	mu      sync.Mutex
	models  map[uint64][]float64
	loads   int
	saves   int
	loadErr error
}

func newMemStore() *memStore {
	return &memStore{models: make(map[uint64][]float64)}
}

func (s *memStore) LoadModel(_ context.Context, fp uint64) ([]float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	cells, ok := s.models[fp]
	return cells, ok, nil
}

func (s *memStore) SaveModel(_ context.Context, fp uint64, _ int, cells []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.models[fp] = cells
	return nil
}

func fixtureRatings() []ratings.Rating {
	return []ratings.Rating{
		{UserID: 1, MovieID: 1, Value: 5}, {UserID: 1, MovieID: 2, Value: 3}, {UserID: 1, MovieID: 3, Value: 4},
		{UserID: 2, MovieID: 1, Value: 4}, {UserID: 2, MovieID: 2, Value: 2}, {UserID: 2, MovieID: 3, Value: 3},
		{UserID: 2, MovieID: 4, Value: 5}, {UserID: 2, MovieID: 5, Value: 1},
		{UserID: 3, MovieID: 1, Value: 1}, {UserID: 3, MovieID: 2, Value: 5}, {UserID: 3, MovieID: 4, Value: 2},
		{UserID: 4, MovieID: 1, Value: 5}, {UserID: 4, MovieID: 2, Value: 1}, {UserID: 4, MovieID: 5, Value: 2},
	}
}

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func newTrainedEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t, nil)
	e.SetDataProvider(&mockDataProvider{ratings: fixtureRatings()})
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return e
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if e.GetConfig().Limits.DefaultK != DefaultConfig().Limits.DefaultK {
			t.Error("expected default config")
		}
		if e.IsTrained() {
			t.Error("IsTrained() = true before training")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Limits.MaxK = 0
		if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})
}

func TestEngine_QueriesBeforeTraining(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := e.Similarity(ctx, 1, 2); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Similarity() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Neighbors(ctx, 1, nil); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Neighbors() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Predict(ctx, 1, 1, nil); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Predict() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Recommend(ctx, Request{UserID: 1}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Recommend() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Users(ctx); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Users() error = %v, want ErrNotTrained", err)
	}
}

func TestEngine_Train(t *testing.T) {
	tests := []struct {
		name     string
		provider DataProvider
		modify   func(*Config)
		wantErr  error
	}{
		{
			name:    "no data provider",
			wantErr: ErrNoDataProvider,
		},
		{
			name:     "too few ratings",
			provider: &mockDataProvider{ratings: fixtureRatings()[:2]},
			modify:   func(c *Config) { c.Training.MinRatings = 5 },
			wantErr:  ErrInsufficientData,
		},
		{
			name:     "too few users",
			provider: &mockDataProvider{ratings: fixtureRatings()},
			modify:   func(c *Config) { c.Training.MinUsers = 10 },
			wantErr:  ErrInsufficientData,
		},
		{
			name:     "rating outside scale",
			provider: &mockDataProvider{ratings: []ratings.Rating{{UserID: 1, MovieID: 1, Value: 9}, {UserID: 2, MovieID: 1, Value: 3}}},
			wantErr:  ratings.ErrRatingOutOfRange,
		},
		{
			name:     "provider failure",
			provider: &mockDataProvider{err: errors.New("database unavailable")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.modify != nil {
				tt.modify(cfg)
			}
			e := newTestEngine(t, cfg)
			if tt.provider != nil {
				e.SetDataProvider(tt.provider)
			}

			err := e.Train(context.Background())
			if err == nil {
				t.Fatal("Train() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Train() error = %v, want %v", err, tt.wantErr)
			}
			if e.IsTrained() {
				t.Error("IsTrained() = true after failed training")
			}
			if tt.provider != nil && e.GetStatus().LastError == "" {
				t.Error("GetStatus().LastError empty after failure")
			}
		})
	}
}

func TestEngine_TrainSuccess(t *testing.T) {
	e := newTrainedEngine(t)

	status := e.GetStatus()
	if status.IsTraining {
		t.Error("IsTraining = true after Train returned")
	}
	if status.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", status.ModelVersion)
	}
	if status.UserCount != 4 || status.MovieCount != 5 || status.RatingCount != 14 {
		t.Errorf("status counts = %d users, %d movies, %d ratings", status.UserCount, status.MovieCount, status.RatingCount)
	}
	if status.Fingerprint == "" {
		t.Error("Fingerprint empty")
	}

	users, err := e.Users(context.Background())
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(users) != 4 || users[0].UserID != 1 || users[0].MeanRating != 4 {
		t.Errorf("Users() = %+v", users)
	}
}

func TestEngine_TrainRejectsConcurrentRun(t *testing.T) {
	block := make(chan struct{})
	dp := &mockDataProvider{ratings: fixtureRatings(), block: block}
	e := newTestEngine(t, nil)
	e.SetDataProvider(dp)

	done := make(chan error, 1)
	go func() { done <- e.Train(context.Background()) }()

	// Wait until the first run is inside GetRatings.
	for {
		dp.mu.Lock()
		calls := dp.calls
		dp.mu.Unlock()
		if calls > 0 {
			break
		}
		runtime.Gosched()
	}

	if err := e.Train(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("second Train() error = %v, want ErrTrainingInProgress", err)
	}
	if !e.GetStatus().IsTraining {
		t.Error("GetStatus().IsTraining = false during training")
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first Train() error = %v", err)
	}
}

func TestEngine_SimilarityAndNeighbors(t *testing.T) {
	e := newTrainedEngine(t)
	ctx := context.Background()

	sim12, err := e.Similarity(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}
	// Users 1 and 2 deviate identically on three shared movies.
	if !approx(sim12, 3.0/50) {
		t.Errorf("Similarity(1, 2) = %v, want %v", sim12, 3.0/50)
	}
	sim21, _ := e.Similarity(ctx, 2, 1)
	if sim12 != sim21 {
		t.Errorf("Similarity not symmetric: %v vs %v", sim12, sim21)
	}

	if _, err := e.Similarity(ctx, 1, 99); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Similarity(1, 99) error = %v, want ErrUserNotFound", err)
	}

	neighbors, err := e.Neighbors(ctx, 1, nil)
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if len(neighbors) != 2 || neighbors[0].UserID != 2 || neighbors[1].UserID != 4 {
		t.Fatalf("Neighbors(1) = %+v, want users 2 then 4", neighbors)
	}

	high := sim12
	neighbors, _ = e.Neighbors(ctx, 1, &high)
	if len(neighbors) != 0 {
		t.Errorf("Neighbors(1, %v) = %+v, want none (strict threshold)", high, neighbors)
	}
}

func TestEngine_Predict(t *testing.T) {
	e := newTrainedEngine(t)
	ctx := context.Background()

	t.Run("single contributor", func(t *testing.T) {
		// Only user 2 rated movie 4, two above their mean of 3.
		pred, err := e.Predict(ctx, 1, 4, nil)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if !pred.OK || pred.Contributors != 1 {
			t.Fatalf("Predict() = %+v, want OK with one contributor", pred)
		}
		if !approx(pred.Rating, 6) {
			t.Errorf("Predict().Rating = %v, want 6", pred.Rating)
		}
		if pred.AlreadyRated {
			t.Error("AlreadyRated = true for unrated movie")
		}
	})

	t.Run("no evidence", func(t *testing.T) {
		pred, err := e.Predict(ctx, 1, 1000, nil)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if pred.OK || pred.Rating != 0 {
			t.Errorf("Predict() = %+v, want zero fallback", pred)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := e.Predict(ctx, 42, 1, nil); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Predict() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestEngine_Recommend(t *testing.T) {
	e := newTrainedEngine(t)
	ctx := context.Background()

	resp, err := e.Recommend(ctx, Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.TotalCandidates)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(resp.Items))
	}
	if resp.Items[0].MovieID != 4 || resp.Items[1].MovieID != 5 {
		t.Errorf("Items = %+v, want movie 4 then 5", resp.Items)
	}
	if resp.Items[0].Predicted < resp.Items[1].Predicted {
		t.Error("Items not sorted by predicted rating")
	}

	t.Run("k truncates", func(t *testing.T) {
		resp, err := e.Recommend(ctx, Request{UserID: 1, K: 1})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(resp.Items) != 1 || resp.Items[0].MovieID != 4 {
			t.Errorf("Items = %+v, want only movie 4", resp.Items)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := e.Recommend(ctx, Request{UserID: 77}); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Recommend() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestEngine_RecommendCache(t *testing.T) {
	e := newTrainedEngine(t)
	ctx := context.Background()

	first, err := e.Recommend(ctx, Request{UserID: 3})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first response marked as cache hit")
	}

	second, _ := e.Recommend(ctx, Request{UserID: 3})
	if !second.Metadata.CacheHit {
		t.Error("second response not served from cache")
	}
	if len(second.Items) != len(first.Items) {
		t.Errorf("cached items = %d, want %d", len(second.Items), len(first.Items))
	}

	m := e.GetMetrics()
	if m.CacheHits != 1 || m.CacheMisses != 1 {
		t.Errorf("metrics = %+v, want 1 hit and 1 miss", m)
	}

	if err := e.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if e.CacheLen() != 0 {
		t.Errorf("CacheLen() = %d after retrain, want 0", e.CacheLen())
	}
}

func TestEngine_SnapshotReuse(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, nil)
	e.SetDataProvider(&mockDataProvider{ratings: fixtureRatings()})
	e.SetModelStore(store)
	ctx := context.Background()

	if err := e.Train(ctx); err != nil {
		t.Fatalf("first Train() error = %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	if e.GetStatus().Restored {
		t.Error("first model reported as restored")
	}
	before, _ := e.Similarity(ctx, 1, 4)

	if err := e.Train(ctx); err != nil {
		t.Fatalf("second Train() error = %v", err)
	}
	if !e.GetStatus().Restored {
		t.Error("second model not restored from snapshot")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d after restore, want 1", store.saves)
	}
	after, _ := e.Similarity(ctx, 1, 4)
	if before != after {
		t.Errorf("restored similarity = %v, want %v", after, before)
	}
	if e.GetStatus().ModelVersion != 2 {
		t.Errorf("ModelVersion = %d, want 2", e.GetStatus().ModelVersion)
	}
}

func TestEngine_SnapshotLoadErrorFallsBack(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("corrupt value log")

	e := newTestEngine(t, nil)
	e.SetDataProvider(&mockDataProvider{ratings: fixtureRatings()})
	e.SetModelStore(store)

	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if e.GetStatus().Restored {
		t.Error("Restored = true despite load error")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestEngine_ConcurrentQueriesDuringTraining(t *testing.T) {
	e := newTrainedEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := e.Recommend(ctx, Request{UserID: 1 + j%4}); err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 3; j++ {
			if err := e.Train(ctx); err != nil && !errors.Is(err, ErrTrainingInProgress) {
				t.Errorf("Train() error = %v", err)
			}
		}
	}()

	wg.Wait()
}

func TestEngine_RecommendCandidatesFromNeighborhood(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxCandidates = 2
	e := newTestEngine(t, cfg)
	e.SetDataProvider(&mockDataProvider{ratings: []ratings.Rating{
		{UserID: 1, MovieID: 1, Value: 5}, {UserID: 1, MovieID: 2, Value: 3},
		// Neighbors of user 1: both co-rate 1 and 2 in the same direction.
		{UserID: 2, MovieID: 1, Value: 4}, {UserID: 2, MovieID: 2, Value: 2},
		{UserID: 2, MovieID: 10, Value: 2}, {UserID: 2, MovieID: 11, Value: 2}, {UserID: 2, MovieID: 99, Value: 5},
		{UserID: 4, MovieID: 1, Value: 5}, {UserID: 4, MovieID: 2, Value: 1}, {UserID: 4, MovieID: 99, Value: 4},
		// Anti-correlated, so never a neighbor; its movie 50 is not a candidate.
		{UserID: 3, MovieID: 1, Value: 2}, {UserID: 3, MovieID: 2, Value: 4}, {UserID: 3, MovieID: 50, Value: 5},
	}})
	ctx := context.Background()
	if err := e.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	resp, err := e.Recommend(ctx, Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.TotalCandidates)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("Items = %+v, want 2 items", resp.Items)
	}
	// 99 is rated by both neighbors, so it survives the cap despite its high ID.
	if resp.Items[0].MovieID != 99 || resp.Items[1].MovieID != 10 {
		t.Errorf("Items = %+v, want movie 99 then 10", resp.Items)
	}
	if resp.Items[0].Contributors != 2 {
		t.Errorf("movie 99 contributors = %d, want 2", resp.Items[0].Contributors)
	}

	pred, err := e.Predict(ctx, 1, 99, nil)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if !approx(resp.Items[0].Predicted, pred.Rating) {
		t.Errorf("recommended rating %v != Predict() %v", resp.Items[0].Predicted, pred.Rating)
	}
}

// expiringCtx reports cancellation once Err has been consulted allowed times.
type expiringCtx struct {
	context.Context
	allowed int
	calls   int
}

func (c *expiringCtx) Err() error {
	c.calls++
	if c.calls > c.allowed {
		return context.Canceled
	}
	return nil
}

func TestEngine_ScoreCandidatesObservesCancellation(t *testing.T) {
	e := newTrainedEngine(t)
	m, err := e.current()
	if err != nil {
		t.Fatalf("current() error = %v", err)
	}
	p, err := m.profile(1)
	if err != nil {
		t.Fatalf("profile() error = %v", err)
	}

	cands := make([]pearson.MovieID, 3*scoreChunk)
	for i := range cands {
		cands[i] = pearson.MovieID(1000 + i)
	}

	ctx := &expiringCtx{Context: context.Background(), allowed: 2}
	if _, err := e.scoreCandidates(ctx, m, p, cands, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("scoreCandidates() error = %v, want context.Canceled", err)
	}
	if ctx.calls != 3 {
		t.Errorf("ctx checked %d times, want 3 (once per chunk)", ctx.calls)
	}

	items, err := e.scoreCandidates(context.Background(), m, p, cands, 0)
	if err != nil {
		t.Fatalf("scoreCandidates() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0 for movies nobody rated", len(items))
	}
}
