// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

import (
	"math"
	"math/rand"
	"sort"
)

// testProfile is a minimal map-backed Profile.
type testProfile struct {
	id      int
	ratings map[MovieID]float64
	mean    float64
}

func newTestProfile(id int, ratings map[MovieID]float64) *testProfile {
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	mean := 0.0
	if len(ratings) > 0 {
		mean = sum / float64(len(ratings))
	}
	return &testProfile{id: id, ratings: ratings, mean: mean}
}

func (p *testProfile) InternalID() int { return p.id }

func (p *testProfile) MeanRating() float64 { return p.mean }

func (p *testProfile) RatingFor(m MovieID) float64 { return p.ratings[m] }

func (p *testProfile) HasRated(m MovieID) bool {
	_, ok := p.ratings[m]
	return ok
}

func (p *testProfile) CommonMovies(o Profile) []MovieID {
	var out []MovieID
	for m := range p.ratings {
		if o.HasRated(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// randomProfiles builds n profiles over a small movie pool so overlaps are common.
func randomProfiles(seed int64, n, movies, perUser int) []Profile {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	out := make([]Profile, n)
	for i := 0; i < n; i++ {
		ratings := make(map[MovieID]float64, perUser)
		for len(ratings) < perUser {
			ratings[MovieID(rng.Intn(movies))] = float64(1 + rng.Intn(5))
		}
		out[i] = newTestProfile(i, ratings)
	}
	return out
}

// exampleProfiles is the three-user fixture: A and B share correlated
// deviations on m1/m2, C is flat.
func exampleProfiles() (a, b, c *testProfile) {
	a = newTestProfile(0, map[MovieID]float64{1: 5, 2: 3})
	b = newTestProfile(1, map[MovieID]float64{1: 4, 2: 2})
	c = newTestProfile(2, map[MovieID]float64{1: 1, 2: 1})
	return a, b, c
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
