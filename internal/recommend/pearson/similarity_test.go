// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	a, b, c := exampleProfiles()

	tests := []struct {
		name string
		x, y Profile
		want float64
	}{
		{
			name: "correlated pair is damped by overlap",
			x:    a,
			y:    b,
			want: 1.0 * 2 / DampingFloor,
		},
		{
			name: "flat profile has zero variance",
			x:    a,
			y:    c,
			want: 0,
		},
		{
			name: "no common movies",
			x:    newTestProfile(0, map[MovieID]float64{1: 5, 2: 1}),
			y:    newTestProfile(1, map[MovieID]float64{3: 5, 4: 1}),
			want: 0,
		},
		{
			name: "anti-correlated pair is negative",
			x:    newTestProfile(0, map[MovieID]float64{1: 5, 2: 1}),
			y:    newTestProfile(1, map[MovieID]float64{1: 1, 2: 5}),
			want: -1.0 * 2 / DampingFloor,
		},
		{
			name: "empty profiles",
			x:    newTestProfile(0, nil),
			y:    newTestProfile(1, nil),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.x, tt.y)
			if !approxEqual(got, tt.want) {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarity_UsesMeanOverAllRatings(t *testing.T) {
	// The common movies alone would be perfectly correlated, but the
	// extra rating on movie 3 moves x's mean to 3, making both x
	// deviations non-negative.
	x := newTestProfile(0, map[MovieID]float64{1: 5, 2: 3, 3: 1})
	y := newTestProfile(1, map[MovieID]float64{1: 4, 2: 2})

	// x mean = 3: deviations 2, 0. y mean = 3: deviations 1, -1.
	// num = 2, denA = 4, denB = 2, raw = 2/sqrt(8).
	want := Damp(2/math.Sqrt(8), 2)
	if got := Similarity(x, y); !approxEqual(got, want) {
		t.Errorf("Similarity() = %v, want %v", got, want)
	}
}

func TestSimilarity_Properties(t *testing.T) {
	profiles := randomProfiles(7, 40, 30, 12)

	for i, a := range profiles {
		self := Similarity(a, a)
		if self < -1e-12 || self > 1+1e-12 {
			t.Errorf("Similarity(p%d, p%d) = %v, want within [0, 1]", i, i, self)
		}
		for j, b := range profiles {
			ab := Similarity(a, b)
			ba := Similarity(b, a)
			if math.Abs(ab-ba) > 1e-12 {
				t.Errorf("Similarity(p%d, p%d) = %v but reversed = %v", i, j, ab, ba)
			}
			if math.IsNaN(ab) {
				t.Fatalf("Similarity(p%d, p%d) is NaN", i, j)
			}
			if ab < -1-1e-12 || ab > 1+1e-12 {
				t.Errorf("Similarity(p%d, p%d) = %v, want within [-1, 1]", i, j, ab)
			}
		}
	}
}

func TestDamp(t *testing.T) {
	tests := []struct {
		name    string
		raw     float64
		overlap int
		want    float64
	}{
		{name: "zero overlap", raw: 0.8, overlap: 0, want: 0},
		{name: "below floor scales linearly", raw: 0.8, overlap: 25, want: 0.4},
		{name: "at floor unchanged", raw: 0.8, overlap: DampingFloor, want: 0.8},
		{name: "above floor unchanged", raw: -0.6, overlap: 120, want: -0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Damp(tt.raw, tt.overlap); !approxEqual(got, tt.want) {
				t.Errorf("Damp(%v, %d) = %v, want %v", tt.raw, tt.overlap, got, tt.want)
			}
		})
	}
}

func TestDamp_MonotoneInOverlap(t *testing.T) {
	raw := 0.9
	prev := Damp(raw, 0)
	for k := 1; k <= DampingFloor+10; k++ {
		got := Damp(raw, k)
		if got < prev {
			t.Fatalf("Damp(%v, %d) = %v < Damp(%v, %d) = %v", raw, k, got, raw, k-1, prev)
		}
		if k >= DampingFloor && got != raw {
			t.Errorf("Damp(%v, %d) = %v, want undamped %v", raw, k, got, raw)
		}
		prev = got
	}
}
