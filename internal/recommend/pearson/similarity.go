// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

import "math"

// DampingFloor is the co-rated movie count below which similarities are
// scaled down linearly.
const DampingFloor = 50

// Similarity computes the damped Pearson correlation between a and b.
// It is a pure function of the two profiles and never returns NaN.
func Similarity(a, b Profile) float64 {
	common := a.CommonMovies(b)
	if len(common) == 0 {
		return 0
	}

	meanA := a.MeanRating()
	meanB := b.MeanRating()

	var num, denA, denB float64
	for _, m := range common {
		da := a.RatingFor(m) - meanA
		db := b.RatingFor(m) - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}

	denom := math.Sqrt(denA * denB)
	if denom == 0 {
		return 0
	}

	return Damp(num/denom, len(common))
}

// Damp scales raw by overlap/DampingFloor when overlap is below DampingFloor.
func Damp(raw float64, overlap int) float64 {
	if overlap < DampingFloor {
		return raw * float64(overlap) / DampingFloor
	}
	return raw
}
