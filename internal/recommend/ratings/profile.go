// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package ratings

import (
	"sort"

	"github.com/tomtom215/cinematch/internal/recommend/pearson"
)

// Profile is one user's immutable rating history.
type Profile struct {
	id      int
	userID  int
	ratings map[pearson.MovieID]float64
	movies  []pearson.MovieID // sorted
	mean    float64
}

var _ pearson.Profile = (*Profile)(nil)

func newProfile(id, userID int, ratings map[pearson.MovieID]float64) *Profile {
	movies := make([]pearson.MovieID, 0, len(ratings))
	var sum float64
	for m, r := range ratings {
		movies = append(movies, m)
		sum += r
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i] < movies[j] })

	var mean float64
	if len(ratings) > 0 {
		mean = sum / float64(len(ratings))
	}

	return &Profile{
		id:      id,
		userID:  userID,
		ratings: ratings,
		movies:  movies,
		mean:    mean,
	}
}

// InternalID returns the dense index assigned by Build.
func (p *Profile) InternalID() int { return p.id }

// UserID returns the external user identifier.
func (p *Profile) UserID() int { return p.userID }

// MeanRating returns the mean over all of the user's ratings.
func (p *Profile) MeanRating() float64 { return p.mean }

// RatingFor returns the user's rating of m, or 0 if unrated.
func (p *Profile) RatingFor(m pearson.MovieID) float64 { return p.ratings[m] }

// HasRated reports whether the user rated m.
func (p *Profile) HasRated(m pearson.MovieID) bool {
	_, ok := p.ratings[m]
	return ok
}

// Count returns the number of movies the user rated.
func (p *Profile) Count() int { return len(p.movies) }

// RatedMovies returns the rated movie IDs in ascending order.
func (p *Profile) RatedMovies() []pearson.MovieID {
	out := make([]pearson.MovieID, len(p.movies))
	copy(out, p.movies)
	return out
}

// CommonMovies returns the movies rated by both p and other in ascending
// order. The shorter history is scanned.
func (p *Profile) CommonMovies(other pearson.Profile) []pearson.MovieID {
	scan, probe := p.movies, other
	if o, ok := other.(*Profile); ok && len(o.movies) < len(p.movies) {
		scan, probe = o.movies, p
	}

	var out []pearson.MovieID
	for _, m := range scan {
		if probe.HasRated(m) {
			out = append(out, m)
		}
	}
	return out
}
