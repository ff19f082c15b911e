// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package ratings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/tomtom215/cinematch/internal/recommend/pearson"
)

// Rating scale used when none is configured.
const (
	DefaultMinRating = 1.0
	DefaultMaxRating = 5.0
)

// ErrRatingOutOfRange is returned by Build for a value outside the bounds.
var ErrRatingOutOfRange = errors.New("rating out of range")

// ErrInvalidBounds is returned by Build when Min >= Max.
var ErrInvalidBounds = errors.New("invalid rating bounds")

// Rating is a single explicit rating.
type Rating struct {
	UserID  int     `json:"user_id"`
	MovieID int     `json:"movie_id"`
	Value   float64 `json:"rating"`
}

// Movie is catalog metadata. The engine never reads it.
type Movie struct {
	ID     int      `json:"movie_id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres,omitempty"`
}

// Bounds is the inclusive range of valid rating values.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultBounds returns the 1..5 star scale.
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinRating, Max: DefaultMaxRating}
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Set is an immutable collection of profiles built from one rating batch.
type Set struct {
	profiles    []*Profile
	byUser      map[int]*Profile
	movies      []int
	ratings     int
	fingerprint uint64
}

// Build groups ratings by user and assigns internal IDs in ascending
// user-ID order. A repeated (user, movie) pair keeps the last value.
func Build(ratings []Rating, bounds Bounds) (*Set, error) {
	if !(bounds.Min < bounds.Max) {
		return nil, fmt.Errorf("%w: min %v, max %v", ErrInvalidBounds, bounds.Min, bounds.Max)
	}

	grouped := make(map[int]map[pearson.MovieID]float64)
	for i, r := range ratings {
		if math.IsNaN(r.Value) || !bounds.Contains(r.Value) {
			return nil, fmt.Errorf("%w: rating %d (user %d, movie %d) = %v, want [%v, %v]",
				ErrRatingOutOfRange, i, r.UserID, r.MovieID, r.Value, bounds.Min, bounds.Max)
		}
		m, ok := grouped[r.UserID]
		if !ok {
			m = make(map[pearson.MovieID]float64)
			grouped[r.UserID] = m
		}
		m[pearson.MovieID(r.MovieID)] = r.Value
	}

	userIDs := make([]int, 0, len(grouped))
	for uid := range grouped {
		userIDs = append(userIDs, uid)
	}
	sort.Ints(userIDs)

	s := &Set{
		profiles: make([]*Profile, len(userIDs)),
		byUser:   make(map[int]*Profile, len(userIDs)),
	}

	movieSet := make(map[int]struct{})
	for id, uid := range userIDs {
		p := newProfile(id, uid, grouped[uid])
		s.profiles[id] = p
		s.byUser[uid] = p
		s.ratings += p.Count()
		for _, m := range p.movies {
			movieSet[int(m)] = struct{}{}
		}
	}

	s.movies = make([]int, 0, len(movieSet))
	for m := range movieSet {
		s.movies = append(s.movies, m)
	}
	sort.Ints(s.movies)

	s.fingerprint = s.computeFingerprint()
	return s, nil
}

// computeFingerprint hashes every (user, movie, value) in canonical order.
func (s *Set) computeFingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	for _, p := range s.profiles {
		write(uint64(int64(p.userID)))
		write(uint64(len(p.movies)))
		for _, m := range p.movies {
			write(uint64(int64(m)))
			write(math.Float64bits(p.ratings[m]))
		}
	}
	return h.Sum64()
}

// Len returns the number of profiles.
func (s *Set) Len() int { return len(s.profiles) }

// RatingCount returns the number of distinct (user, movie) ratings.
func (s *Set) RatingCount() int { return s.ratings }

// Fingerprint identifies the rating content; equal sets hash equally.
func (s *Set) Fingerprint() uint64 { return s.fingerprint }

// Profiles returns the profiles as engine input, ordered by internal ID.
func (s *Set) Profiles() []pearson.Profile {
	out := make([]pearson.Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p
	}
	return out
}

// ByUser looks up a profile by external user ID.
func (s *Set) ByUser(userID int) (*Profile, bool) {
	p, ok := s.byUser[userID]
	return p, ok
}

// UserIDs returns the external user IDs in internal-ID order.
func (s *Set) UserIDs() []int {
	out := make([]int, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.userID
	}
	return out
}

// Movies returns every rated movie ID in ascending order.
func (s *Set) Movies() []int {
	out := make([]int, len(s.movies))
	copy(out, s.movies)
	return out
}
