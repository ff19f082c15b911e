// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// asymmetryTolerance bounds |sim(a,b) - sim(b,a)| before a pair is counted
// as asymmetric. Floating-point summation order alone stays well below it.
const asymmetryTolerance = 1e-12

// Engine holds a profile universe and its precomputed similarity matrix.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	profiles []Profile
	cells    []float64
	n        int
	stats    Stats
	logger   zerolog.Logger
}

// Stats describes how an Engine's matrix was produced.
type Stats struct {
	Profiles           int           `json:"profiles"`
	Cells              int           `json:"cells"`
	Workers            int           `json:"workers"`
	AsymmetricPairs    int64         `json:"asymmetric_pairs"`
	PrecomputeDuration time.Duration `json:"precompute_duration"`
	Restored           bool          `json:"restored"`
}

type options struct {
	workers int
	logger  zerolog.Logger
}

// Option configures engine construction.
type Option func(*options)

// WithWorkers sets the number of precompute workers. Values below 1 select
// runtime.NumCPU(); 1 runs the sequential reference computation.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger used for construction diagnostics.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	return o
}

// New validates profiles and precomputes the full similarity matrix.
func New(profiles []Profile, opts ...Option) (*Engine, error) {
	return NewWithContext(context.Background(), profiles, opts...)
}

// NewWithContext is New with cancellation. A cancelled context aborts the
// precompute and returns ctx.Err().
func NewWithContext(ctx context.Context, profiles []Profile, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)

	universe, err := indexProfiles(profiles)
	if err != nil {
		return nil, err
	}

	n := len(universe)
	e := &Engine{
		profiles: universe,
		cells:    make([]float64, n*n),
		n:        n,
		logger:   o.logger.With().Str("component", "pearson").Logger(),
	}

	workers := o.workers
	if workers > n && n > 0 {
		workers = n
	}

	start := time.Now()
	asym, err := e.precompute(ctx, workers)
	if err != nil {
		return nil, err
	}

	e.stats = Stats{
		Profiles:           n,
		Cells:              n * n,
		Workers:            workers,
		AsymmetricPairs:    asym,
		PrecomputeDuration: time.Since(start),
	}

	if asym > 0 {
		e.logger.Warn().
			Int64("asymmetric_pairs", asym).
			Msg("similarity differed by argument order; kept reverse-order value")
	}

	e.logger.Debug().
		Int("profiles", n).
		Int("workers", workers).
		Dur("duration", e.stats.PrecomputeDuration).
		Msg("similarity matrix precomputed")

	return e, nil
}

// Restore rebuilds an Engine from a previously exported matrix without
// recomputing similarities. Profiles are validated exactly as in New.
func Restore(profiles []Profile, cells []float64, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)

	universe, err := indexProfiles(profiles)
	if err != nil {
		return nil, err
	}

	n := len(universe)
	if len(cells) != n*n {
		return nil, fmt.Errorf("%w: got %d cells for %d profiles", ErrMatrixSize, len(cells), n)
	}

	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if cells[a*n+b] != cells[b*n+a] {
				return nil, fmt.Errorf("%w: cell (%d,%d)", ErrAsymmetricMatrix, a, b)
			}
		}
	}

	owned := make([]float64, len(cells))
	copy(owned, cells)

	return &Engine{
		profiles: universe,
		cells:    owned,
		n:        n,
		logger:   o.logger.With().Str("component", "pearson").Logger(),
		stats: Stats{
			Profiles: n,
			Cells:    n * n,
			Restored: true,
		},
	}, nil
}

// indexProfiles returns the profiles ordered by InternalID, rejecting nil
// entries, out-of-range IDs and duplicates.
func indexProfiles(profiles []Profile) ([]Profile, error) {
	n := len(profiles)
	universe := make([]Profile, n)

	for i, p := range profiles {
		if p == nil {
			return nil, fmt.Errorf("%w: position %d", ErrNilProfile, i)
		}
		id := p.InternalID()
		if id < 0 || id >= n {
			return nil, fmt.Errorf("%w: id %d at position %d, want [0, %d)", ErrInvalidProfileID, id, i, n)
		}
		if universe[id] != nil {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateProfileID, id)
		}
		universe[id] = p
	}

	return universe, nil
}

// precompute fills the matrix. Rows are handed out over a channel so that
// the shrinking upper-triangle rows balance across workers.
func (e *Engine) precompute(ctx context.Context, workers int) (int64, error) {
	if e.n == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("precompute similarities: %w", err)
	}

	rows := make(chan int)
	var asym atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range rows {
				asym.Add(e.fillRow(a))
			}
		}()
	}

	var err error
feed:
	for a := 0; a < e.n; a++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case rows <- a:
		}
	}
	close(rows)
	wg.Wait()

	if err != nil {
		return 0, fmt.Errorf("precompute similarities: %w", err)
	}
	return asym.Load(), nil
}

// fillRow computes every pair (a, b) with b >= a. Both directions are
// evaluated; the reverse direction is stored in both cells.
func (e *Engine) fillRow(a int) int64 {
	var asym int64
	pa := e.profiles[a]

	e.set(a, a, Similarity(pa, pa))

	for b := a + 1; b < e.n; b++ {
		pb := e.profiles[b]
		forward := Similarity(pa, pb)
		reverse := Similarity(pb, pa)
		if math.Abs(forward-reverse) > asymmetryTolerance {
			asym++
		}
		e.set(a, b, reverse)
	}

	return asym
}

func (e *Engine) set(a, b int, v float64) {
	e.cells[a*e.n+b] = v
	e.cells[b*e.n+a] = v
}

func (e *Engine) get(a, b int) float64 {
	return e.cells[a*e.n+b]
}

// index returns p's internal ID if p belongs to this engine's universe.
func (e *Engine) index(p Profile) (int, error) {
	if p == nil {
		return 0, ErrUnknownProfile
	}
	id := p.InternalID()
	if id < 0 || id >= e.n || e.profiles[id] != p {
		return 0, fmt.Errorf("%w: internal id %d", ErrUnknownProfile, id)
	}
	return id, nil
}

// Len returns the number of profiles in the universe.
func (e *Engine) Len() int {
	return e.n
}

// Profiles returns a copy of the universe ordered by InternalID.
func (e *Engine) Profiles() []Profile {
	out := make([]Profile, e.n)
	copy(out, e.profiles)
	return out
}

// Cells returns a copy of the row-major similarity matrix.
func (e *Engine) Cells() []float64 {
	out := make([]float64, len(e.cells))
	copy(out, e.cells)
	return out
}

// Stats returns construction statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}
