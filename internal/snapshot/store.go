// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	metaKeyPrefix  = "meta:"
	modelKeyPrefix = "model:"
)

// chunkCells is the number of float64 cells per stored value (512 KiB),
// kept under badger's default value threshold so chunks stay inline.
const chunkCells = 1 << 16

// DefaultRetain is the number of most recent models SaveModel keeps.
const DefaultRetain = 2

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("snapshot store closed")

	// ErrCorrupt is returned when stored cells do not match their metadata.
	ErrCorrupt = errors.New("snapshot corrupt")

	// ErrSizeMismatch is returned by SaveModel when len(cells) != profiles².
	ErrSizeMismatch = errors.New("cell count does not match profile count")
)

// Meta describes one stored similarity matrix.
type Meta struct {
	Fingerprint uint64    `json:"fingerprint"`
	Profiles    int       `json:"profiles"`
	Cells       int       `json:"cells"`
	Chunks      int       `json:"chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists precomputed similarity matrices in BadgerDB, keyed by
// the fingerprint of the rating set they were computed from. It
// implements recommend.ModelStore.
//
// Cells are written as little-endian float64 chunks before their meta
// record, so a model is visible only once it is complete.
type Store struct {
	db     *badger.DB
	retain int

	mu     sync.RWMutex
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithRetain sets how many models SaveModel keeps. Values below 1 keep all.
func WithRetain(n int) Option {
	return func(s *Store) { s.retain = n }
}

// Open opens (or creates) a store at path. With inMemory set, path is
// ignored and nothing touches disk.
func Open(path string, inMemory bool, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(path)
	if inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Reduce logging verbosity
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{db: db, retain: DefaultRetain}
	for _, opt := range opts {
		opt(s)
	}

	logging.Info().
		Str("path", path).
		Bool("in_memory", inMemory).
		Int("retain", s.retain).
		Msg("Snapshot store opened")
	return s, nil
}

// LoadModel returns the cells stored for fingerprint, or ok=false when
// no complete model exists.
func (s *Store) LoadModel(ctx context.Context, fingerprint uint64) (cells []float64, ok bool, err error) {
	defer func() { metrics.RecordSnapshot("load", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	err = s.db.View(func(txn *badger.Txn) error {
		meta, found, err := getMeta(txn, fingerprint)
		if err != nil || !found {
			return err
		}

		cells = make([]float64, 0, meta.Cells)
		for i := 0; i < meta.Chunks; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(chunkKey(fingerprint, i))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s chunk %d missing", ErrCorrupt, hexFP(fingerprint), i)
			}
			if err != nil {
				return fmt.Errorf("get chunk %d: %w", i, err)
			}
			if err := item.Value(func(val []byte) error {
				var derr error
				cells, derr = decodeCells(cells, val)
				return derr
			}); err != nil {
				return err
			}
		}

		if len(cells) != meta.Cells || meta.Cells != meta.Profiles*meta.Profiles {
			return fmt.Errorf("%w: %s has %d cells, meta says %d for %d profiles",
				ErrCorrupt, hexFP(fingerprint), len(cells), meta.Cells, meta.Profiles)
		}
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return cells, true, nil
}

// SaveModel stores cells under fingerprint, then drops the oldest models
// beyond the retain limit.
func (s *Store) SaveModel(ctx context.Context, fingerprint uint64, profiles int, cells []float64) (err error) {
	defer func() { metrics.RecordSnapshot("save", err) }()

	if profiles < 0 || len(cells) != profiles*profiles {
		return fmt.Errorf("%w: %d cells for %d profiles", ErrSizeMismatch, len(cells), profiles)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	chunks := (len(cells) + chunkCells - 1) / chunkCells

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lo := i * chunkCells
		hi := min(lo+chunkCells, len(cells))
		if err := wb.Set(chunkKey(fingerprint, i), encodeCells(cells[lo:hi])); err != nil {
			return fmt.Errorf("set chunk %d: %w", i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush chunks: %w", err)
	}

	meta := Meta{
		Fingerprint: fingerprint,
		Profiles:    profiles,
		Cells:       len(cells),
		Chunks:      chunks,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(fingerprint), data)
	}); err != nil {
		return fmt.Errorf("set meta: %w", err)
	}

	logging.Debug().
		Str("fingerprint", hexFP(fingerprint)).
		Int("profiles", profiles).
		Int("chunks", chunks).
		Msg("Similarity matrix saved")

	return s.enforceRetain(ctx)
}

// List returns the metadata of every complete model, newest first.
func (s *Store) List(_ context.Context) ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.list()
}

func (s *Store) list() ([]Meta, error) {
	var out []Meta
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(metaKeyPrefix), PrefetchValues: true})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var m Meta
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return fmt.Errorf("decode meta %s: %w", it.Item().Key(), err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Prune deletes every model except keep. Returns the number removed.
func (s *Store) Prune(ctx context.Context, keep uint64) (removed int, err error) {
	defer func() { metrics.RecordSnapshot("prune", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	metas, err := s.list()
	if err != nil {
		return 0, err
	}
	for _, m := range metas {
		if m.Fingerprint == keep {
			continue
		}
		if err := s.delete(ctx, m); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// enforceRetain deletes the oldest models beyond s.retain.
func (s *Store) enforceRetain(ctx context.Context) error {
	if s.retain < 1 {
		return nil
	}
	metas, err := s.list()
	if err != nil {
		return err
	}
	for i := s.retain; i < len(metas); i++ {
		if err := s.delete(ctx, metas[i]); err != nil {
			return err
		}
	}
	return nil
}

// delete removes meta first so a partially deleted model is never loaded.
func (s *Store) delete(ctx context.Context, m Meta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(metaKey(m.Fingerprint))
	}); err != nil {
		return fmt.Errorf("delete meta %s: %w", hexFP(m.Fingerprint), err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i := 0; i < m.Chunks; i++ {
		if err := wb.Delete(chunkKey(m.Fingerprint, i)); err != nil {
			return fmt.Errorf("delete chunk %d: %w", i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush deletes: %w", err)
	}

	logging.Debug().Str("fingerprint", hexFP(m.Fingerprint)).Msg("Similarity matrix pruned")
	return nil
}

// RunGC reclaims value log space after pruning. A no-op for in-memory stores.
func (s *Store) RunGC() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	for {
		err := s.db.RunValueLogGC(0.5)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("value log GC: %w", err)
		}
	}
}

// Close closes the underlying database. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func getMeta(txn *badger.Txn, fingerprint uint64) (Meta, bool, error) {
	var m Meta
	item, err := txn.Get(metaKey(fingerprint))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return m, false, nil
	}
	if err != nil {
		return m, false, fmt.Errorf("get meta: %w", err)
	}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &m)
	}); err != nil {
		return m, false, fmt.Errorf("%w: meta %s: %w", ErrCorrupt, hexFP(fingerprint), err)
	}
	return m, true, nil
}

func hexFP(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

func metaKey(fp uint64) []byte {
	return []byte(metaKeyPrefix + hexFP(fp))
}

func chunkKey(fp uint64, chunk int) []byte {
	var b strings.Builder
	b.WriteString(modelKeyPrefix)
	b.WriteString(hexFP(fp))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(chunk))
	return []byte(b.String())
}

func encodeCells(cells []float64) []byte {
	buf := make([]byte, 8*len(cells))
	for i, v := range cells {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

// decodeCells appends the cells in val to dst. val is only valid inside
// the badger callback, so it is copied out here.
func decodeCells(dst []float64, val []byte) ([]float64, error) {
	if len(val)%8 != 0 {
		return dst, fmt.Errorf("%w: chunk length %d not a multiple of 8", ErrCorrupt, len(val))
	}
	for i := 0; i < len(val); i += 8 {
		dst = append(dst, math.Float64frombits(binary.LittleEndian.Uint64(val[i:])))
	}
	return dst, nil
}
