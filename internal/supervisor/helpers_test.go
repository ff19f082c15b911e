// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// stubService runs until canceled, optionally failing its first few starts.
type stubService struct {
	name     string
	starts   atomic.Int32
	maxFails int32
}

func newStubService(name string) *stubService {
	return &stubService{name: name}
}

func (s *stubService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= atomic.LoadInt32(&s.maxFails) {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) SetFailCount(n int) {
	atomic.StoreInt32(&s.maxFails, int32(n))
}

func (s *stubService) StartCount() int32 {
	return s.starts.Load()
}

func (s *stubService) String() string {
	return s.name
}
