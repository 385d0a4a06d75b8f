package core

import (
	"sync"
	"time"
)

// IDSource hands out unique, strictly increasing identifiers derived from the
// wall clock in milliseconds. When two calls land in the same millisecond the
// second ID is bumped past the first.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource creates an IDSource using now as its clock (time.Now when nil).
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Observe records an existing ID so later IDs sort after it.
func (s *IDSource) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}

// Next returns a fresh ID.
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
