// Package memory is an in-process storage.Store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"spesa/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	values map[string][]byte
	closed bool
	// writes counts successful Save/SaveBatch calls.
	writes int
}

func New() *Store {
	return &Store{values: map[string][]byte{}}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, storage.ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.values[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

func (s *Store) SaveBatch(_ context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	for k, v := range values {
		s.values[k] = append([]byte(nil), v...)
	}
	s.writes++
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Version reports the write count, so it grows with every successful write.
func (s *Store) Version(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, storage.ErrClosed
	}
	return int64(s.writes), nil
}

// Writes returns how many write calls have succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
