// Package cache memoizes derived report values keyed by period.
package cache

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Size() int
}

// Memo fronts a Cache with a singleflight group so concurrent misses on the
// same key compute the value once.
type Memo[T any] struct {
	cache Cache[T]
	group singleflight.Group
}

func NewMemo[T any](c Cache[T]) *Memo[T] {
	return &Memo[T]{cache: c}
}

// Do returns the cached value for key or computes and stores it with fn.
// Errors are not cached.
func (m *Memo[T]) Do(key string, fn func() (T, error)) (T, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.cache.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return v, err
		}
		m.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected value type %T for %q", v, key)
	}
	return out, nil
}

// Invalidate drops every memoized value.
func (m *Memo[T]) Invalidate() {
	m.cache.Purge()
}

func (m *Memo[T]) Size() int {
	return m.cache.Size()
}
