package sessionstore

import (
	"time"

	"basebridge/internal/app/port"

	"github.com/patrickmn/go-cache"
)

// Store is an in-memory port.SessionRepository backed by go-cache. Entries
// expire after ttl without a Save.
type Store[T any] struct {
	cache *cache.Cache
}

// New creates a store whose entries expire after ttl; expired entries are
// purged every cleanupInterval. onEvict, if set, is called for every removed entry.
func New[T any](ttl, cleanupInterval time.Duration, onEvict func(id string, value T)) *Store[T] {
	c := cache.New(ttl, cleanupInterval)
	if onEvict != nil {
		c.OnEvicted(func(id string, v interface{}) {
			if value, ok := v.(T); ok {
				onEvict(id, value)
			}
		})
	}
	return &Store[T]{cache: c}
}

var _ port.SessionRepository[int] = (*Store[int])(nil)

// Get returns the value stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	var zero T
	v, ok := s.cache.Get(id)
	if !ok {
		return zero, false
	}
	value, ok := v.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// Save stores value under id and resets its expiry.
func (s *Store[T]) Save(id string, value T) {
	s.cache.SetDefault(id, value)
}

// Delete removes id.
func (s *Store[T]) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of entries, including expired ones not yet purged.
func (s *Store[T]) Count() int {
	return s.cache.ItemCount()
}
