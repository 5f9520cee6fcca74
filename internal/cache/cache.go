// Package cache is a small in-process TTL cache backed by otter. The
// forecast engine itself never touches it; it is injected into the forecaster
// as a collaborator so the core stays a pure function of its inputs.
package cache

import (
	"time"

	"github.com/maypok86/otter/v2"
)

type Store[V any] struct {
	cache *otter.Cache[string, V]
}

// New builds a store that expires entries ttl after they are written.
func New[V any](capacity int, ttl time.Duration) *Store[V] {
	return &Store[V]{
		cache: otter.Must(&otter.Options[string, V]{
			MaximumSize:      capacity,
			ExpiryCalculator: otter.ExpiryWriting[string, V](ttl),
		}),
	}
}

func (s *Store[V]) Get(key string) (V, bool) {
	return s.cache.GetIfPresent(key)
}

func (s *Store[V]) Set(key string, value V) {
	s.cache.Set(key, value)
}

func (s *Store[V]) Invalidate(key string) {
	s.cache.Invalidate(key)
}
