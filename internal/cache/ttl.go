// Package cache provides the ephemeral store backing fetched
// workbooks. Entries expire after a fixed TTL and the least recently
// used entry is evicted when the store is full.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// Store is a TTL + LRU cache safe for concurrent use.
type Store[T any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	items      map[string]*list.Element
	order      *list.List // front = most recently used
}

// New creates a store. maxEntries must be positive.
func New[T any](maxEntries int, ttl time.Duration) *Store[T] {
	return &Store[T]{
		maxEntries: maxEntries,
		ttl:        ttl,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the cached value when present and not expired. Expired
// entries are removed on the spot.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	el, ok := s.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		s.remove(el)
		return zero, false
	}
	s.order.MoveToFront(el)
	return e.value, true
}

// Set stores a value with a fresh TTL, evicting the oldest entry when
// over capacity. An existing key is overwritten (last write wins).
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry[T]{key: key, value: value, expiresAt: time.Now().Add(s.ttl)}
	if el, ok := s.items[key]; ok {
		el.Value = e
		s.order.MoveToFront(el)
		return
	}
	s.items[key] = s.order.PushFront(e)
	if s.order.Len() > s.maxEntries {
		if oldest := s.order.Back(); oldest != nil {
			s.remove(oldest)
		}
	}
}

// Delete removes one key.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.remove(el)
	}
}

// Clear drops every entry.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.order.Init()
}

// Len reports the current entry count, expired entries included until
// they are touched.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) remove(el *list.Element) {
	e := el.Value.(*entry[T])
	delete(s.items, e.key)
	s.order.Remove(el)
}
