package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the in-process store when the configuration
// does not say otherwise.
const DefaultMemoryCapacity = 64

// MemoryStore is a thread-safe LRU store with per-entry expiry. Entries
// are kept in a doubly-linked list from most to least recently used;
// inserting past capacity evicts from the tail.
type MemoryStore struct {
	mutex    sync.RWMutex
	capacity int
	items    map[string]*entry
	head     *entry // most recently used
	tail     *entry // least recently used
	hits     int64
	misses   int64
	now      func() time.Time
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiry
	prev      *entry
	next      *entry
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	s := &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*entry),
		now:      time.Now,
	}

	// Dummy head and tail keep the list edits branch-free.
	s.head = &entry{}
	s.tail = &entry{}
	s.head.next = s.tail
	s.tail.prev = s.head

	return s
}

// Get returns the value for key and marks it recently used. Expired
// entries count as misses and are dropped on sight.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, exists := s.items[key]
	if !exists {
		s.misses++
		return nil, false, nil
	}
	if s.expired(e) {
		s.unlink(e)
		delete(s.items, key)
		s.misses++
		return nil, false, nil
	}

	s.moveToFront(e)
	s.hits++
	return e.value, true, nil
}

// Set adds or replaces key. A positive ttl stamps an expiry; zero keeps
// the entry until evicted.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	if e, exists := s.items[key]; exists {
		e.value = value
		e.expiresAt = expiresAt
		s.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	s.addToFront(e)
	s.items[key] = e

	if len(s.items) > s.capacity {
		s.evict()
	}
	return nil
}

// Delete removes key if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if e, exists := s.items[key]; exists {
		s.unlink(e)
		delete(s.items, key)
	}
	return nil
}

// Clear drops every entry and resets the counters.
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.items = make(map[string]*entry)
	s.head.next = s.tail
	s.tail.prev = s.head
	s.hits = 0
	s.misses = 0
}

// Len returns the current number of entries.
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.items)
}

// Capacity returns the configured bound.
func (s *MemoryStore) Capacity() int {
	return s.capacity
}

// Stats reports hit/miss counters for diagnostics.
func (s *MemoryStore) Stats() Stats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := s.hits + s.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(s.hits) / float64(total) * 100
	}

	return Stats{
		Hits:     s.hits,
		Misses:   s.misses,
		HitRate:  hitRate,
		Size:     len(s.items),
		Capacity: s.capacity,
	}
}

// Stats describes memory-store performance.
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}

func (s *MemoryStore) expired(e *entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

func (s *MemoryStore) moveToFront(e *entry) {
	s.unlink(e)
	s.addToFront(e)
}

func (s *MemoryStore) addToFront(e *entry) {
	e.prev = s.head
	e.next = s.head.next
	s.head.next.prev = e
	s.head.next = e
}

func (s *MemoryStore) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (s *MemoryStore) evict() {
	lru := s.tail.prev
	if lru != s.head {
		s.unlink(lru)
		delete(s.items, lru.key)
	}
}
