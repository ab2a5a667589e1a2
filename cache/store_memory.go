package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// memoryEntry is one cached record. All fields are guarded by the store
// mutex.
type memoryEntry struct {
	value       []byte
	tags        map[string]struct{}
	createdAt   time.Time
	expiresAt   time.Time
	accessCount int64
	size        int64
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is the in-process backend. The entry map is authoritative;
// the tag index is a secondary structure maintained in the same critical
// section as every entry mutation, so the invariant
//
//	key in tagIndex[tag]  <=>  tag in entries[key].tags
//
// holds at every observation point.
type MemoryStore struct {
	name       string
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	tagIndex   map[string]map[string]struct{}
	maxEntries int

	// Cumulative read counters, atomic so Snapshot never blocks reads
	// longer than necessary.
	hits   int64
	misses int64

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a memory store and starts its expiry sweep loop
// when cfg.CleanupInterval is positive.
func NewMemoryStore(name string, cfg MemoryConfig) *MemoryStore {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	s := &MemoryStore{
		name:       name,
		entries:    make(map[string]*memoryEntry),
		tagIndex:   make(map[string]map[string]struct{}),
		maxEntries: cfg.MaxEntries,
		stop:       make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go s.cleanupLoop(cfg.CleanupInterval)
	}
	return s
}

// Name returns the store name.
func (s *MemoryStore) Name() string {
	return s.name
}

// Get returns the value for a live key and bumps its access count.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		atomic.AddInt64(&s.misses, 1)
		return nil, ErrCacheMiss
	}
	if entry.expired(time.Now()) {
		s.removeLocked(key)
		atomic.AddInt64(&s.misses, 1)
		return nil, ErrCacheMiss
	}

	entry.accessCount++
	atomic.AddInt64(&s.hits, 1)
	return entry.value, nil
}

// Set writes or overwrites an entry. An overwrite replaces value, tags
// and expiry, resets the access count and re-stamps createdAt; the tag
// index is diffed in the same critical section.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl <= 0 {
		return ErrInvalidTTL.WithMsgf("ttl must be positive, got %s", ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		s.detachTagsLocked(key, existing.tags)
	} else if len(s.entries) >= s.maxEntries {
		s.evictOneLocked()
	}

	now := time.Now()
	entry := &memoryEntry{
		value:     value,
		tags:      make(map[string]struct{}, len(tags)),
		createdAt: now,
		expiresAt: now.Add(ttl),
		size:      int64(len(value)),
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		entry.tags[tag] = struct{}{}
		bucket, ok := s.tagIndex[tag]
		if !ok {
			bucket = make(map[string]struct{})
			s.tagIndex[tag] = bucket
		}
		bucket[key] = struct{}{}
	}
	s.entries[key] = entry
	return nil
}

// Delete removes an entry. Absent keys are a no-op.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
	return nil
}

// KeysForTag returns the live keys under a tag, sorted for determinism.
func (s *MemoryStore) KeysForTag(ctx context.Context, tag string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var keys []string
	for key := range s.tagIndex[tag] {
		if entry, ok := s.entries[key]; ok {
			if entry.expired(now) {
				s.removeLocked(key)
				continue
			}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteByTags removes every live entry carrying any of the tags and
// returns how many were removed. Unknown tags are no-ops; lapsed entries
// found along the way are reaped without being counted.
func (s *MemoryStore) DeleteByTags(ctx context.Context, tags ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	doomed := make(map[string]struct{})
	for _, tag := range tags {
		for key := range s.tagIndex[tag] {
			doomed[key] = struct{}{}
		}
	}

	removed := 0
	for key := range doomed {
		entry, ok := s.entries[key]
		if !ok {
			continue
		}
		live := !entry.expired(now)
		s.removeLocked(key)
		if live {
			removed++
		}
	}
	return removed, nil
}

// Flush drops every entry and the whole tag index.
func (s *MemoryStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memoryEntry)
	s.tagIndex = make(map[string]map[string]struct{})
	return nil
}

// Snapshot aggregates statistics over live entries, reaping any lapsed
// ones it encounters so they never skew the counts.
func (s *MemoryStore) Snapshot(ctx context.Context) (*StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if entry.expired(now) {
			s.removeLocked(key)
		}
	}

	snap := &StatsSnapshot{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		TagCounts: make(map[string]int, len(s.tagIndex)),
		TakenAt:   now,
	}
	snap.HitRate = hitRate(snap.Hits, snap.Misses)

	var accessTotal int64
	for _, entry := range s.entries {
		snap.TotalEntries++
		snap.TotalSizeBytes += entry.size
		accessTotal += entry.accessCount
	}
	if snap.TotalEntries > 0 {
		snap.AvgAccessCount = float64(accessTotal) / float64(snap.TotalEntries)
	}
	for tag, bucket := range s.tagIndex {
		snap.TagCounts[tag] = len(bucket)
	}
	return snap, nil
}

// ResetCounters zeroes the cumulative hit/miss counters.
func (s *MemoryStore) ResetCounters() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
}

// Size returns the current entry count, expired entries included until
// they are reaped.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweep loop and clears the store. Idempotent.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	return s.Flush(context.Background())
}

// removeLocked deletes an entry and its tag memberships. Caller holds the
// mutex.
func (s *MemoryStore) removeLocked(key string) {
	entry, ok := s.entries[key]
	if !ok {
		return
	}
	s.detachTagsLocked(key, entry.tags)
	delete(s.entries, key)
}

// detachTagsLocked removes key from the given tag buckets, dropping
// buckets that become empty.
func (s *MemoryStore) detachTagsLocked(key string, tags map[string]struct{}) {
	for tag := range tags {
		bucket, ok := s.tagIndex[tag]
		if !ok {
			continue
		}
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(s.tagIndex, tag)
		}
	}
}

// evictOneLocked drops the entry closest to expiry to make room.
func (s *MemoryStore) evictOneLocked() {
	var victim string
	var victimExpiry time.Time
	for key, entry := range s.entries {
		if victim == "" || entry.expiresAt.Before(victimExpiry) {
			victim = key
			victimExpiry = entry.expiresAt
		}
	}
	if victim != "" {
		s.removeLocked(victim)
	}
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if entry.expired(now) {
			s.removeLocked(key)
		}
	}
}
