// Package cache implements a tag-indexed expiring key/value cache with
// statistics. Entries carry a TTL and a set of tags; tags drive grouped
// invalidation. Two store backends exist: an in-process memory store and
// a Redis-backed store. The Admin facade is the only surface operator
// tooling calls; application code goes through typed Accessors.
package cache

import (
	"context"
	"time"
)

// Store is the tag-aware storage contract every backend implements.
//
// Expiry semantics: an entry whose TTL has lapsed is absent on every read
// path. Backends may reap lapsed entries on read, during Snapshot, or in
// a background sweep, but must never surface one as a hit or count it in
// aggregates.
//
// Writes to the same key are last-writer-wins; the tag index is updated
// in the same critical section as the entry itself so the two never
// diverge.
type Store interface {
	// Name returns the backend name.
	Name() string

	// Get returns the stored value and bumps the entry's access count.
	// Returns ErrCacheMiss for absent or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes or overwrites an entry. Overwriting replaces value,
	// tags and expiry, and resets the access count. ttl must be
	// positive or Set fails with ErrInvalidTTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error

	// Delete removes an entry and its tag memberships. Deleting an
	// absent key is not an error.
	Delete(ctx context.Context, key string) error

	// KeysForTag returns the live keys currently carrying the tag.
	KeysForTag(ctx context.Context, tag string) ([]string, error)

	// DeleteByTags removes every entry carrying any of the tags and
	// returns the number of entries removed. Unknown tags are no-ops.
	DeleteByTags(ctx context.Context, tags ...string) (int, error)

	// Flush removes every entry and the whole tag index. Idempotent.
	Flush(ctx context.Context) error

	// Snapshot computes current statistics over live entries.
	Snapshot(ctx context.Context) (*StatsSnapshot, error)

	// ResetCounters zeroes the cumulative hit/miss counters.
	ResetCounters()

	// Close releases backend resources and stops background work.
	Close() error
}

// Serializer converts values to and from the stored byte form.
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Name() string
}

// FetchFunc produces a value for warmup or load-through population.
type FetchFunc func(ctx context.Context) (any, error)
