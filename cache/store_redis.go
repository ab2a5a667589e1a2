package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis. Layout under the configured key
// prefix p:
//
//	p + "v:" + key   value blob, expires with the entry TTL
//	p + "m:" + key   metadata hash (tags, size, created_at, access), same TTL
//	p + "t:" + tag   set of keys carrying the tag
//	p + "tags"       set of known tag names
//	p + "keys"       set of all written keys
//
// Redis expires the value and metadata itself; tag and key set
// memberships of lapsed entries are reaped lazily on reads, bulk deletes
// and snapshots. Hit/miss counters are process-local.
type RedisStore struct {
	name      string
	client    *redis.Client
	keyPrefix string

	hits   int64
	misses int64
}

// NewRedisStore creates a Redis-backed store. The client is owned by the
// caller and not closed by the store.
func NewRedisStore(name string, client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		name:      name,
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Name returns the store name.
func (s *RedisStore) Name() string {
	return s.name
}

// bumpAccessScript increments the access field only while the metadata
// hash still exists. A plain HINCRBY racing expiry would recreate the
// hash without a TTL and leave an orphan.
var bumpAccessScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
end
return 0
`)

func (s *RedisStore) valueKey(key string) string { return s.keyPrefix + "v:" + key }
func (s *RedisStore) metaKey(key string) string  { return s.keyPrefix + "m:" + key }
func (s *RedisStore) tagKey(tag string) string   { return s.keyPrefix + "t:" + tag }
func (s *RedisStore) tagsKey() string            { return s.keyPrefix + "tags" }
func (s *RedisStore) keysKey() string            { return s.keyPrefix + "keys" }

// Get returns the value for a live key and bumps its access count.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.valueKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			return nil, ErrCacheMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}

	atomic.AddInt64(&s.hits, 1)
	// Best effort; a failed bump must not fail the read.
	bumpAccessScript.Run(ctx, s.client, []string{s.metaKey(key)}, "access")
	return data, nil
}

// Set writes or overwrites an entry and updates the tag sets.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl <= 0 {
		return ErrInvalidTTL.WithMsgf("ttl must be positive, got %s", ttl)
	}

	oldTags, err := s.entryTags(ctx, key)
	if err != nil {
		return ErrStoreSet.Wrap(err)
	}

	cleanTags := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		cleanTags = append(cleanTags, tag)
	}
	tagsJSON, err := json.Marshal(cleanTags)
	if err != nil {
		return ErrStoreSet.Wrap(err)
	}

	pipe := s.client.TxPipeline()
	for _, tag := range oldTags {
		if _, keep := seen[tag]; !keep {
			pipe.SRem(ctx, s.tagKey(tag), key)
		}
	}
	pipe.Set(ctx, s.valueKey(key), value, ttl)
	pipe.HSet(ctx, s.metaKey(key),
		"tags", string(tagsJSON),
		"size", strconv.Itoa(len(value)),
		"created_at", strconv.FormatInt(time.Now().Unix(), 10),
		"access", "0",
	)
	pipe.Expire(ctx, s.metaKey(key), ttl)
	for _, tag := range cleanTags {
		pipe.SAdd(ctx, s.tagKey(tag), key)
		pipe.SAdd(ctx, s.tagsKey(), tag)
	}
	pipe.SAdd(ctx, s.keysKey(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

// Delete removes an entry and its tag memberships. Absent keys are a
// no-op.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	tags, err := s.entryTags(ctx, key)
	if err != nil {
		return ErrStoreDelete.Wrap(err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.valueKey(key), s.metaKey(key))
	for _, tag := range tags {
		pipe.SRem(ctx, s.tagKey(tag), key)
	}
	pipe.SRem(ctx, s.keysKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// KeysForTag returns the live keys under a tag, reaping memberships of
// lapsed entries along the way.
func (s *RedisStore) KeysForTag(ctx context.Context, tag string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.tagKey(tag)).Result()
	if err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}

	var keys []string
	for _, key := range members {
		exists, err := s.client.Exists(ctx, s.valueKey(key)).Result()
		if err != nil {
			return nil, ErrStoreGet.Wrap(err)
		}
		if exists == 0 {
			s.client.SRem(ctx, s.tagKey(tag), key)
			s.client.SRem(ctx, s.keysKey(), key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteByTags removes every live entry carrying any of the tags.
func (s *RedisStore) DeleteByTags(ctx context.Context, tags ...string) (int, error) {
	doomed := make(map[string]struct{})
	for _, tag := range tags {
		members, err := s.client.SMembers(ctx, s.tagKey(tag)).Result()
		if err != nil {
			return 0, ErrStoreDelete.Wrap(err)
		}
		for _, key := range members {
			doomed[key] = struct{}{}
		}
	}

	removed := 0
	for key := range doomed {
		exists, err := s.client.Exists(ctx, s.valueKey(key)).Result()
		if err != nil {
			return removed, ErrStoreDelete.Wrap(err)
		}
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		if exists > 0 {
			removed++
		}
	}

	// Dropping the whole tag set also discards memberships a concurrent
	// Set added after the SMEMBERS read; last writer wins.
	for _, tag := range tags {
		s.client.Del(ctx, s.tagKey(tag))
		s.client.SRem(ctx, s.tagsKey(), tag)
	}
	return removed, nil
}

// Flush removes every entry, tag set and bookkeeping structure.
func (s *RedisStore) Flush(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, s.keysKey()).Result()
	if err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	tags, err := s.client.SMembers(ctx, s.tagsKey()).Result()
	if err != nil {
		return ErrStoreDelete.Wrap(err)
	}

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Del(ctx, s.valueKey(key), s.metaKey(key))
	}
	for _, tag := range tags {
		pipe.Del(ctx, s.tagKey(tag))
	}
	pipe.Del(ctx, s.keysKey(), s.tagsKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// Snapshot aggregates statistics over live entries.
func (s *RedisStore) Snapshot(ctx context.Context) (*StatsSnapshot, error) {
	snap := &StatsSnapshot{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		TagCounts: make(map[string]int),
		TakenAt:   time.Now(),
	}
	snap.HitRate = hitRate(snap.Hits, snap.Misses)

	keys, err := s.client.SMembers(ctx, s.keysKey()).Result()
	if err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}

	live := make(map[string]struct{}, len(keys))
	var accessTotal int64
	for _, key := range keys {
		meta, err := s.client.HGetAll(ctx, s.metaKey(key)).Result()
		if err != nil {
			return nil, ErrStoreGet.Wrap(err)
		}
		if len(meta) == 0 {
			// Entry lapsed; reap the membership.
			s.client.SRem(ctx, s.keysKey(), key)
			continue
		}
		live[key] = struct{}{}
		snap.TotalEntries++
		if size, err := strconv.ParseInt(meta["size"], 10, 64); err == nil {
			snap.TotalSizeBytes += size
		}
		if access, err := strconv.ParseInt(meta["access"], 10, 64); err == nil {
			accessTotal += access
		}
	}
	if snap.TotalEntries > 0 {
		snap.AvgAccessCount = float64(accessTotal) / float64(snap.TotalEntries)
	}

	tags, err := s.client.SMembers(ctx, s.tagsKey()).Result()
	if err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}
	for _, tag := range tags {
		members, err := s.client.SMembers(ctx, s.tagKey(tag)).Result()
		if err != nil {
			return nil, ErrStoreGet.Wrap(err)
		}
		count := 0
		for _, key := range members {
			if _, ok := live[key]; ok {
				count++
			} else {
				s.client.SRem(ctx, s.tagKey(tag), key)
			}
		}
		if count > 0 {
			snap.TagCounts[tag] = count
		}
	}
	return snap, nil
}

// ResetCounters zeroes the process-local hit/miss counters.
func (s *RedisStore) ResetCounters() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
}

// Close is a no-op; the client lifecycle belongs to the redis manager.
func (s *RedisStore) Close() error {
	return nil
}

// entryTags reads the stored tag list for a key; absent entries yield an
// empty list.
func (s *RedisStore) entryTags(ctx context.Context, key string) ([]string, error) {
	raw, err := s.client.HGet(ctx, s.metaKey(key), "tags").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
