package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/CleanExpo/zenith-cache/logger"
)

// Accessor is the typed read/write surface one logical domain uses.
// Every write carries the domain tag plus any extra tags configured on
// the accessor, so the whole domain can be invalidated through the tag
// index.
type Accessor[V any] struct {
	store      Store
	serializer Serializer
	prefix     Prefix
	ttl        time.Duration
	tags       []string
	sf         singleflight.Group
	log        *logger.CtxZapLogger
}

// AccessorOption configures an accessor.
type AccessorOption[V any] func(*Accessor[V])

// WithTags adds extra tags to every entry the accessor writes.
func WithTags[V any](tags ...string) AccessorOption[V] {
	return func(a *Accessor[V]) {
		a.tags = append(a.tags, tags...)
	}
}

// WithSerializer overrides the JSON default.
func WithSerializer[V any](s Serializer) AccessorOption[V] {
	return func(a *Accessor[V]) {
		a.serializer = s
	}
}

// WithAccessorLogger overrides the accessor logger.
func WithAccessorLogger[V any](log *logger.CtxZapLogger) AccessorOption[V] {
	return func(a *Accessor[V]) {
		a.log = log
	}
}

// NewAccessor creates a typed accessor for one domain prefix. ttl applies
// to every write.
func NewAccessor[V any](store Store, prefix Prefix, ttl time.Duration, opts ...AccessorOption[V]) *Accessor[V] {
	a := &Accessor[V]{
		store:      store,
		serializer: NewJSONSerializer(),
		prefix:     prefix,
		ttl:        ttl,
		tags:       []string{prefix.Tag()},
		log:        logger.GetLogger("cache"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Get returns the cached value for a qualifier. The second return is
// false on a miss.
func (a *Accessor[V]) Get(ctx context.Context, qualifier string) (V, bool, error) {
	var zero V
	key := a.prefix.Key(qualifier)

	data, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return zero, false, nil
		}
		return zero, false, err
	}

	var value V
	if err := a.serializer.Deserialize(data, &value); err != nil {
		// A corrupt entry is unusable; drop it and report a miss.
		a.log.WarnCtx(ctx, "dropping undecodable cache entry",
			zap.String("key", key),
			zap.Error(err),
		)
		_ = a.store.Delete(ctx, key)
		return zero, false, nil
	}
	return value, true, nil
}

// Set writes the value under the accessor's TTL and tags.
func (a *Accessor[V]) Set(ctx context.Context, qualifier string, value V) error {
	data, err := a.serializer.Serialize(value)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.prefix.Key(qualifier), data, a.ttl, a.tags...)
}

// Invalidate removes the entry for a qualifier.
func (a *Accessor[V]) Invalidate(ctx context.Context, qualifier string) error {
	return a.store.Delete(ctx, a.prefix.Key(qualifier))
}

// GetOrLoad returns the cached value, or loads, stores and returns it on
// a miss. Concurrent misses on the same qualifier are collapsed into one
// load. A failed cache write is logged and the loaded value is still
// returned.
func (a *Accessor[V]) GetOrLoad(ctx context.Context, qualifier string, load func(ctx context.Context) (V, error)) (V, error) {
	var zero V

	if value, ok, err := a.Get(ctx, qualifier); err != nil {
		return zero, err
	} else if ok {
		return value, nil
	}

	key := a.prefix.Key(qualifier)
	result, err, _ := a.sf.Do(key, func() (any, error) {
		// Double-check: another flight may have populated the entry.
		if value, ok, err := a.Get(ctx, qualifier); err != nil {
			return zero, err
		} else if ok {
			return value, nil
		}

		value, err := load(ctx)
		if err != nil {
			return zero, err
		}
		if err := a.Set(ctx, qualifier, value); err != nil {
			a.log.WarnCtx(ctx, "cache set failed after load",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(V), nil
}

// Prefix returns the accessor's domain prefix.
func (a *Accessor[V]) Prefix() Prefix {
	return a.prefix
}
