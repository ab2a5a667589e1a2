package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/event"
	"github.com/CleanExpo/zenith-cache/logger"
	"github.com/CleanExpo/zenith-cache/redis"
)

// Component wires the cache into the lifecycle registry. It builds the
// configured store on Start, exposes the Admin facade, and subscribes
// tag invalidation rules on the event dispatcher.
type Component struct {
	cfg   *Config
	log   *logger.CtxZapLogger
	store Store
	admin *Admin

	redisManager *redis.Manager
	dispatcher   event.Dispatcher
	unsubscribes []event.UnsubscribeFunc
}

func NewComponent() *Component {
	return &Component{}
}

func (c *Component) Name() string {
	return component.ComponentCache
}

func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		"optional:" + component.ComponentRedis,
		"optional:" + component.ComponentEvent,
	}
}

// SetRedisManager injects the redis manager. Required before Start when
// the configured store is "redis".
func (c *Component) SetRedisManager(m *redis.Manager) {
	c.redisManager = m
}

// SetEventDispatcher injects the dispatcher used for event-driven tag
// invalidation. Without one, invalidation rules are ignored.
func (c *Component) SetEventDispatcher(d event.Dispatcher) {
	c.dispatcher = d
}

func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	cfg := &Config{}
	if loader.IsSet(component.ComponentCache) {
		if err := loader.Unmarshal(component.ComponentCache, cfg); err != nil {
			return ErrConfigInvalid.Wrap(err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.GetLogger(component.ComponentCache)

	c.log.DebugCtx(ctx, "cache configured",
		zap.String("store", cfg.Store),
		zap.Bool("enabled", cfg.Enabled),
	)
	return nil
}

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.InfoCtx(ctx, "cache disabled, skipping start")
		return nil
	}

	store, err := c.buildStore()
	if err != nil {
		return err
	}
	c.store = store
	c.admin = NewAdmin(store, c.cfg, c.log)

	c.subscribeInvalidationRules()

	c.log.InfoCtx(ctx, "cache started", zap.String("store", store.Name()))
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	for _, unsub := range c.unsubscribes {
		unsub()
	}
	c.unsubscribes = nil

	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.admin = nil
	if err != nil {
		c.log.WarnCtx(ctx, "cache store close failed", zap.Error(err))
	}
	return err
}

// GetAdmin returns the admin facade, or nil before Start.
func (c *Component) GetAdmin() *Admin {
	return c.admin
}

// GetStore returns the active store, or nil before Start.
func (c *Component) GetStore() Store {
	return c.store
}

// GetConfig returns the parsed configuration, or nil before Init.
func (c *Component) GetConfig() *Config {
	return c.cfg
}

func (c *Component) buildStore() (Store, error) {
	switch c.cfg.Store {
	case StoreMemory:
		return NewMemoryStore(component.ComponentCache, c.cfg.Memory), nil
	case StoreRedis:
		if c.redisManager == nil {
			return nil, ErrConfigInvalid.WithMsg("redis store requires a redis manager")
		}
		client := c.redisManager.Client(c.cfg.Redis.Instance)
		if client == nil {
			return nil, ErrStoreNotFound.WithMsgf("redis instance %q not configured", c.cfg.Redis.Instance)
		}
		return NewRedisStore(component.ComponentCache, client, c.cfg.Redis.KeyPrefix), nil
	default:
		return nil, ErrConfigInvalid.WithMsgf("unknown store %q", c.cfg.Store)
	}
}

func (c *Component) subscribeInvalidationRules() {
	if c.dispatcher == nil || len(c.cfg.InvalidationRules) == 0 {
		return
	}
	// The listeners capture the store rather than reading c.store;
	// a delivery already queued when Stop runs must not observe the
	// nilled field.
	store := c.store
	log := c.log
	for _, rule := range c.cfg.InvalidationRules {
		tags := rule.Tags
		unsub := c.dispatcher.Subscribe(rule.Event, event.ListenerFunc(
			func(ctx context.Context, ev event.Event) error {
				removed, err := store.DeleteByTags(ctx, tags...)
				if err != nil {
					log.ErrorCtx(ctx, "event invalidation failed",
						zap.String("event", ev.Name()),
						zap.Strings("tags", tags),
						zap.Error(err),
					)
					return err
				}
				log.InfoCtx(ctx, "event invalidation",
					zap.String("event", ev.Name()),
					zap.Strings("tags", tags),
					zap.Int("removed", removed),
				)
				return nil
			}))
		c.unsubscribes = append(c.unsubscribes, unsub)
	}
}

// GetHealthChecker exposes a round-trip probe against the active store.
func (c *Component) GetHealthChecker() component.HealthChecker {
	return &healthChecker{comp: c}
}

type healthChecker struct {
	comp *Component
}

func (h *healthChecker) Name() string {
	return component.ComponentCache
}

// Check writes a probe entry, confirms it through the tag index and
// deletes it. The probe reads via KeysForTag instead of Get so checks
// never count toward the hit-rate or access statistics.
func (h *healthChecker) Check(ctx context.Context) error {
	store := h.comp.store
	if store == nil {
		if h.comp.cfg != nil && !h.comp.cfg.Enabled {
			return nil
		}
		return fmt.Errorf("cache store not started")
	}

	const probe = "health:probe"
	if err := store.Set(ctx, probe, []byte("ok"), 5*time.Second, probe); err != nil {
		return fmt.Errorf("health probe set: %w", err)
	}
	keys, err := store.KeysForTag(ctx, probe)
	if err != nil {
		return fmt.Errorf("health probe read: %w", err)
	}
	found := false
	for _, key := range keys {
		if key == probe {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("health probe missing after write")
	}
	if err := store.Delete(ctx, probe); err != nil {
		return fmt.Errorf("health probe delete: %w", err)
	}
	return nil
}
