package di

import (
	"github.com/samber/do/v2"

	"github.com/CleanExpo/zenith-cache/cache"
	"github.com/CleanExpo/zenith-cache/config"
	"github.com/CleanExpo/zenith-cache/event"
	"github.com/CleanExpo/zenith-cache/logger"
	"github.com/CleanExpo/zenith-cache/redis"
)

// ConfigOptions configure the config loader provider.
type ConfigOptions struct {
	// ConfigPath is the configuration file path.
	ConfigPath string

	// EnvPrefix enables environment variable overrides when non-empty.
	EnvPrefix string
}

// ProvideConfigLoader creates the config.Loader provider. It is the
// bottom of the provider graph and has no dependencies.
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return func(i do.Injector) (*config.Loader, error) {
		return config.NewLoaderFromFile(opts.ConfigPath, opts.EnvPrefix)
	}
}

// ProvideLoggerManager creates the logger.Manager provider, reading the
// "logger" section when a config loader is available.
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}

	cfg := logger.DefaultManagerConfig()
	if loader.IsSet("logger") {
		if err := loader.Unmarshal("logger", &cfg); err != nil {
			return logger.NewManager(logger.DefaultManagerConfig()), nil
		}
		cfg.ApplyDefaults()
	}
	return logger.NewManager(cfg), nil
}

// ProvideCtxLogger creates a named logger provider.
func ProvideCtxLogger(moduleName string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return logger.GetLogger(moduleName), nil
		}
		return mgr.GetLogger(moduleName), nil
	}
}

// ProvideRedisManager creates the redis.Manager provider from the
// "redis.instances" section. Yields nil when no instances are
// configured.
func ProvideRedisManager(i do.Injector) (*redis.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	log, err := do.Invoke[*logger.CtxZapLogger](i)
	if err != nil {
		log = logger.GetLogger("redis")
	}

	var configs map[string]redis.Config
	if err := loader.Unmarshal("redis.instances", &configs); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	return redis.NewManager(configs, log)
}

// ProvideEventDispatcher creates the event dispatcher provider from the
// "event" section.
func ProvideEventDispatcher(i do.Injector) (event.Dispatcher, error) {
	log, err := do.Invoke[*logger.CtxZapLogger](i)
	if err != nil {
		log = logger.GetLogger("event")
	}

	cfg := event.DefaultConfig()
	if loader, err := do.Invoke[*config.Loader](i); err == nil && loader.IsSet("event") {
		if err := loader.Unmarshal("event", &cfg); err != nil {
			return nil, err
		}
	}
	return event.NewDispatcher(
		event.WithPoolSize(cfg.PoolSize),
		event.WithLogger(log),
	), nil
}

// ProvideCacheStore creates the cache store provider from the "cache"
// section, resolving the redis manager when the redis backend is
// configured.
func ProvideCacheStore(i do.Injector) (cache.Store, error) {
	cfg, err := do.Invoke[*cache.Config](i)
	if err != nil {
		return nil, err
	}

	switch cfg.Store {
	case cache.StoreRedis:
		mgr, err := do.Invoke[*redis.Manager](i)
		if err != nil {
			return nil, err
		}
		if mgr == nil {
			return nil, cache.ErrConfigInvalid.WithMsg("redis store requires configured redis instances")
		}
		client := mgr.Client(cfg.Redis.Instance)
		if client == nil {
			return nil, cache.ErrStoreNotFound.WithMsgf("redis instance %q not configured", cfg.Redis.Instance)
		}
		return cache.NewRedisStore("cache", client, cfg.Redis.KeyPrefix), nil
	default:
		return cache.NewMemoryStore("cache", cfg.Memory), nil
	}
}

// ProvideCacheConfig creates the cache configuration provider.
func ProvideCacheConfig(i do.Injector) (*cache.Config, error) {
	cfg := &cache.Config{}
	if loader, err := do.Invoke[*config.Loader](i); err == nil && loader.IsSet("cache") {
		if err := loader.Unmarshal("cache", cfg); err != nil {
			return nil, cache.ErrConfigInvalid.Wrap(err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideCacheAdmin creates the admin facade provider over the store.
func ProvideCacheAdmin(i do.Injector) (*cache.Admin, error) {
	store, err := do.Invoke[cache.Store](i)
	if err != nil {
		return nil, err
	}
	cfg, err := do.Invoke[*cache.Config](i)
	if err != nil {
		return nil, err
	}
	log, err := do.Invoke[*logger.CtxZapLogger](i)
	if err != nil {
		log = logger.GetLogger("cache")
	}
	return cache.NewAdmin(store, cfg, log), nil
}

// RegisterCoreProviders registers the whole lazy provider graph.
// Nothing connects until first invoked.
func RegisterCoreProviders(injector *do.RootScope, opts ConfigOptions) {
	do.Provide(injector, ProvideConfigLoader(opts))
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger("app"))
	do.Provide(injector, ProvideRedisManager)
	do.Provide(injector, ProvideEventDispatcher)
	do.Provide(injector, ProvideCacheConfig)
	do.Provide(injector, ProvideCacheStore)
	do.Provide(injector, ProvideCacheAdmin)
}
