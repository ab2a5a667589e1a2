// Package redis manages named Redis client instances for the components
// that need one, such as the cache's Redis-backed store.
package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/logger"
)

// Manager owns one client per configured instance name.
type Manager struct {
	instances map[string]*redis.Client
	configs   map[string]Config
	logger    *logger.CtxZapLogger
	mu        sync.RWMutex
}

// NewManager creates clients for every configured instance and verifies
// connectivity with a ping.
func NewManager(configs map[string]Config, log *logger.CtxZapLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx := context.Background()
	m := &Manager{
		instances: make(map[string]*redis.Client),
		configs:   make(map[string]Config),
		logger:    log,
	}

	for name, cfg := range configs {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config for %s: %w", name, err)
		}

		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis %s (%s): %w", name, cfg.Addr, err)
		}

		m.instances[name] = client
		m.configs[name] = cfg
		m.logger.DebugCtx(ctx, "redis connected",
			zap.String("name", name),
			zap.String("addr", cfg.Addr))
	}

	return m, nil
}

// Client returns the named client, or nil when unknown.
func (m *Manager) Client(name string) *redis.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// InstanceNames returns all configured instance names.
func (m *Manager) InstanceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	return names
}

// Close closes every client.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, client := range m.instances {
		if err := client.Close(); err != nil {
			lastErr = fmt.Errorf("close redis %s: %w", name, err)
		}
	}
	m.instances = make(map[string]*redis.Client)
	return lastErr
}
