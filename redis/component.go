package redis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/logger"
)

// Component wraps the Manager in the component lifecycle.
// Configuration section: "redis.instances" (map of instance name to Config).
type Component struct {
	manager *Manager
	logger  *logger.CtxZapLogger
}

// NewComponent creates an uninitialized Redis component.
func NewComponent() *Component {
	return &Component{}
}

// Name returns the component name.
func (c *Component) Name() string {
	return component.ComponentRedis
}

// DependsOn declares config and logger as hard dependencies.
func (c *Component) DependsOn() []string {
	return []string{component.ComponentConfig, component.ComponentLogger}
}

// Init reads the instance map and connects every client.
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.logger = logger.GetLogger("redis")

	var configs map[string]Config
	if err := loader.Unmarshal("redis.instances", &configs); err != nil {
		return fmt.Errorf("read redis config: %w", err)
	}

	if len(configs) == 0 {
		c.logger.DebugCtx(ctx, "no redis instances configured, skipping")
		return nil
	}

	manager, err := NewManager(configs, c.logger)
	if err != nil {
		return fmt.Errorf("create redis manager: %w", err)
	}
	c.manager = manager
	c.logger.InfoCtx(ctx, "redis component initialized", zap.Int("instances", len(configs)))
	return nil
}

// Start is a no-op; connections are established during Init.
func (c *Component) Start(ctx context.Context) error {
	return nil
}

// Stop closes all clients.
func (c *Component) Stop(ctx context.Context) error {
	if c.manager != nil {
		if err := c.manager.Close(); err != nil {
			return fmt.Errorf("close redis connections: %w", err)
		}
	}
	return nil
}

// GetManager returns the manager, or nil when no instances were configured.
func (c *Component) GetManager() *Manager {
	return c.manager
}

// GetHealthChecker returns the component's health checker, or nil when
// no instances are configured.
func (c *Component) GetHealthChecker() component.HealthChecker {
	if c.manager == nil {
		return nil
	}
	return NewHealthChecker(c.manager)
}
