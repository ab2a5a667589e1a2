package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/logger"
)

// Config is the event component configuration, read from the "event"
// section.
type Config struct {
	Enabled  bool `mapstructure:"enabled"`
	PoolSize int  `mapstructure:"pool_size"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		PoolSize: 32,
	}
}

// Component wires the dispatcher into the lifecycle registry.
type Component struct {
	dispatcher *dispatcher
	logger     *logger.CtxZapLogger
	config     Config
}

func NewComponent() *Component {
	return &Component{}
}

func (c *Component) Name() string {
	return component.ComponentEvent
}

func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
	}
}

func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.logger = logger.GetLogger(component.ComponentEvent)

	c.config = DefaultConfig()
	if loader.IsSet(component.ComponentEvent) {
		if err := loader.Unmarshal(component.ComponentEvent, &c.config); err != nil {
			return err
		}
	}

	if !c.config.Enabled {
		c.logger.InfoCtx(ctx, "event component disabled")
		return nil
	}

	c.dispatcher = NewDispatcher(
		WithPoolSize(c.config.PoolSize),
		WithLogger(c.logger),
	)
	c.logger.DebugCtx(ctx, "event dispatcher ready",
		zap.Int("pool_size", c.config.PoolSize))
	return nil
}

func (c *Component) Start(ctx context.Context) error {
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	if c.dispatcher != nil {
		c.dispatcher.Close()
		c.dispatcher = nil
	}
	return nil
}

// GetDispatcher returns the dispatcher, or nil when disabled.
func (c *Component) GetDispatcher() Dispatcher {
	if c.dispatcher == nil {
		return nil
	}
	return c.dispatcher
}

// IsEnabled reports whether the dispatcher is running.
func (c *Component) IsEnabled() bool {
	return c.config.Enabled && c.dispatcher != nil
}
