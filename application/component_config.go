package application

import (
	"fmt"

	"context"

	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/config"
)

// ConfigComponent loads the layered configuration and serves it to every
// other component through the component.ConfigLoader interface.
type ConfigComponent struct {
	configPath string
	envPrefix  string
	loader     *config.Loader
}

// NewConfigComponent creates the config component for a config file path
// and an optional environment variable prefix.
func NewConfigComponent(configPath, envPrefix string) *ConfigComponent {
	return &ConfigComponent{
		configPath: configPath,
		envPrefix:  envPrefix,
	}
}

func (c *ConfigComponent) Name() string {
	return component.ComponentConfig
}

func (c *ConfigComponent) DependsOn() []string {
	return []string{}
}

func (c *ConfigComponent) Init(ctx context.Context, loader component.ConfigLoader) error {
	if c.loader != nil {
		return nil
	}
	l, err := config.NewLoaderFromFile(c.configPath, c.envPrefix)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.loader = l
	return nil
}

func (c *ConfigComponent) Start(ctx context.Context) error {
	return nil
}

func (c *ConfigComponent) Stop(ctx context.Context) error {
	return nil
}

// GetLoader returns the underlying loader.
func (c *ConfigComponent) GetLoader() *config.Loader {
	return c.loader
}

// SetLoader injects a prebuilt loader, skipping the file load in Init.
func (c *ConfigComponent) SetLoader(loader *config.Loader) {
	c.loader = loader
}

// component.ConfigLoader, delegated to the loader.

func (c *ConfigComponent) Get(key string) interface{} {
	return c.loader.Get(key)
}

func (c *ConfigComponent) Unmarshal(key string, v interface{}) error {
	return c.loader.Unmarshal(key, v)
}

func (c *ConfigComponent) GetString(key string) string {
	return c.loader.GetString(key)
}

func (c *ConfigComponent) GetInt(key string) int {
	return c.loader.GetInt(key)
}

func (c *ConfigComponent) GetBool(key string) bool {
	return c.loader.GetBool(key)
}

func (c *ConfigComponent) IsSet(key string) bool {
	return c.loader.IsSet(key)
}
