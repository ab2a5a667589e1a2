package redis

import (
	"fmt"
	"time"
)

// Config describes one Redis instance.
type Config struct {
	// Addr is the host:port of the instance.
	Addr string `mapstructure:"addr"`

	// Password is optional.
	Password string `mapstructure:"password"`

	// DB is the database number (0-15).
	DB int `mapstructure:"db"`

	// PoolSize is the connection pool size (default 10).
	PoolSize int `mapstructure:"pool_size"`

	// MinIdleConns is the minimum idle connection count (default 2).
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MaxRetries is the per-command retry limit (default 3).
	MaxRetries int `mapstructure:"max_retries"`

	// DialTimeout is the connect timeout (default 5s).
	DialTimeout time.Duration `mapstructure:"dial_timeout"`

	// ReadTimeout is the read timeout (default 3s).
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the write timeout (default 3s).
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.DB < 0 || c.DB > 15 {
		return fmt.Errorf("db must be 0-15, got %d", c.DB)
	}
	return nil
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
}
