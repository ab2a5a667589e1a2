package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Expiration names a TTL tier. Magnitudes are configuration, not
// contract; the defaults are 60s / 300s / 3600s.
type Expiration string

const (
	ExpirationShort  Expiration = "short"
	ExpirationMedium Expiration = "medium"
	ExpirationLong   Expiration = "long"
)

// Store backend names.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ExpirationConfig holds the tier durations. Exposed read-only through
// the admin facade for display.
type ExpirationConfig struct {
	Short  time.Duration `mapstructure:"short" json:"short"`
	Medium time.Duration `mapstructure:"medium" json:"medium"`
	Long   time.Duration `mapstructure:"long" json:"long"`
}

// TTL resolves a tier to its duration, defaulting to the medium tier for
// unknown names.
func (e ExpirationConfig) TTL(tier Expiration) time.Duration {
	switch tier {
	case ExpirationShort:
		return e.Short
	case ExpirationLong:
		return e.Long
	default:
		return e.Medium
	}
}

// MemoryConfig configures the in-process store.
type MemoryConfig struct {
	// MaxEntries caps the entry count; 0 means the default (10000).
	MaxEntries int `mapstructure:"max_entries"`

	// CleanupInterval is the background expiry sweep period (default 1m).
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig selects the backing Redis instance for the redis store.
type RedisConfig struct {
	// Instance is the redis manager instance name (default "main").
	Instance string `mapstructure:"instance"`

	// KeyPrefix namespaces every key this store writes (default "zc:").
	KeyPrefix string `mapstructure:"key_prefix"`
}

// InvalidationRule maps a dispatched event name to the tags invalidated
// when it fires.
type InvalidationRule struct {
	Event string   `mapstructure:"event"`
	Tags  []string `mapstructure:"tags"`
}

// Config is the cache component configuration, read from the "cache"
// section.
type Config struct {
	// Enabled gates the whole component.
	Enabled bool `mapstructure:"enabled"`

	// Store selects the backend: "memory" or "redis".
	Store string `mapstructure:"store"`

	Memory MemoryConfig `mapstructure:"memory"`
	Redis  RedisConfig  `mapstructure:"redis"`

	// Expirations are the named TTL tiers.
	Expirations ExpirationConfig `mapstructure:"expirations"`

	// InvalidationRules wire dispatched events to tag invalidation.
	InvalidationRules []InvalidationRule `mapstructure:"invalidation_rules"`

	// WarmupConcurrency bounds parallel warmup fetches (default 4).
	WarmupConcurrency int `mapstructure:"warmup_concurrency"`
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.Memory.MaxEntries <= 0 {
		c.Memory.MaxEntries = 10000
	}
	if c.Memory.CleanupInterval <= 0 {
		c.Memory.CleanupInterval = time.Minute
	}
	if c.Redis.Instance == "" {
		c.Redis.Instance = "main"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "zc:"
	}
	if c.Expirations.Short <= 0 {
		c.Expirations.Short = time.Minute
	}
	if c.Expirations.Medium <= 0 {
		c.Expirations.Medium = 5 * time.Minute
	}
	if c.Expirations.Long <= 0 {
		c.Expirations.Long = time.Hour
	}
	if c.WarmupConcurrency <= 0 {
		c.WarmupConcurrency = 4
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Store, validation.Required, validation.In(StoreMemory, StoreRedis)),
		validation.Field(&c.WarmupConcurrency, validation.Min(1)),
	)
	if err != nil {
		return ErrConfigInvalid.Wrap(err)
	}

	for _, rule := range c.InvalidationRules {
		if err := validation.ValidateStruct(&rule,
			validation.Field(&rule.Event, validation.Required),
			validation.Field(&rule.Tags, validation.Required, validation.Length(1, 0)),
		); err != nil {
			return ErrConfigInvalid.Wrapf(err, "invalid invalidation rule for event %q", rule.Event)
		}
	}
	return nil
}
