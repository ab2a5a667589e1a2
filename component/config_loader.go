package component

// ConfigLoader gives components read access to configuration without
// binding them to a concrete configuration framework.
type ConfigLoader interface {
	// Get returns the raw value for a dot-separated key, such as
	// "cache.expirations.short".
	Get(key string) interface{}

	// Unmarshal decodes the configuration section under key into v:
	//
	//	var cfg cache.Config
	//	if err := loader.Unmarshal("cache", &cfg); err != nil { ... }
	Unmarshal(key string, v interface{}) error

	// GetString returns a string value.
	GetString(key string) string

	// GetInt returns an integer value.
	GetInt(key string) int

	// GetBool returns a boolean value.
	GetBool(key string) bool

	// IsSet reports whether the key is present in any source.
	IsSet(key string) bool
}
