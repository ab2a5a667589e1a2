// Package config loads configuration from layered sources and exposes it
// through the component.ConfigLoader contract.
package config

// Source is one configuration data source (file, environment, ...).
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Priority orders sources; higher priority values override lower
	// ones. Convention: file 10, env 50.
	Priority() int

	// Load returns the source's data as a flat map with dot-separated
	// keys, such as "cache.expirations.short".
	Load() (map[string]interface{}, error)
}
