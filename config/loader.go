package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges layered sources into one view and implements
// component.ConfigLoader. Sources with higher priority override lower
// ones key by key.
type Loader struct {
	sources      []Source
	mergedConfig map[string]interface{}
	v            *viper.Viper
}

// NewLoader creates an empty loader; add sources, then call Load.
func NewLoader() *Loader {
	return &Loader{
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
	}
}

// NewLoaderFromFile is the common single-file setup with an optional
// environment override layer.
func NewLoaderFromFile(path, envPrefix string) (*Loader, error) {
	l := NewLoader()
	l.AddSource(NewFileSource(path, 10))
	if envPrefix != "" {
		l.AddSource(NewEnvSource(envPrefix, 50))
	}
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// AddSource registers a source. Call before Load.
func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// Load reads every source in priority order and merges the results.
func (l *Loader) Load() error {
	sort.Slice(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.mergedConfig = make(map[string]interface{})
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		for key, value := range data {
			l.mergedConfig[key] = value
		}
	}

	l.v = viper.New()
	for key, value := range l.mergedConfig {
		l.v.Set(key, value)
	}
	return nil
}

// Get returns the raw value for a dot-separated key.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a string value.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt returns an integer value.
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool returns a boolean value.
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet reports whether any source provided the key.
func (l *Loader) IsSet(key string) bool {
	if l.v.IsSet(key) {
		return true
	}
	// viper.IsSet does not see keys nested below a value set with Set,
	// so also check the flat merged view by prefix.
	prefix := key + "."
	for k := range l.mergedConfig {
		if k == key || strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Unmarshal decodes the section under key into v. Durations accept Go
// duration strings ("300s", "5m").
func (l *Loader) Unmarshal(key string, v interface{}) error {
	return l.v.UnmarshalKey(key, v)
}
