package config

import (
	"os"
	"strings"
)

// EnvSource loads configuration from environment variables carrying a
// common prefix: ZENITH_CACHE_STORE=redis becomes "cache.store" under
// prefix "ZENITH".
type EnvSource struct {
	prefix   string
	priority int
}

// NewEnvSource creates an environment source.
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority}
}

// Name returns the source name.
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority returns the source priority.
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load scans the environment for prefixed variables.
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], prefix) {
			continue
		}
		key := strings.TrimPrefix(parts[0], prefix)
		key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
		result[key] = parts[1]
	}
	return result, nil
}
