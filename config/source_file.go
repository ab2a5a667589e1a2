package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// FileSource loads a configuration file (yaml, json, toml per extension).
// A missing file yields an empty configuration, not an error, so optional
// overlay files (dev.yaml, local.yaml) can be declared unconditionally.
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a file source.
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Priority returns the source priority.
func (s *FileSource) Priority() int {
	return s.priority
}

// Path returns the configured file path.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and flattens the file.
func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}

	return flattenMap("", v.AllSettings()), nil
}

// flattenMap converts nested maps to dot-separated keys:
// {"cache": {"store": "memory"}} -> {"cache.store": "memory"}.
func flattenMap(prefix string, data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			for nk, nv := range flattenMap(fullKey, v) {
				result[nk] = nv
			}
		default:
			result[fullKey] = value
		}
	}
	return result
}
