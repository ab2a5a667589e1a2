package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_FileSource(t *testing.T) {
	path := writeConfigFile(t, "app.yaml", `
cache:
  enabled: true
  store: memory
  expirations:
    short: 60s
    medium: 300s
`)

	loader, err := NewLoaderFromFile(path, "")
	require.NoError(t, err)

	assert.True(t, loader.GetBool("cache.enabled"))
	assert.Equal(t, "memory", loader.GetString("cache.store"))
	assert.True(t, loader.IsSet("cache.expirations"))
	assert.False(t, loader.IsSet("cache.redis"))
}

func TestLoader_Unmarshal_Durations(t *testing.T) {
	path := writeConfigFile(t, "app.yaml", `
cache:
  expirations:
    short: 45s
    long: 1h
`)

	loader, err := NewLoaderFromFile(path, "")
	require.NoError(t, err)

	var out struct {
		Expirations struct {
			Short time.Duration `mapstructure:"short"`
			Long  time.Duration `mapstructure:"long"`
		} `mapstructure:"expirations"`
	}
	require.NoError(t, loader.Unmarshal("cache", &out))
	assert.Equal(t, 45*time.Second, out.Expirations.Short)
	assert.Equal(t, time.Hour, out.Expirations.Long)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "app.yaml", "cache:\n  store: memory\n")
	t.Setenv("ZENITHTEST_CACHE_STORE", "redis")

	loader, err := NewLoaderFromFile(path, "ZENITHTEST")
	require.NoError(t, err)

	assert.Equal(t, "redis", loader.GetString("cache.store"))
}

func TestLoader_MissingFileIsEmpty(t *testing.T) {
	loader, err := NewLoaderFromFile(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)
	assert.False(t, loader.IsSet("cache"))
}

func TestLoader_PriorityOrdering(t *testing.T) {
	base := writeConfigFile(t, "base.yaml", "cache:\n  store: memory\n  enabled: true\n")
	overlay := writeConfigFile(t, "overlay.yaml", "cache:\n  store: redis\n")

	l := NewLoader()
	l.AddSource(NewFileSource(base, 10))
	l.AddSource(NewFileSource(overlay, 20))
	require.NoError(t, l.Load())

	assert.Equal(t, "redis", l.GetString("cache.store"))
	assert.True(t, l.GetBool("cache.enabled"))
}
