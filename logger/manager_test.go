package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestManagerConfig_ApplyDefaults(t *testing.T) {
	cfg := ManagerConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "trace_id", cfg.TraceIDFieldName)
	assert.Equal(t, 100, cfg.MaxSize)
}

func TestManager_GetLogger_CachesPerModule(t *testing.T) {
	m := NewManager(ManagerConfig{EnableConsole: false, EnableFile: false})

	a := m.GetLogger("cache")
	b := m.GetLogger("cache")
	c := m.GetLogger("redis")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "cache", a.Module())
}

func TestManager_FileLogger_WritesToConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{
		BaseLogDir:    dir,
		EnableFile:    true,
		EnableConsole: false,
	})

	l := m.GetLogger("cache")
	l.Info("warmup complete", zap.Int("entries", 3))
	m.Sync()

	assert.FileExists(t, filepath.Join(dir, "cache.log"))
	assert.NoError(t, m.Close())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "info", ParseLevel("unknown").String())
}

func TestTestLogger_RecordsEntries(t *testing.T) {
	log, logs := NewTestLogger()

	log.Info("cache hit", zap.String("key", "teams:list"))
	log.Warn("cache set failed")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("cache hit").Len())
}
