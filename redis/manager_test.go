package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CleanExpo/zenith-cache/logger"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name:   "empty addr",
			config: Config{},
			errMsg: "addr cannot be empty",
		},
		{
			name:   "db out of range",
			config: Config{Addr: "localhost:6379", DB: 42},
			errMsg: "db must be 0-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Addr: "localhost:6379"}
	cfg.ApplyDefaults()

	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestNewManager_NilLogger(t *testing.T) {
	m, err := NewManager(map[string]Config{}, nil)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "logger cannot be nil")
}

func TestNewManager_WithMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	log := logger.NewNopLogger()

	m, err := NewManager(map[string]Config{
		"main": {Addr: mr.Addr()},
	}, log)
	require.NoError(t, err)
	defer m.Close()

	client := m.Client("main")
	require.NotNil(t, client)

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "probe", "ok", time.Minute).Err())
	val, err := client.Get(ctx, "probe").Result()
	require.NoError(t, err)
	assert.Equal(t, "ok", val)

	assert.Nil(t, m.Client("unknown"))
	assert.ElementsMatch(t, []string{"main"}, m.InstanceNames())
}

func TestNewManager_UnreachableInstance(t *testing.T) {
	log := logger.NewNopLogger()

	m, err := NewManager(map[string]Config{
		"main": {Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond},
	}, log)
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestHealthChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	log := logger.NewNopLogger()

	m, err := NewManager(map[string]Config{"main": {Addr: mr.Addr()}}, log)
	require.NoError(t, err)
	defer m.Close()

	hc := NewHealthChecker(m)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Check(context.Background()))

	mr.Close()
	assert.Error(t, hc.Check(context.Background()))
}
