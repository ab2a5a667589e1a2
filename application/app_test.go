package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CleanExpo/zenith-cache/cache"
	"github.com/CleanExpo/zenith-cache/component"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestApp_MemoryCacheLifecycle(t *testing.T) {
	path := writeConfig(t, `
cache:
  enabled: true
  store: memory
  expirations:
    short: 30s
logger:
  level: debug
`)

	app := New(
		WithName("test-app"),
		WithConfigPath(path),
	)
	ctx := context.Background()

	if err := app.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Shutdown(ctx)

	if app.State() != StateRunning {
		t.Errorf("State() = %v, want Running", app.State())
	}

	cacheComp := app.Cache()
	cfg := cacheComp.GetConfig()
	if cfg.Expirations.Short != 30*time.Second {
		t.Errorf("Short = %v, want 30s from config file", cfg.Expirations.Short)
	}

	admin := cacheComp.GetAdmin()
	if admin == nil {
		t.Fatal("GetAdmin() = nil")
	}
	store := cacheComp.GetStore()
	if err := store.Set(ctx, "teams:1", []byte("v"), time.Minute, "teams"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	snap, err := admin.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if snap.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", snap.TotalEntries)
	}

	if !app.IsHealthy(ctx) {
		t.Errorf("IsHealthy() = false, failures: %v", app.HealthCheck(ctx))
	}
}

func TestApp_ShutdownStopsComponents(t *testing.T) {
	path := writeConfig(t, `
cache:
  enabled: true
  store: memory
`)

	app := New(WithConfigPath(path))
	ctx := context.Background()

	if err := app.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if app.State() != StateStopped {
		t.Errorf("State() = %v, want Stopped", app.State())
	}
	if app.Cache().GetAdmin() != nil {
		t.Error("cache admin should be released after shutdown")
	}
}

func TestApp_OnReadyCallback(t *testing.T) {
	path := writeConfig(t, `
cache:
  enabled: true
  store: memory
`)

	called := false
	app := New(
		WithConfigPath(path),
		WithOnReady(func(a *App) error {
			called = true
			return nil
		}),
	)
	ctx := context.Background()

	if err := app.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Shutdown(ctx)

	if !called {
		t.Error("ready callback not invoked")
	}
}

func TestApp_MissingConfigFileUsesDefaults(t *testing.T) {
	app := New(WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")))
	ctx := context.Background()

	if err := app.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer app.Shutdown(ctx)

	cfg := app.Cache().GetConfig()
	if cfg.Enabled {
		t.Error("cache should default to disabled without configuration")
	}
	if cfg.Store != cache.StoreMemory {
		t.Errorf("Store = %q, want memory default", cfg.Store)
	}
}

func TestConfigComponent_Loader(t *testing.T) {
	path := writeConfig(t, `
cache:
  store: redis
`)
	c := NewConfigComponent(path, "")
	ctx := context.Background()

	if c.Name() != component.ComponentConfig {
		t.Errorf("Name() = %q", c.Name())
	}
	if err := c.Init(ctx, nil); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got := c.GetString("cache.store"); got != "redis" {
		t.Errorf("GetString(cache.store) = %q, want redis", got)
	}
	if !c.IsSet("cache") {
		t.Error("IsSet(cache) = false")
	}
	if c.IsSet("nothing") {
		t.Error("IsSet(nothing) = true")
	}
}
