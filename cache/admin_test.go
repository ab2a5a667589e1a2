package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/CleanExpo/zenith-cache/logger"
)

func newTestAdmin(t *testing.T) (*Admin, *MemoryStore) {
	t.Helper()
	store := newTestMemoryStore()
	t.Cleanup(func() { store.Close() })

	cfg := &Config{}
	cfg.ApplyDefaults()
	return NewAdmin(store, cfg, logger.NewNopLogger()), store
}

func TestAdmin_Stats(t *testing.T) {
	admin, store := newTestAdmin(t)
	ctx := context.Background()

	store.Set(ctx, "k1", []byte("aaaa"), time.Minute, "t1")
	store.Get(ctx, "k1")
	store.Get(ctx, "gone")

	snap, err := admin.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if snap.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", snap.TotalEntries)
	}
	if snap.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", snap.HitRate)
	}
}

func TestAdmin_ClearAll(t *testing.T) {
	admin, store := newTestAdmin(t)
	ctx := context.Background()

	store.Set(ctx, "k1", []byte("1"), time.Minute, "t")
	store.Set(ctx, "k2", []byte("2"), time.Minute, "t")

	if !admin.ClearAll(ctx) {
		t.Error("ClearAll() = false, want true")
	}
	if store.Size() != 0 {
		t.Errorf("Size() = %d, want 0", store.Size())
	}

	// Clearing an empty cache still succeeds.
	if !admin.ClearAll(ctx) {
		t.Error("ClearAll() on empty cache = false, want true")
	}
}

func TestAdmin_InvalidateByTags(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes tagged entries", func(t *testing.T) {
		admin, store := newTestAdmin(t)

		store.Set(ctx, "k1", []byte("1"), time.Minute, "team-42")
		store.Set(ctx, "k2", []byte("2"), time.Minute, "other")

		if !admin.InvalidateByTags(ctx, []string{"team-42"}) {
			t.Error("InvalidateByTags() = false, want true")
		}
		if _, err := store.Get(ctx, "k1"); err == nil {
			t.Error("k1 should be gone")
		}
		if _, err := store.Get(ctx, "k2"); err != nil {
			t.Errorf("Get(k2) error = %v, unrelated entries must survive", err)
		}
	})

	t.Run("Empty tag list is a no-op success", func(t *testing.T) {
		admin, store := newTestAdmin(t)
		store.Set(ctx, "k", []byte("v"), time.Minute, "t")

		if !admin.InvalidateByTags(ctx, nil) {
			t.Error("InvalidateByTags(nil) = false, want true")
		}
		if !admin.InvalidateByTags(ctx, []string{}) {
			t.Error("InvalidateByTags([]) = false, want true")
		}
		if _, err := store.Get(ctx, "k"); err != nil {
			t.Errorf("Get(k) error = %v, no-op must not remove entries", err)
		}
	})
}

func TestAdmin_Warmup(t *testing.T) {
	admin, store := newTestAdmin(t)
	ctx := context.Background()

	entries := []WarmupEntry{
		{Key: "analytics:daily", Fetch: fetchValue("report")},
		{Key: "analytics:weekly", Fetch: func(ctx context.Context) (any, error) {
			return nil, fmt.Errorf("source offline")
		}},
	}
	report := admin.Warmup(ctx, entries, ExpirationShort, WarmupOptions{})

	if report.Succeeded != 1 || report.Failed != 1 {
		t.Errorf("report = %d/%d, want 1 succeeded 1 failed",
			report.Succeeded, report.Failed)
	}
	if _, err := store.Get(ctx, "analytics:daily"); err != nil {
		t.Errorf("Get(analytics:daily) error = %v, want warmed entry", err)
	}
}

func TestAdmin_Expirations(t *testing.T) {
	admin, _ := newTestAdmin(t)

	exp := admin.Expirations()
	if exp.Short != time.Minute || exp.Medium != 5*time.Minute || exp.Long != time.Hour {
		t.Errorf("Expirations() = %+v, want defaults 1m/5m/1h", exp)
	}
}

func TestAdmin_ResetCounters(t *testing.T) {
	admin, store := newTestAdmin(t)
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Get(ctx, "k")
	admin.ResetCounters()

	snap, _ := admin.Stats(ctx)
	if snap.Hits != 0 {
		t.Errorf("Hits = %d, want 0 after reset", snap.Hits)
	}
}
