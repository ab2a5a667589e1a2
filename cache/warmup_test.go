package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CleanExpo/zenith-cache/logger"
)

func TestWarmer_Warm(t *testing.T) {
	ctx := context.Background()

	t.Run("All succeed", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		warmer := NewWarmer(store, logger.NewNopLogger())

		entries := []WarmupEntry{
			{Key: "teams:1", Fetch: fetchValue("alpha")},
			{Key: "teams:2", Fetch: fetchValue("beta")},
			{Key: "teams:3", Fetch: fetchValue("gamma")},
		}
		report := warmer.Warm(ctx, entries, WarmupOptions{
			TTL:  time.Minute,
			Tags: []string{"teams"},
		})

		if report.Attempted != 3 || report.Succeeded != 3 || report.Failed != 0 {
			t.Errorf("report = %d/%d/%d, want 3/3/0",
				report.Attempted, report.Succeeded, report.Failed)
		}
		for _, key := range []string{"teams:1", "teams:2", "teams:3"} {
			if _, err := store.Get(ctx, key); err != nil {
				t.Errorf("Get(%s) error = %v, want warmed entry", key, err)
			}
		}
		keys, _ := store.KeysForTag(ctx, "teams")
		if len(keys) != 3 {
			t.Errorf("KeysForTag(teams) = %v, want 3 keys", keys)
		}
	})

	t.Run("One failure leaves siblings warmed", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		log, logs := logger.NewTestLogger()
		warmer := NewWarmer(store, log)

		entries := []WarmupEntry{
			{Key: "k1", Fetch: fetchValue("one")},
			{Key: "k2", Fetch: func(ctx context.Context) (any, error) {
				return nil, fmt.Errorf("upstream rejected")
			}},
			{Key: "k3", Fetch: fetchValue("three")},
		}
		report := warmer.Warm(ctx, entries, WarmupOptions{TTL: time.Minute})

		if report.Succeeded != 2 || report.Failed != 1 {
			t.Errorf("report = %d succeeded / %d failed, want 2/1",
				report.Succeeded, report.Failed)
		}
		if report.Results[1].Key != "k2" || report.Results[1].Err == nil {
			t.Errorf("Results[1] = %+v, want k2 failure", report.Results[1])
		}

		if _, err := store.Get(ctx, "k1"); err != nil {
			t.Errorf("Get(k1) error = %v, want warmed entry", err)
		}
		if _, err := store.Get(ctx, "k2"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get(k2) error = %v, want ErrCacheMiss", err)
		}
		if _, err := store.Get(ctx, "k3"); err != nil {
			t.Errorf("Get(k3) error = %v, want warmed entry", err)
		}
		if logs.FilterMessage("warmup entry failed").Len() != 1 {
			t.Error("expected one warning for the failed entry")
		}
	})

	t.Run("Concurrency bound respected", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		warmer := NewWarmer(store, logger.NewNopLogger())

		var inflight, peak int32
		entries := make([]WarmupEntry, 8)
		for i := range entries {
			entries[i] = WarmupEntry{
				Key: fmt.Sprintf("k%d", i),
				Fetch: func(ctx context.Context) (any, error) {
					n := atomic.AddInt32(&inflight, 1)
					for {
						p := atomic.LoadInt32(&peak)
						if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					atomic.AddInt32(&inflight, -1)
					return "v", nil
				},
			}
		}
		report := warmer.Warm(ctx, entries, WarmupOptions{
			TTL:         time.Minute,
			Concurrency: 2,
		})

		if report.Succeeded != 8 {
			t.Errorf("Succeeded = %d, want 8", report.Succeeded)
		}
		if p := atomic.LoadInt32(&peak); p > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", p)
		}
	})

	t.Run("Entry timeout bounds a hung fetch", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		warmer := NewWarmer(store, logger.NewNopLogger())

		entries := []WarmupEntry{
			{Key: "hung", Fetch: func(ctx context.Context) (any, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return "too late", nil
				}
			}},
			{Key: "fast", Fetch: fetchValue("ok")},
		}
		report := warmer.Warm(ctx, entries, WarmupOptions{
			TTL:          time.Minute,
			EntryTimeout: 30 * time.Millisecond,
		})

		if report.Succeeded != 1 || report.Failed != 1 {
			t.Errorf("report = %d/%d, want 1 succeeded 1 failed",
				report.Succeeded, report.Failed)
		}
		if !errors.Is(report.Results[0].Err, context.DeadlineExceeded) {
			t.Errorf("Results[0].Err = %v, want deadline exceeded", report.Results[0].Err)
		}
	})

	t.Run("Empty entry list", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		warmer := NewWarmer(store, logger.NewNopLogger())

		report := warmer.Warm(ctx, nil, WarmupOptions{TTL: time.Minute})
		if report.Attempted != 0 || report.Succeeded != 0 || report.Failed != 0 {
			t.Errorf("report = %+v, want all zero", report)
		}
	})
}

func fetchValue(v string) FetchFunc {
	return func(ctx context.Context) (any, error) {
		return v, nil
	}
}
