package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CleanExpo/zenith-cache/logger"
)

type project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestAccessor_SetGet(t *testing.T) {
	store := newTestMemoryStore()
	defer store.Close()
	ctx := context.Background()

	acc := NewAccessor[project](store, PrefixResearchProjects, time.Minute,
		WithAccessorLogger[project](logger.NewNopLogger()))

	t.Run("Miss before set", func(t *testing.T) {
		_, ok, err := acc.Get(ctx, "p1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok {
			t.Error("Get() ok = true, want miss")
		}
	})

	t.Run("Round trip", func(t *testing.T) {
		want := project{ID: "p1", Name: "Coral Survey"}
		if err := acc.Set(ctx, "p1", want); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, ok, err := acc.Get(ctx, "p1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !ok {
			t.Fatal("Get() ok = false, want hit")
		}
		if got != want {
			t.Errorf("Get() = %+v, want %+v", got, want)
		}
	})

	t.Run("Domain tag attached", func(t *testing.T) {
		keys, err := store.KeysForTag(ctx, PrefixResearchProjects.Tag())
		if err != nil {
			t.Fatalf("KeysForTag() error = %v", err)
		}
		if len(keys) != 1 || keys[0] != "research_projects:p1" {
			t.Errorf("KeysForTag() = %v, want [research_projects:p1]", keys)
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		if err := acc.Invalidate(ctx, "p1"); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
		if _, ok, _ := acc.Get(ctx, "p1"); ok {
			t.Error("Get() ok = true after invalidate, want miss")
		}
	})
}

func TestAccessor_ExtraTags(t *testing.T) {
	store := newTestMemoryStore()
	defer store.Close()
	ctx := context.Background()

	acc := NewAccessor[project](store, PrefixTeams, time.Minute,
		WithTags[project]("team-42"),
		WithAccessorLogger[project](logger.NewNopLogger()))

	acc.Set(ctx, "roster", project{ID: "t", Name: "Roster"})

	for _, tag := range []string{PrefixTeams.Tag(), "team-42"} {
		keys, _ := store.KeysForTag(ctx, tag)
		if len(keys) != 1 {
			t.Errorf("KeysForTag(%s) = %v, want one key", tag, keys)
		}
	}
}

func TestAccessor_CorruptEntry(t *testing.T) {
	store := newTestMemoryStore()
	defer store.Close()
	ctx := context.Background()

	log, logs := logger.NewTestLogger()
	acc := NewAccessor[project](store, PrefixAnalytics, time.Minute,
		WithAccessorLogger[project](log))

	// Plant bytes that cannot decode into the value type.
	key := PrefixAnalytics.Key("weekly")
	store.Set(ctx, key, []byte("not-json"), time.Minute)

	_, ok, err := acc.Get(ctx, "weekly")
	if err != nil {
		t.Fatalf("Get() error = %v, corrupt entries must read as misses", err)
	}
	if ok {
		t.Error("Get() ok = true, want miss for corrupt entry")
	}
	if logs.FilterMessage("dropping undecodable cache entry").Len() != 1 {
		t.Error("expected one warning about the dropped entry")
	}
	// The corrupt entry is gone.
	if _, err := store.Get(ctx, key); err == nil {
		t.Error("corrupt entry should have been deleted")
	}
}

func TestAccessor_GetOrLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads once then hits", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		acc := NewAccessor[project](store, PrefixResearchProjects, time.Minute,
			WithAccessorLogger[project](logger.NewNopLogger()))

		var calls int32
		load := func(ctx context.Context) (project, error) {
			atomic.AddInt32(&calls, 1)
			return project{ID: "p9", Name: "Loaded"}, nil
		}

		for i := 0; i < 3; i++ {
			got, err := acc.GetOrLoad(ctx, "p9", load)
			if err != nil {
				t.Fatalf("GetOrLoad() error = %v", err)
			}
			if got.Name != "Loaded" {
				t.Errorf("GetOrLoad() = %+v", got)
			}
		}
		if n := atomic.LoadInt32(&calls); n != 1 {
			t.Errorf("load called %d times, want 1", n)
		}
	})

	t.Run("Concurrent misses collapse", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		acc := NewAccessor[project](store, PrefixResearchProjects, time.Minute,
			WithAccessorLogger[project](logger.NewNopLogger()))

		var calls int32
		release := make(chan struct{})
		load := func(ctx context.Context) (project, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return project{ID: "c", Name: "Shared"}, nil
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := acc.GetOrLoad(ctx, "c", load); err != nil {
					t.Errorf("GetOrLoad() error = %v", err)
				}
			}()
		}
		close(start)
		// Give the flights time to pile onto the same key.
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		if n := atomic.LoadInt32(&calls); n != 1 {
			t.Errorf("load called %d times, want 1", n)
		}
	})

	t.Run("Load error propagates and caches nothing", func(t *testing.T) {
		store := newTestMemoryStore()
		defer store.Close()
		acc := NewAccessor[project](store, PrefixResearchProjects, time.Minute,
			WithAccessorLogger[project](logger.NewNopLogger()))

		wantErr := fmt.Errorf("upstream down")
		_, err := acc.GetOrLoad(ctx, "bad", func(ctx context.Context) (project, error) {
			return project{}, wantErr
		})
		if err == nil {
			t.Fatal("GetOrLoad() error = nil, want load error")
		}
		if _, ok, _ := acc.Get(ctx, "bad"); ok {
			t.Error("failed load must not populate the cache")
		}
	})
}
