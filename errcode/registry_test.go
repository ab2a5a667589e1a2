package errcode

import "testing"

func TestRegistry_RegisterAndConflict(t *testing.T) {
	r := &Registry{codes: make(map[int]string)}

	err := New(70, 1, "cache", "error.cache.miss", "cache miss")
	r.Register(err)

	// Idempotent re-registration of the same code/key.
	r.Register(err)
	if r.Count() != 1 {
		t.Errorf("expected 1 registered code, got %d", r.Count())
	}

	// Same code, different key must panic.
	defer func() {
		if recover() == nil {
			t.Error("expected panic on conflicting registration")
		}
	}()
	r.Register(New(70, 1, "cache", "error.cache.other", "other"))
}

func TestRegistry_Lock(t *testing.T) {
	r := &Registry{codes: make(map[int]string)}
	r.Lock()

	if !r.IsLocked() {
		t.Error("expected registry to be locked")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on registering into a locked registry")
		}
	}()
	r.Register(New(70, 2, "cache", "error.cache.store", "store failed"))
}

func TestRegistry_Clear(t *testing.T) {
	r := &Registry{codes: make(map[int]string)}
	r.Register(New(70, 3, "cache", "error.cache.ttl", "invalid ttl"))
	r.Lock()

	r.Clear()
	if r.Count() != 0 {
		t.Errorf("expected empty registry, got %d", r.Count())
	}
	if r.IsLocked() {
		t.Error("clear should unlock the registry")
	}
}
