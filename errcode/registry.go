package errcode

import (
	"fmt"
	"sync"
)

// Registry tracks registered error codes and panics on conflicts, so two
// modules can never claim the same code with different meanings.
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool
}

var globalRegistry = &Registry{
	codes: make(map[int]string),
}

// Register records err in the global registry and returns it, so package
// level error variables can be declared as:
//
//	var ErrCacheMiss = errcode.Register(errcode.New(...))
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records the error code. Registering the same code with the same
// module and message key is idempotent; a different key panics.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("registry is locked, cannot register error code: %d", err.Code()))
	}

	code := err.Code()
	key := fmt.Sprintf("%s:%s", err.Module(), err.MsgKey())

	if existingKey, exists := r.codes[code]; exists {
		if existingKey != key {
			panic(fmt.Sprintf(
				"error code conflict: code %d is already registered as %s, cannot register as %s",
				code, existingKey, key,
			))
		}
		return err
	}

	r.codes[code] = key
	return err
}

// Lock prevents further registrations. Called once application wiring is
// complete to catch codes minted at runtime.
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// Unlock allows registrations again.
func (r *Registry) Unlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
}

// IsLocked reports whether the registry is locked.
func (r *Registry) IsLocked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Clear empties the registry. Test helper.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = make(map[int]string)
	r.locked = false
}

// LockGlobalRegistry locks the global registry.
func LockGlobalRegistry() {
	globalRegistry.Lock()
}

// UnlockGlobalRegistry unlocks the global registry.
func UnlockGlobalRegistry() {
	globalRegistry.Unlock()
}
