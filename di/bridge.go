package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/CleanExpo/zenith-cache/component"
)

// Bridge exposes lifecycle registry components to the samber/do
// injector, so code written against the injector can consume components
// the registry initialized.
type Bridge struct {
	registry component.Registry
	injector *do.RootScope
}

// NewBridge creates a bridge over an initialized registry.
func NewBridge(registry component.Registry, injector *do.RootScope) *Bridge {
	return &Bridge{
		registry: registry,
		injector: injector,
	}
}

// Registry returns the underlying registry.
func (b *Bridge) Registry() component.Registry {
	return b.registry
}

// Injector returns the underlying injector.
func (b *Bridge) Injector() *do.RootScope {
	return b.injector
}

// ProvideFromRegistry exposes a registry component to the injector under
// its concrete type. Resolution is lazy; a missing or mistyped component
// surfaces when first invoked.
func ProvideFromRegistry[T component.Component](b *Bridge, name string) {
	do.Provide(b.injector, func(i do.Injector) (T, error) {
		comp, ok := b.registry.Get(name)
		if !ok {
			var zero T
			return zero, fmt.Errorf("component %q not registered", name)
		}
		typed, ok := comp.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("component %q is not %T", name, zero)
		}
		return typed, nil
	})
}

// ProvideValue registers a ready value with the injector.
func ProvideValue[T any](b *Bridge, value T) {
	do.ProvideValue(b.injector, value)
}

// Invoke resolves a service from the injector.
func Invoke[T any](b *Bridge) (T, error) {
	return do.Invoke[T](b.injector)
}

// MustInvoke resolves a service or panics.
func MustInvoke[T any](b *Bridge) T {
	return do.MustInvoke[T](b.injector)
}

// Shutdown closes the injector, releasing provider-owned services in
// reverse dependency order.
func (b *Bridge) Shutdown() error {
	return b.injector.Shutdown()
}

// ShutdownWithContext bounds Shutdown with a context.
func (b *Bridge) ShutdownWithContext(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- b.Shutdown()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
