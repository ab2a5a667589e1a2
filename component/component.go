// Package component defines the component contract shared by every
// subsystem. It is the bottom layer of the dependency graph and must not
// import any other package in this module.
package component

import "context"

// Component is the unified lifecycle contract: Init -> Start -> Stop.
type Component interface {
	// Name is the unique component identifier, used in dependency
	// declarations and registry lookups.
	Name() string

	// DependsOn declares the components this one needs. The registry
	// topologically sorts on these names to decide initialization order.
	//
	// A plain name is a hard dependency; the "optional:" prefix marks a
	// soft one that is skipped when unregistered:
	//
	//	return []string{"config", "logger", "optional:redis"}
	DependsOn() []string

	// Init reads configuration through loader and creates resources.
	// It must not open outward-facing services.
	Init(ctx context.Context, loader ConfigLoader) error

	// Start makes the component operational: connect to backing services,
	// start background loops.
	Start(ctx context.Context) error

	// Stop releases resources. Must be idempotent.
	Stop(ctx context.Context) error
}

// HealthChecker is optionally implemented by components that can probe
// their own backing services.
type HealthChecker interface {
	// Check returns nil when healthy.
	Check(ctx context.Context) error

	// Name returns the check name, such as "cache" or "redis".
	Name() string
}

// HealthCheckProvider exposes a component's health checker.
type HealthCheckProvider interface {
	GetHealthChecker() HealthChecker
}

// Registry manages components and drives their lifecycle in dependency
// order.
type Registry interface {
	// Register adds a component. Duplicate or empty names are errors.
	Register(comp Component) error

	// Get returns a registered component by name.
	Get(name string) (Component, bool)

	// MustGet returns a component or panics when it is missing.
	MustGet(name string) Component

	// Has reports whether a component is registered.
	Has(name string) bool

	// Resolve returns components in topological order. Cycles and missing
	// hard dependencies are errors.
	Resolve() ([]Component, error)

	// Init initializes all components in dependency order.
	Init(ctx context.Context) error

	// Start starts all components in dependency order.
	Start(ctx context.Context) error

	// Stop stops all components in reverse order, ignoring per-component
	// errors so every component gets a chance to shut down.
	Stop(ctx context.Context) error
}
