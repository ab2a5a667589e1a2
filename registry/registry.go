// Package registry implements the component registry: components are
// registered by name, resolved into dependency layers and driven through
// Init/Start/Stop. Components inside one layer run concurrently.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/logger"
)

const optionalPrefix = "optional:"

// Registry implements component.Registry.
type Registry struct {
	mu         sync.RWMutex
	components map[string]component.Component
	logger     *logger.CtxZapLogger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]component.Component),
	}
}

// SetLogger attaches a logger. May only be called once; without one the
// registry stays silent.
func (r *Registry) SetLogger(l *logger.CtxZapLogger) {
	if r.logger != nil {
		panic("registry logger already set")
	}
	if l == nil {
		panic("registry logger cannot be nil")
	}
	r.logger = l
}

// Register adds a component. Duplicate or empty names are errors.
func (r *Registry) Register(comp component.Component) error {
	if comp == nil {
		return fmt.Errorf("component cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := comp.Name()
	if name == "" {
		return fmt.Errorf("component name cannot be empty")
	}
	if _, exists := r.components[name]; exists {
		return fmt.Errorf("component %q already registered", name)
	}

	r.components[name] = comp
	return nil
}

// MustRegister registers a component and panics on failure. Used for
// core components where a registration failure is a programming error.
func (r *Registry) MustRegister(comp component.Component) {
	if err := r.Register(comp); err != nil {
		panic(fmt.Sprintf("register component %q: %v", comp.Name(), err))
	}
}

// Get returns a registered component by name.
func (r *Registry) Get(name string) (component.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.components[name]
	return comp, ok
}

// MustGet returns a component or panics when it is missing.
func (r *Registry) MustGet(name string) component.Component {
	comp, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("component %q not registered", name))
	}
	return comp
}

// Has reports whether a component is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.components[name]
	return exists
}

// GetTyped returns a component cast to its concrete type. The second
// return is false when the component is missing or of another type.
func GetTyped[T component.Component](r *Registry, name string) (T, bool) {
	var zero T
	comp, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	typed, ok := comp.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// MustGetTyped returns a typed component or panics.
func MustGetTyped[T component.Component](r *Registry, name string) T {
	typed, ok := GetTyped[T](r, name)
	if !ok {
		var zero T
		panic(fmt.Sprintf("component %q missing or not %T", name, zero))
	}
	return typed
}

// Resolve returns components in topological order.
func (r *Registry) Resolve() ([]component.Component, error) {
	layers, err := r.resolveLayers()
	if err != nil {
		return nil, err
	}
	var result []component.Component
	for _, layer := range layers {
		result = append(result, layer...)
	}
	return result, nil
}

// Init initializes all components in dependency order. The config
// component must be registered; it is handed to every Init as the
// ConfigLoader.
func (r *Registry) Init(ctx context.Context) error {
	r.logInfo(ctx, "initializing components", zap.Int("total", len(r.components)))

	configComp, ok := r.Get(component.ComponentConfig)
	if !ok {
		return fmt.Errorf("config component not registered")
	}
	loader, ok := configComp.(component.ConfigLoader)
	if !ok {
		return fmt.Errorf("config component does not implement ConfigLoader")
	}

	layers, err := r.resolveLayers()
	if err != nil {
		r.logError(ctx, "dependency resolution failed", zap.Error(err))
		return err
	}

	for idx, layer := range layers {
		r.logDebug(ctx, "initializing layer",
			zap.Int("layer", idx),
			zap.Int("count", len(layer)))
		if err := r.runLayer(layer, func(c component.Component) error {
			return c.Init(ctx, loader)
		}); err != nil {
			r.logError(ctx, "component init failed", zap.Error(err))
			return err
		}
	}

	r.logInfo(ctx, "all components initialized")
	return nil
}

// Start starts all components in dependency order.
func (r *Registry) Start(ctx context.Context) error {
	layers, err := r.resolveLayers()
	if err != nil {
		return err
	}

	for idx, layer := range layers {
		r.logDebug(ctx, "starting layer",
			zap.Int("layer", idx),
			zap.Int("count", len(layer)))
		if err := r.runLayer(layer, func(c component.Component) error {
			return c.Start(ctx)
		}); err != nil {
			r.logError(ctx, "component start failed", zap.Error(err))
			return err
		}
	}

	r.logInfo(ctx, "all components started")
	return nil
}

// Stop stops all components layer by layer in reverse order. Errors are
// ignored so every component gets a chance to shut down.
func (r *Registry) Stop(ctx context.Context) error {
	layers, err := r.resolveLayers()
	if err != nil {
		return err
	}

	for i := len(layers) - 1; i >= 0; i-- {
		r.stopLayer(ctx, layers[i])
	}

	r.logInfo(ctx, "all components stopped")
	return nil
}

// runLayer runs fn over one layer, concurrently when the layer holds
// more than one component. The first error wins.
func (r *Registry) runLayer(layer []component.Component, fn func(component.Component) error) error {
	if len(layer) == 0 {
		return nil
	}
	if len(layer) == 1 {
		comp := layer[0]
		if err := fn(comp); err != nil {
			return fmt.Errorf("component %q: %w", comp.Name(), err)
		}
		return nil
	}

	type result struct {
		comp component.Component
		err  error
	}
	results := make(chan result, len(layer))
	for _, comp := range layer {
		go func(c component.Component) {
			results <- result{comp: c, err: fn(c)}
		}(comp)
	}

	var firstErr error
	for range layer {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("component %q: %w", res.comp.Name(), res.err)
		}
	}
	return firstErr
}

func (r *Registry) stopLayer(ctx context.Context, layer []component.Component) {
	var wg sync.WaitGroup
	for _, comp := range layer {
		wg.Add(1)
		go func(c component.Component) {
			defer wg.Done()
			if err := c.Stop(ctx); err != nil {
				r.logWarn(ctx, "component stop failed",
					zap.String("component", c.Name()),
					zap.Error(err))
			}
		}(comp)
	}
	wg.Wait()
}

// resolveLayers groups components into dependency layers via Kahn's
// algorithm. A dependency declared with the "optional:" prefix is
// skipped when unregistered; a missing hard dependency is an error.
func (r *Registry) resolveLayers() ([][]component.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inDegree := make(map[string]int, len(r.components))
	graph := make(map[string][]string, len(r.components))
	for name := range r.components {
		inDegree[name] = 0
	}

	for name, comp := range r.components {
		for _, dep := range comp.DependsOn() {
			depName, optional := strings.CutPrefix(dep, optionalPrefix)
			if _, ok := r.components[depName]; !ok {
				if optional {
					continue
				}
				return nil, fmt.Errorf("component %q depends on unregistered %q", name, depName)
			}
			graph[depName] = append(graph[depName], name)
			inDegree[name]++
		}
	}

	var layers [][]component.Component
	processed := make(map[string]bool, len(r.components))

	for len(processed) < len(r.components) {
		var current []string
		for name, degree := range inDegree {
			if !processed[name] && degree == 0 {
				current = append(current, name)
				processed[name] = true
			}
		}
		if len(current) == 0 {
			return nil, fmt.Errorf("dependency cycle detected")
		}

		layer := make([]component.Component, 0, len(current))
		for _, name := range current {
			layer = append(layer, r.components[name])
			for _, next := range graph[name] {
				inDegree[next]--
			}
		}
		layers = append(layers, layer)
	}

	return layers, nil
}

func (r *Registry) logInfo(ctx context.Context, msg string, fields ...zap.Field) {
	if r.logger != nil {
		r.logger.InfoCtx(ctx, msg, fields...)
	}
}

func (r *Registry) logDebug(ctx context.Context, msg string, fields ...zap.Field) {
	if r.logger != nil {
		r.logger.DebugCtx(ctx, msg, fields...)
	}
}

func (r *Registry) logWarn(ctx context.Context, msg string, fields ...zap.Field) {
	if r.logger != nil {
		r.logger.WarnCtx(ctx, msg, fields...)
	}
}

func (r *Registry) logError(ctx context.Context, msg string, fields ...zap.Field) {
	if r.logger != nil {
		r.logger.ErrorCtx(ctx, msg, fields...)
	}
}
