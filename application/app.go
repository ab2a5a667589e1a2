// Package application assembles the component registry into a runnable
// process: config, logging, events, redis and the cache itself, wired in
// dependency order with graceful shutdown.
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/cache"
	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/event"
	"github.com/CleanExpo/zenith-cache/health"
	"github.com/CleanExpo/zenith-cache/logger"
	"github.com/CleanExpo/zenith-cache/redis"
	"github.com/CleanExpo/zenith-cache/registry"
)

// State tracks the application lifecycle.
type State int

const (
	StateInit State = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// App owns the registry and the core components.
type App struct {
	name       string
	configPath string
	envPrefix  string

	registry *registry.Registry
	logger   *logger.CtxZapLogger

	configComp *ConfigComponent
	loggerComp *LoggerComponent
	eventComp  *event.Component
	redisComp  *redis.Component
	cacheComp  *cache.Component

	mu      sync.RWMutex
	state   State
	onReady func(*App) error
}

// Option configures an App.
type Option func(*App)

// WithName sets the application name.
func WithName(name string) Option {
	return func(a *App) { a.name = name }
}

// WithConfigPath sets the configuration file path.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithEnvPrefix sets the environment variable override prefix.
func WithEnvPrefix(prefix string) Option {
	return func(a *App) { a.envPrefix = prefix }
}

// WithOnReady sets a callback invoked once all components are started.
func WithOnReady(fn func(*App) error) Option {
	return func(a *App) { a.onReady = fn }
}

// New creates an App with the core components registered.
func New(opts ...Option) *App {
	a := &App{
		name:       "zenith-cache",
		configPath: "configs/app.yaml",
		state:      StateInit,
		registry:   registry.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.configComp = NewConfigComponent(a.configPath, a.envPrefix)
	a.loggerComp = NewLoggerComponent()
	a.eventComp = event.NewComponent()
	a.redisComp = redis.NewComponent()
	a.cacheComp = cache.NewComponent()

	a.registry.MustRegister(a.configComp)
	a.registry.MustRegister(a.loggerComp)
	a.registry.MustRegister(a.eventComp)
	a.registry.MustRegister(a.redisComp)
	a.registry.MustRegister(a.cacheComp)

	return a
}

// Registry exposes the component registry for extra registrations before
// Setup.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Cache returns the cache component.
func (a *App) Cache() *cache.Component {
	return a.cacheComp
}

// Logger returns the application logger, or nil before Setup.
func (a *App) Logger() *logger.CtxZapLogger {
	return a.logger
}

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Setup initializes every component and wires cross-component
// references.
func (a *App) Setup(ctx context.Context) error {
	a.setState(StateSetup)

	if err := a.registry.Init(ctx); err != nil {
		return fmt.Errorf("init components: %w", err)
	}

	a.logger = logger.GetLogger("app")
	a.registry.SetLogger(a.logger)

	// The cache resolves its backing services after Init, once the
	// managers exist.
	a.cacheComp.SetRedisManager(a.redisComp.GetManager())
	if a.eventComp.IsEnabled() {
		a.cacheComp.SetEventDispatcher(a.eventComp.GetDispatcher())
	}

	return nil
}

// Start brings every component up in dependency order.
func (a *App) Start(ctx context.Context) error {
	if err := a.registry.Start(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	a.setState(StateRunning)
	a.logger.InfoCtx(ctx, "application started", zap.String("name", a.name))

	if a.onReady != nil {
		if err := a.onReady(a); err != nil {
			return fmt.Errorf("ready callback: %w", err)
		}
	}
	return nil
}

// Run sets up, starts and blocks until SIGINT or SIGTERM, then shuts
// down with a 30 second grace period.
func (a *App) Run() error {
	ctx := context.Background()
	if err := a.Setup(ctx); err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops all components in reverse dependency order.
func (a *App) Shutdown(ctx context.Context) error {
	a.setState(StateStopping)
	err := a.registry.Stop(ctx)
	a.setState(StateStopped)
	return err
}

// HealthCheck runs every component's health checker concurrently and
// returns the aggregated response.
func (a *App) HealthCheck(ctx context.Context) *health.Response {
	agg := health.NewAggregator(health.DefaultConfig().Timeout)
	agg.SetMetadata("app", a.name)
	agg.SetMetadata("state", a.State().String())
	order, err := a.registry.Resolve()
	if err != nil {
		resp := agg.Check(ctx)
		resp.Status = health.StatusUnhealthy
		resp.Checks["registry"] = health.CheckResult{Status: health.StatusUnhealthy, Error: err.Error()}
		return resp
	}
	for _, comp := range order {
		if provider, ok := comp.(component.HealthCheckProvider); ok {
			agg.Register(provider.GetHealthChecker())
		}
	}
	return agg.Check(ctx)
}

// IsHealthy reports whether every health check passed.
func (a *App) IsHealthy(ctx context.Context) bool {
	return a.HealthCheck(ctx).IsHealthy()
}
