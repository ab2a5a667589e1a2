package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/logger"
)

// UnsubscribeFunc removes the subscription it was returned for.
type UnsubscribeFunc func()

// Dispatcher delivers events to subscribed listeners.
type Dispatcher interface {
	// Subscribe registers a listener for an event name and returns the
	// matching unsubscribe function.
	Subscribe(eventName string, listener Listener) UnsubscribeFunc

	// Dispatch delivers the event to listeners in subscription order and
	// stops at the first error.
	Dispatch(ctx context.Context, event Event) error

	// DispatchAsync delivers the event on the worker pool without
	// waiting; listener errors are logged, never returned.
	DispatchAsync(ctx context.Context, event Event)
}

type listenerEntry struct {
	id       uint64
	listener Listener
}

type dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	nextID    uint64
	pool      *ants.Pool
	poolSize  int
	log       *logger.CtxZapLogger
	closed    int32
}

// DispatcherOption configures a dispatcher.
type DispatcherOption func(*dispatcher)

// WithPoolSize sets the async worker pool size (default 32).
func WithPoolSize(size int) DispatcherOption {
	return func(d *dispatcher) {
		if size > 0 {
			d.poolSize = size
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(log *logger.CtxZapLogger) DispatcherOption {
	return func(d *dispatcher) {
		d.log = log
	}
}

// NewDispatcher creates a dispatcher with an ants worker pool for async
// delivery.
func NewDispatcher(opts ...DispatcherOption) *dispatcher {
	d := &dispatcher{
		listeners: make(map[string][]listenerEntry),
		poolSize:  32,
		log:       logger.GetLogger("event"),
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	d.pool, err = ants.NewPool(d.poolSize)
	if err != nil {
		d.log.Error("failed to create worker pool, using fallback size", zap.Error(err))
		d.pool, _ = ants.NewPool(32)
	}
	return d
}

// Subscribe registers a listener.
func (d *dispatcher) Subscribe(eventName string, listener Listener) UnsubscribeFunc {
	if eventName == "" || listener == nil {
		return func() {}
	}

	entry := listenerEntry{
		id:       atomic.AddUint64(&d.nextID, 1),
		listener: listener,
	}

	d.mu.Lock()
	d.listeners[eventName] = append(d.listeners[eventName], entry)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		entries := d.listeners[eventName]
		for i, e := range entries {
			if e.id == entry.id {
				d.listeners[eventName] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(d.listeners[eventName]) == 0 {
			delete(d.listeners, eventName)
		}
	}
}

// Dispatch delivers synchronously.
func (d *dispatcher) Dispatch(ctx context.Context, event Event) error {
	if atomic.LoadInt32(&d.closed) == 1 {
		return ErrDispatcherClosed
	}
	if event == nil {
		return nil
	}

	for _, entry := range d.snapshot(event.Name()) {
		if err := entry.listener.Handle(ctx, event); err != nil {
			if errors.Is(err, ErrStopPropagation) {
				return nil
			}
			return err
		}
	}
	return nil
}

// DispatchAsync delivers on the pool.
func (d *dispatcher) DispatchAsync(ctx context.Context, event Event) {
	if atomic.LoadInt32(&d.closed) == 1 || event == nil {
		return
	}

	entries := d.snapshot(event.Name())
	for _, entry := range entries {
		entry := entry
		submitErr := d.pool.Submit(func() {
			if err := entry.listener.Handle(ctx, event); err != nil && !errors.Is(err, ErrStopPropagation) {
				d.log.WarnCtx(ctx, "async listener failed",
					zap.String("event", event.Name()),
					zap.Error(err),
				)
			}
		})
		if submitErr != nil {
			d.log.WarnCtx(ctx, "failed to submit listener to pool",
				zap.String("event", event.Name()),
				zap.Error(submitErr),
			)
		}
	}
}

// Close stops the dispatcher and releases the pool.
func (d *dispatcher) Close() {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return
	}
	d.pool.Release()
}

func (d *dispatcher) snapshot(eventName string) []listenerEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := d.listeners[eventName]
	out := make([]listenerEntry, len(entries))
	copy(out, entries)
	return out
}
