// Package event provides a small in-process event dispatcher. The cache
// component subscribes to domain events to drive tag invalidation.
package event

import "time"

// Event is anything dispatchable. Name identifies the event type, such as
// "research_project.updated".
type Event interface {
	Name() string
}

// BaseEvent can be embedded by concrete events.
type BaseEvent struct {
	name       string
	occurredAt time.Time
}

// NewEvent creates a base event stamped with the current time.
func NewEvent(name string) BaseEvent {
	return BaseEvent{name: name, occurredAt: time.Now()}
}

// Name returns the event name.
func (e BaseEvent) Name() string {
	return e.name
}

// OccurredAt returns when the event was created.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}
