package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeSettingsUpdated    EventType = "settings_updated"
	EventTypeStoreStatusChanged EventType = "store_status_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// SettingsUpdatedEvent is published after a guild configuration update has been
// written to the snapshot (and, when available, the document store).
type SettingsUpdatedEvent struct {
	GuildID       string
	Field         string
	DocumentStore bool // whether the document store accepted the write
}

func (e SettingsUpdatedEvent) Type() EventType {
	return EventTypeSettingsUpdated
}

// StoreStatusChangedEvent is published when the document store transitions between
// available and unavailable.
type StoreStatusChangedEvent struct {
	Available bool
	Reason    string
}

func (e StoreStatusChangedEvent) Type() EventType {
	return EventTypeStoreStatusChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Publish dispatches an event to all subscribed handlers synchronously, in
// subscription order.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
