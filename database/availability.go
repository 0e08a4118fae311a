package database

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"warden/events"
)

// Availability is the observable connectivity state of the document store. It is
// mutated only by this package (dial outcome, operation outcomes, the supervisor)
// and handed to consumers by reference; transitions are published on the event bus.
type Availability struct {
	mu        sync.RWMutex
	available bool
	bus       *events.Bus
}

// NewAvailability returns an Availability that starts unavailable.
func NewAvailability(bus *events.Bus) *Availability {
	return &Availability{bus: bus}
}

// Available reports the last observed connectivity state.
func (a *Availability) Available() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.available
}

// set records a new state and publishes an event when the state actually changed.
func (a *Availability) set(available bool, reason string) {
	a.mu.Lock()
	changed := a.available != available
	a.available = available
	a.mu.Unlock()

	if !changed {
		return
	}

	if available {
		log.WithField("reason", reason).Info("Document store available")
	} else {
		log.WithField("reason", reason).Warn("Document store unavailable, serving from snapshot")
	}

	if a.bus != nil {
		a.bus.Publish(context.Background(), events.StoreStatusChangedEvent{
			Available: available,
			Reason:    reason,
		})
	}
}
