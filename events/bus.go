package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/voicekit/logger"
)

// subscriberBuffer is the per-subscriber channel capacity. When a buffer
// fills, further events for that subscriber are dropped rather than
// blocking the publisher.
const subscriberBuffer = 64

// subscriber holds one subscription's channel and optional type filter.
type subscriber struct {
	id     string
	types  map[string]bool // empty means all types
	events chan Event
}

// Bus is an in-process lifecycle event bus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	log         *logger.Logger
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]*subscriber),
		log:         logger.Get("events"),
	}
}

// Subscribe registers a subscriber for the given event types (all types if
// none given). It returns the event channel and a cancel function that
// removes the subscription and closes the channel.
func (b *Bus) Subscribe(types ...string) (<-chan Event, func()) {
	sub := &subscriber{
		id:     uuid.NewString(),
		types:  make(map[string]bool, len(types)),
		events: make(chan Event, subscriberBuffer),
	}
	for _, t := range types {
		sub.types[t] = true
	}

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[sub.id]; ok {
			delete(b.subscribers, sub.id)
			close(sub.events)
		}
		b.mu.Unlock()
	}
	return sub.events, cancel
}

// Publish delivers an event to every matching subscriber. The event's ID
// and Time are filled in if unset.
func (b *Bus) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if len(sub.types) > 0 && !sub.types[ev.Type] {
			continue
		}
		select {
		case sub.events <- ev:
		default:
			b.log.Warn("subscriber buffer full, dropping event", map[string]interface{}{
				"subscriber": sub.id,
				"type":       ev.Type,
			})
		}
	}
}

// Close removes all subscribers and closes their channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.events)
		delete(b.subscribers, id)
	}
}
