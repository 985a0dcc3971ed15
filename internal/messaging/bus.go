package messaging

import (
	"sync"

	"meridian/internal/models"
)

type Listener func(event models.AnalyticsEvent)

type subscription struct {
	id       int
	listener Listener
}

// EventBus delivers every published event to all listeners, synchronously
// and in subscription order. Concurrent publishers are serialized so every
// listener observes the same order.
type EventBus struct {
	mu        sync.RWMutex
	nextID    int
	listeners []subscription

	deliverMu sync.Mutex
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers l and returns a func removing it
func (b *EventBus) Subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *EventBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *EventBus) Publish(event models.AnalyticsEvent) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.RLock()
	listeners := make([]subscription, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, s := range listeners {
		s.listener(event)
	}
}

func (b *EventBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
