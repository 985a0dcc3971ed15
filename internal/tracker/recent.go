package tracker

import (
	"sync"

	"meridian/internal/models"
)

// DebugBufferSize is the depth of the live debug overlay
const DebugBufferSize = 10

// Recent keeps the most recent events seen on the bus
type Recent struct {
	mu     sync.Mutex
	size   int
	events []models.AnalyticsEvent
}

func NewRecent(size int) *Recent {
	return &Recent{size: size, events: make([]models.AnalyticsEvent, 0, size)}
}

func (r *Recent) Observe(event models.AnalyticsEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.events) >= r.size {
		r.events = r.events[1:]
	}
	r.events = append(r.events, event)
}

// Snapshot returns the buffered events, newest first
func (r *Recent) Snapshot() []models.AnalyticsEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.AnalyticsEvent, len(r.events))
	for i, e := range r.events {
		out[len(r.events)-1-i] = e
	}
	return out
}
