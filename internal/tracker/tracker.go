// Package tracker records named interaction events. Every event is persisted
// to the capped analytics log and broadcast on the event bus.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"meridian/internal/messaging"
	"meridian/internal/models"
	"meridian/internal/repository"

	"github.com/google/uuid"
)

type Tracker struct {
	events *repository.EventRepository
	bus    *messaging.EventBus
	now    func() time.Time
}

func New(events *repository.EventRepository, bus *messaging.EventBus) *Tracker {
	return &Tracker{events: events, bus: bus, now: time.Now}
}

// Track never fails: a persistence error is logged and listeners are still notified
func (t *Tracker) Track(ctx context.Context, name string, payload map[string]any) models.AnalyticsEvent {
	if payload == nil {
		payload = map[string]any{}
	}
	event := models.AnalyticsEvent{
		ID:        uuid.New().String(),
		Name:      name,
		Timestamp: t.now().UTC(),
		Payload:   payload,
	}

	if err := t.events.Append(ctx, event); err != nil {
		slog.Error("Failed to persist analytics event", "event", name, "event_id", event.ID, "error", err)
	}

	t.bus.Publish(event)

	slog.Debug("Tracked event", "event", name, "event_id", event.ID)
	return event
}

func (t *Tracker) Bus() *messaging.EventBus {
	return t.bus
}
