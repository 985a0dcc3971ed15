package repository

import (
	"context"
	"sync"

	"meridian/internal/models"
	"meridian/internal/store"
)

// MaxStoredEvents is the retention of the persisted analytics log
const MaxStoredEvents = 100

type EventRepository struct {
	mu    sync.Mutex
	store store.Store
}

func NewEventRepository(s store.Store) *EventRepository {
	return &EventRepository{store: s}
}

// Append prepends the event and evicts the oldest entries past MaxStoredEvents
func (r *EventRepository) Append(ctx context.Context, event models.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := loadList[models.AnalyticsEvent](ctx, r.store, keyEvents)
	if len(current) > MaxStoredEvents-1 {
		current = current[:MaxStoredEvents-1]
	}
	next := make([]models.AnalyticsEvent, 0, len(current)+1)
	next = append(next, event)
	next = append(next, current...)

	return saveList(ctx, r.store, keyEvents, next)
}

// List returns the stored events, most recent first
func (r *EventRepository) List(ctx context.Context) []models.AnalyticsEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadList[models.AnalyticsEvent](ctx, r.store, keyEvents)
}
