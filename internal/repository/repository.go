package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	apperrors "meridian/internal/errors"
	"meridian/internal/store"
)

const (
	keyFavorites = "favorites"
	keyBookings  = "bookings"
	keyEvents    = "analytics_events"
)

type Repositories struct {
	Favorites *FavoriteRepository
	Bookings  *BookingRepository
	Events    *EventRepository
}

func NewRepositories(s store.Store) *Repositories {
	return &Repositories{
		Favorites: NewFavoriteRepository(s),
		Bookings:  NewBookingRepository(s),
		Events:    NewEventRepository(s),
	}
}

// loadList reads a JSON array blob. A missing, unreadable or malformed blob is an empty list.
func loadList[T any](ctx context.Context, s store.Store, key string) []T {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			slog.Error("Failed to read blob, treating as empty", "key", key, "error", err)
		}
		return []T{}
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		slog.Error("Corrupted blob, treating as empty", "key", key, "error", err)
		return []T{}
	}
	if list == nil {
		list = []T{}
	}
	return list
}

func saveList[T any](ctx context.Context, s store.Store, key string, list []T) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
