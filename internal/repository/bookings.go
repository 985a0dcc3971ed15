package repository

import (
	"context"
	"sync"

	"meridian/internal/models"
	"meridian/internal/store"
)

// BookingRepository is the booking ledger, most recent first
type BookingRepository struct {
	mu    sync.Mutex
	store store.Store
}

func NewBookingRepository(s store.Store) *BookingRepository {
	return &BookingRepository{store: s}
}

func (r *BookingRepository) Append(ctx context.Context, booking models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := loadList[models.Booking](ctx, r.store, keyBookings)
	next := make([]models.Booking, 0, len(current)+1)
	next = append(next, booking)
	next = append(next, current...)

	return saveList(ctx, r.store, keyBookings, next)
}

func (r *BookingRepository) ListAll(ctx context.Context) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadList[models.Booking](ctx, r.store, keyBookings)
}
