package service

import (
	"context"

	"meridian/internal/models"
	"meridian/internal/repository"
)

// PassengersPerBooking is the demo's average party size
const PassengersPerBooking = 2

type Dashboard struct {
	Revenue    int64 `json:"revenue"`
	Bookings   int   `json:"bookings"`
	Passengers int   `json:"passengers"`
	Events     int   `json:"events"`
}

// AdminService is a read-only view over the booking ledger and the analytics log
type AdminService struct {
	bookings *repository.BookingRepository
	events   *repository.EventRepository
}

func NewAdminService(bookings *repository.BookingRepository, events *repository.EventRepository) *AdminService {
	return &AdminService{bookings: bookings, events: events}
}

func (s *AdminService) Dashboard(ctx context.Context) Dashboard {
	bookings := s.bookings.ListAll(ctx)

	var revenue int64
	for _, b := range bookings {
		revenue += b.TotalPaid
	}

	return Dashboard{
		Revenue:    revenue,
		Bookings:   len(bookings),
		Passengers: len(bookings) * PassengersPerBooking,
		Events:     len(s.events.List(ctx)),
	}
}

func (s *AdminService) Bookings(ctx context.Context) []models.Booking {
	return s.bookings.ListAll(ctx)
}

func (s *AdminService) Events(ctx context.Context) []models.AnalyticsEvent {
	return s.events.List(ctx)
}
