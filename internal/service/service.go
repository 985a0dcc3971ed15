package service

import (
	"meridian/internal/catalog"
	"meridian/internal/repository"
	"meridian/internal/tracker"
)

type Services struct {
	Voyages *VoyageService
	Admin   *AdminService
}

func NewServices(cat *catalog.Provider, repos *repository.Repositories, t *tracker.Tracker, searcher Searcher) *Services {
	return &Services{
		Voyages: NewVoyageService(cat, repos.Favorites, t, searcher),
		Admin:   NewAdminService(repos.Bookings, repos.Events),
	}
}
