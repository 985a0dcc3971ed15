package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"meridian/internal/catalog"
	apperrors "meridian/internal/errors"
	"meridian/internal/models"
	"meridian/internal/repository"
)

// Searcher ranks voyages for a free-text query and returns their ids
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

type EventTracker interface {
	Track(ctx context.Context, name string, payload map[string]any) models.AnalyticsEvent
}

type VoyageFilter struct {
	Location      string
	FavoritesOnly bool
	Query         string
	Guests        int
}

type VoyageService struct {
	catalog   *catalog.Provider
	favorites *repository.FavoriteRepository
	tracker   EventTracker
	searcher  Searcher
}

// NewVoyageService builds the voyage browser. searcher may be nil, then
// queries are matched against titles and ports in memory.
func NewVoyageService(cat *catalog.Provider, favorites *repository.FavoriteRepository, t EventTracker, searcher Searcher) *VoyageService {
	return &VoyageService{
		catalog:   cat,
		favorites: favorites,
		tracker:   t,
		searcher:  searcher,
	}
}

func (s *VoyageService) List(ctx context.Context, filter VoyageFilter) []models.Voyage {
	voyages := s.catalog.ListVoyages()

	if filter.Location != "" {
		voyages = keep(voyages, func(v models.Voyage) bool { return v.Location == filter.Location })
	}

	if filter.FavoritesOnly {
		favs := make(map[string]bool)
		for _, id := range s.favorites.Get(ctx) {
			favs[id] = true
		}
		voyages = keep(voyages, func(v models.Voyage) bool { return favs[v.ID] })
	}

	query := strings.TrimSpace(filter.Query)
	if query != "" {
		voyages = s.search(ctx, voyages, query)
		s.tracker.Track(ctx, models.EventSearchExecuted, map[string]any{
			"query":  query,
			"guests": filter.Guests,
		})
	}

	return voyages
}

// search orders voyages by the searcher's ranking and falls back to a
// substring match when the searcher is missing or fails
func (s *VoyageService) search(ctx context.Context, voyages []models.Voyage, query string) []models.Voyage {
	if s.searcher != nil {
		ids, err := s.searcher.Search(ctx, query)
		if err == nil {
			byID := make(map[string]models.Voyage, len(voyages))
			for _, v := range voyages {
				byID[v.ID] = v
			}
			out := make([]models.Voyage, 0, len(ids))
			for _, id := range ids {
				if v, ok := byID[id]; ok {
					out = append(out, v)
				}
			}
			return out
		}
		slog.Error("Voyage search failed, falling back to catalog scan", "query", query, "error", err)
	}

	q := strings.ToLower(query)
	return keep(voyages, func(v models.Voyage) bool {
		if strings.Contains(strings.ToLower(v.Title), q) {
			return true
		}
		for _, port := range v.Itinerary {
			if strings.Contains(strings.ToLower(port), q) {
				return true
			}
		}
		return false
	})
}

func keep(voyages []models.Voyage, pred func(models.Voyage) bool) []models.Voyage {
	out := make([]models.Voyage, 0, len(voyages))
	for _, v := range voyages {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *VoyageService) Locations() []string {
	return s.catalog.Locations()
}

// Get returns a voyage and records that it was viewed
func (s *VoyageService) Get(ctx context.Context, id string) (models.Voyage, error) {
	v, ok := s.catalog.Voyage(id)
	if !ok {
		return models.Voyage{}, fmt.Errorf("voyage %s: %w", id, apperrors.ErrVoyageNotFound)
	}

	s.tracker.Track(ctx, models.EventViewContent, map[string]any{
		"type":  "voyage",
		"title": v.Title,
		"price": v.Price,
	})
	return v, nil
}

func (s *VoyageService) Excursions(id string) ([]models.Excursion, error) {
	v, ok := s.catalog.Voyage(id)
	if !ok {
		return nil, fmt.Errorf("voyage %s: %w", id, apperrors.ErrVoyageNotFound)
	}
	return s.catalog.AvailableExcursions(v), nil
}

func (s *VoyageService) Favorites(ctx context.Context) []string {
	return s.favorites.Get(ctx)
}

func (s *VoyageService) ToggleFavorite(ctx context.Context, id string) ([]string, error) {
	if _, ok := s.catalog.Voyage(id); !ok {
		return nil, fmt.Errorf("voyage %s: %w", id, apperrors.ErrVoyageNotFound)
	}
	return s.favorites.Toggle(ctx, id), nil
}
