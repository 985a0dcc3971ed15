// Package catalog serves the static voyage and shore excursion datasets.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"meridian/internal/models"
)

//go:embed data/voyages.json data/excursions.json
var dataFS embed.FS

// voyageRecord mirrors the upstream dataset layout
type voyageRecord struct {
	VoyageID       string             `json:"voyage_id"`
	Title          string             `json:"title"`
	Region         string             `json:"region"`
	BasePriceUSD   int64              `json:"base_price_usd"`
	DurationNights int                `json:"duration_nights"`
	Rating         float64            `json:"rating"`
	ShipName       string             `json:"ship_name"`
	Itinerary      []string           `json:"itinerary"`
	Coordinates    models.Coordinates `json:"coordinates"`
}

type Provider struct {
	voyages    []models.Voyage
	byID       map[string]int
	excursions map[string][]models.Excursion
}

// Load parses the embedded datasets
func Load() (*Provider, error) {
	rawVoyages, err := dataFS.ReadFile("data/voyages.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read voyages dataset: %w", err)
	}
	var records []voyageRecord
	if err := json.Unmarshal(rawVoyages, &records); err != nil {
		return nil, fmt.Errorf("failed to parse voyages dataset: %w", err)
	}

	rawExcursions, err := dataFS.ReadFile("data/excursions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read excursions dataset: %w", err)
	}
	var excursions map[string][]models.Excursion
	if err := json.Unmarshal(rawExcursions, &excursions); err != nil {
		return nil, fmt.Errorf("failed to parse excursions dataset: %w", err)
	}

	voyages := make([]models.Voyage, len(records))
	for i, r := range records {
		itinerary := r.Itinerary
		if itinerary == nil {
			itinerary = []string{}
		}
		voyages[i] = models.Voyage{
			ID:          r.VoyageID,
			Title:       r.Title,
			Location:    r.Region,
			Price:       r.BasePriceUSD,
			Nights:      r.DurationNights,
			Rating:      r.Rating,
			Ship:        r.ShipName,
			Itinerary:   itinerary,
			Coordinates: r.Coordinates,
		}
	}

	return NewProvider(voyages, excursions), nil
}

// NewProvider builds a provider over in-memory data
func NewProvider(voyages []models.Voyage, excursions map[string][]models.Excursion) *Provider {
	p := &Provider{
		voyages:    voyages,
		byID:       make(map[string]int, len(voyages)),
		excursions: excursions,
	}
	if p.excursions == nil {
		p.excursions = map[string][]models.Excursion{}
	}
	for i, v := range voyages {
		p.byID[v.ID] = i
	}
	return p
}

// ListVoyages returns all voyages in catalog order
func (p *Provider) ListVoyages() []models.Voyage {
	out := make([]models.Voyage, len(p.voyages))
	copy(out, p.voyages)
	return out
}

func (p *Provider) Voyage(id string) (models.Voyage, bool) {
	i, ok := p.byID[id]
	if !ok {
		return models.Voyage{}, false
	}
	return p.voyages[i], true
}

// ExcursionsForPort returns the excursions offered in a port, possibly none
func (p *Provider) ExcursionsForPort(port string) []models.Excursion {
	list := p.excursions[port]
	out := make([]models.Excursion, len(list))
	copy(out, list)
	return out
}

// AvailableExcursions is the union of the excursions of every port in the
// itinerary, in itinerary order. A port visited twice contributes once.
func (p *Provider) AvailableExcursions(v models.Voyage) []models.Excursion {
	out := []models.Excursion{}
	seen := make(map[string]bool)
	for _, port := range v.Itinerary {
		for _, e := range p.excursions[port] {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}

// Locations returns the distinct voyage regions in catalog order
func (p *Provider) Locations() []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, v := range p.voyages {
		if seen[v.Location] {
			continue
		}
		seen[v.Location] = true
		out = append(out, v.Location)
	}
	return out
}
