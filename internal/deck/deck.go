// Package deck models the deck plan: three bands of independently priced,
// independently bookable cabins.
package deck

import (
	"fmt"
	"math/rand"

	apperrors "meridian/internal/errors"
	"meridian/internal/models"
)

const CabinsPerBand = 20

var cabinPrices = map[models.CabinType]int64{
	models.CabinInterior:  800,
	models.CabinOceanview: 1200,
	models.CabinBalcony:   1800,
	models.CabinSuite:     2500,
}

type band struct {
	prefix string
	y      int
	outer  bool
	// a cabin is pre-booked when a draw exceeds this
	bookedAbove float64
}

var bands = []band{
	{prefix: "P", y: 40, outer: true, bookedAbove: 0.7},
	{prefix: "S", y: 160, outer: true, bookedAbove: 0.7},
	{prefix: "I", y: 100, outer: false, bookedAbove: 0.6},
}

func Price(t models.CabinType) int64 {
	return cabinPrices[t]
}

func cabinType(outer bool, i int) models.CabinType {
	switch {
	case !outer:
		return models.CabinInterior
	case i%10 == 0:
		return models.CabinSuite
	case i%3 == 0:
		return models.CabinBalcony
	default:
		return models.CabinOceanview
	}
}

// Generate lays out the port, starboard and interior bands. Occupancy is drawn from rng.
func Generate(rng *rand.Rand) []models.Cabin {
	cabins := make([]models.Cabin, 0, len(bands)*CabinsPerBand)
	for _, b := range bands {
		for i := 0; i < CabinsPerBand; i++ {
			t := cabinType(b.outer, i)
			cabins = append(cabins, models.Cabin{
				ID:       fmt.Sprintf("%s%d", b.prefix, 100+i),
				Type:     t,
				Price:    cabinPrices[t],
				X:        60 + i*34,
				Y:        b.y,
				IsBooked: rng.Float64() > b.bookedAbove,
			})
		}
	}
	return cabins
}

// Plan is one session's deck with at most one selected cabin. It is not safe for concurrent use.
type Plan struct {
	cabins   []models.Cabin
	byID     map[string]int
	selected string
}

func NewPlan(cabins []models.Cabin) *Plan {
	p := &Plan{cabins: cabins, byID: make(map[string]int, len(cabins))}
	for i, c := range cabins {
		p.byID[c.ID] = i
	}
	return p
}

func (p *Plan) Cabins() []models.Cabin {
	out := make([]models.Cabin, len(p.cabins))
	copy(out, p.cabins)
	return out
}

// Select replaces the current choice. A booked or unknown cabin leaves the choice untouched.
func (p *Plan) Select(cabinID string) (models.Cabin, error) {
	i, ok := p.byID[cabinID]
	if !ok {
		return models.Cabin{}, fmt.Errorf("cabin %s: %w", cabinID, apperrors.ErrCabinNotFound)
	}
	c := p.cabins[i]
	if c.IsBooked {
		return models.Cabin{}, fmt.Errorf("cabin %s: %w", cabinID, apperrors.ErrCabinUnavailable)
	}
	p.selected = c.ID
	return c, nil
}

func (p *Plan) Selected() (models.Cabin, bool) {
	if p.selected == "" {
		return models.Cabin{}, false
	}
	return p.cabins[p.byID[p.selected]], true
}

// Available counts the cabins that are not pre-booked
func (p *Plan) Available() int {
	n := 0
	for _, c := range p.cabins {
		if !c.IsBooked {
			n++
		}
	}
	return n
}
