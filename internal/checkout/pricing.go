package checkout

import "meridian/internal/models"

const (
	plusPerNight    = 50
	premierPerNight = 80
)

// PackagePrice is the per-night add-on price of a tier over the whole voyage
func PackagePrice(tier models.PackageTier, nights int) int64 {
	switch tier {
	case models.PackagePlus:
		return plusPerNight * int64(nights)
	case models.PackagePremier:
		return premierPerNight * int64(nights)
	default:
		return 0
	}
}

// ExcursionCost sums the selected excursions resolved against available.
// An id that does not resolve costs nothing.
func ExcursionCost(selected []string, available []models.Excursion) int64 {
	prices := make(map[string]int64, len(available))
	for _, e := range available {
		prices[e.ID] = e.Price
	}
	var total int64
	for _, id := range selected {
		total += prices[id]
	}
	return total
}

type Breakdown struct {
	Cabin          int64 `json:"cabin"`
	Package        int64 `json:"package"`
	ExcursionCount int   `json:"excursion_count"`
	Excursions     int64 `json:"excursions"`
	Total          int64 `json:"total"`
}

func Price(cabin models.Cabin, tier models.PackageTier, nights int, selected []string, available []models.Excursion) Breakdown {
	b := Breakdown{
		Cabin:          cabin.Price,
		Package:        PackagePrice(tier, nights),
		ExcursionCount: len(selected),
		Excursions:     ExcursionCost(selected, available),
	}
	b.Total = b.Cabin + b.Package + b.Excursions
	return b
}
