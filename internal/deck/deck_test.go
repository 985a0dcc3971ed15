package deck

import (
	"math/rand"
	"testing"

	apperrors "meridian/internal/errors"
	"meridian/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLayout(t *testing.T) {
	cabins := Generate(rand.New(rand.NewSource(42)))
	require.Len(t, cabins, 3*CabinsPerBand)

	ids := make(map[string]bool)
	for _, c := range cabins {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
		assert.Equal(t, Price(c.Type), c.Price, "cabin %s", c.ID)
	}

	byID := func(id string) models.Cabin {
		for _, c := range cabins {
			if c.ID == id {
				return c
			}
		}
		t.Fatalf("cabin %s missing", id)
		return models.Cabin{}
	}

	assert.Equal(t, models.CabinSuite, byID("P100").Type)
	assert.Equal(t, models.CabinSuite, byID("S110").Type)
	assert.Equal(t, models.CabinBalcony, byID("P103").Type)
	assert.Equal(t, models.CabinOceanview, byID("S101").Type)
}

func TestGenerateBands(t *testing.T) {
	cabins := Generate(rand.New(rand.NewSource(7)))

	for _, c := range cabins[2*CabinsPerBand:] {
		assert.Equal(t, models.CabinInterior, c.Type)
		assert.Equal(t, int64(800), c.Price)
		assert.Equal(t, "I", c.ID[:1])
	}
	for _, c := range cabins[:2*CabinsPerBand] {
		assert.NotEqual(t, models.CabinInterior, c.Type)
	}
}

func TestGenerateIsSeedDeterministic(t *testing.T) {
	a := Generate(rand.New(rand.NewSource(99)))
	b := Generate(rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
}

func TestGenerateOccupancyRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var outerBooked, interiorBooked, runs int
	for runs = 0; runs < 500; runs++ {
		for i, c := range Generate(rng) {
			if !c.IsBooked {
				continue
			}
			if i < 2*CabinsPerBand {
				outerBooked++
			} else {
				interiorBooked++
			}
		}
	}

	outer := float64(outerBooked) / float64(runs*2*CabinsPerBand)
	interior := float64(interiorBooked) / float64(runs*CabinsPerBand)
	assert.InDelta(t, 0.3, outer, 0.03)
	assert.InDelta(t, 0.4, interior, 0.03)
}

func TestPlanSelect(t *testing.T) {
	plan := NewPlan([]models.Cabin{
		{ID: "P100", Type: models.CabinSuite, Price: 2500},
		{ID: "P101", Type: models.CabinOceanview, Price: 1200, IsBooked: true},
		{ID: "I101", Type: models.CabinInterior, Price: 800},
	})

	_, ok := plan.Selected()
	assert.False(t, ok)
	assert.Equal(t, 2, plan.Available())

	c, err := plan.Select("P100")
	require.NoError(t, err)
	assert.Equal(t, "P100", c.ID)

	_, err = plan.Select("P101")
	assert.ErrorIs(t, err, apperrors.ErrCabinUnavailable)
	selected, ok := plan.Selected()
	require.True(t, ok)
	assert.Equal(t, "P100", selected.ID)

	_, err = plan.Select("X999")
	assert.ErrorIs(t, err, apperrors.ErrCabinNotFound)

	_, err = plan.Select("I101")
	require.NoError(t, err)
	selected, _ = plan.Selected()
	assert.Equal(t, "I101", selected.ID)
}

func TestBookedCabinNeverSelected(t *testing.T) {
	plan := NewPlan(Generate(rand.New(rand.NewSource(3))))

	for _, c := range plan.Cabins() {
		_, err := plan.Select(c.ID)
		if c.IsBooked {
			assert.ErrorIs(t, err, apperrors.ErrCabinUnavailable)
		} else {
			assert.NoError(t, err)
		}
		if selected, ok := plan.Selected(); ok {
			assert.False(t, selected.IsBooked)
		}
	}
}
