package catalog

import (
	"testing"

	"meridian/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	voyages := p.ListVoyages()
	require.NotEmpty(t, voyages)

	for _, v := range voyages {
		assert.NotEmpty(t, v.ID)
		assert.GreaterOrEqual(t, v.Nights, 1, "voyage %s", v.ID)
		assert.NotNil(t, v.Itinerary, "voyage %s", v.ID)
	}

	rome := p.ExcursionsForPort("Rome")
	require.Len(t, rome, 2)
	assert.Equal(t, "rom-01", rome[0].ID)
	assert.Equal(t, int64(129), rome[0].Price)
	assert.Equal(t, int64(159), rome[1].Price)
}

func TestAvailableExcursions(t *testing.T) {
	p := NewProvider(nil, map[string][]models.Excursion{
		"Rome":   {{ID: "rom-01", Port: "Rome", Price: 129}, {ID: "rom-02", Port: "Rome", Price: 159}},
		"Athens": {{ID: "ath-01", Port: "Athens", Price: 89}},
	})

	tests := []struct {
		name      string
		itinerary []string
		want      []string
	}{
		{name: "no itinerary", itinerary: nil, want: []string{}},
		{name: "port without excursions", itinerary: []string{"Bergen"}, want: []string{}},
		{name: "itinerary order", itinerary: []string{"Athens", "Rome"}, want: []string{"ath-01", "rom-01", "rom-02"}},
		{name: "repeated port", itinerary: []string{"Rome", "Athens", "Rome"}, want: []string{"rom-01", "rom-02", "ath-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.AvailableExcursions(models.Voyage{Itinerary: tt.itinerary})
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestVoyageLookupAndLocations(t *testing.T) {
	p := NewProvider([]models.Voyage{
		{ID: "a", Location: "Alaska"},
		{ID: "b", Location: "Europe"},
		{ID: "c", Location: "Alaska"},
	}, nil)

	v, ok := p.Voyage("b")
	require.True(t, ok)
	assert.Equal(t, "Europe", v.Location)

	_, ok = p.Voyage("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"Alaska", "Europe"}, p.Locations())
	assert.Empty(t, p.ExcursionsForPort("Rome"))
}
