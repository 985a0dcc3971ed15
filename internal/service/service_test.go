package service

import (
	"context"
	"errors"
	"testing"

	"meridian/internal/catalog"
	apperrors "meridian/internal/errors"
	"meridian/internal/messaging"
	"meridian/internal/models"
	"meridian/internal/repository"
	"meridian/internal/store"
	"meridian/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	ids []string
	err error
}

func (s stubSearcher) Search(context.Context, string) ([]string, error) {
	return s.ids, s.err
}

func testCatalog() *catalog.Provider {
	return catalog.NewProvider([]models.Voyage{
		{ID: "v1", Title: "Glacier Passage", Location: "Alaska", Price: 1299, Itinerary: []string{"Juneau", "Skagway"}},
		{ID: "v2", Title: "Inside Passage", Location: "Alaska", Price: 999, Itinerary: []string{"Ketchikan"}},
		{ID: "v3", Title: "Eternal City Escape", Location: "Europe", Price: 899, Itinerary: []string{"Rome"}},
	}, map[string][]models.Excursion{
		"Rome": {{ID: "rom-01", Port: "Rome", Price: 129}},
	})
}

type fixture struct {
	repos  *repository.Repositories
	voyage *VoyageService
	admin  *AdminService
}

func newFixture(searcher Searcher) *fixture {
	repos := repository.NewRepositories(store.NewMemoryStore())
	tr := tracker.New(repos.Events, messaging.NewEventBus())
	svc := NewServices(testCatalog(), repos, tr, searcher)
	return &fixture{repos: repos, voyage: svc.Voyages, admin: svc.Admin}
}

func ids(voyages []models.Voyage) []string {
	out := make([]string, len(voyages))
	for i, v := range voyages {
		out[i] = v.ID
	}
	return out
}

func TestVoyageFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	_, err := f.voyage.ToggleFavorite(ctx, "v2")
	require.NoError(t, err)
	_, err = f.voyage.ToggleFavorite(ctx, "v3")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter VoyageFilter
		want   []string
	}{
		{name: "all", filter: VoyageFilter{}, want: []string{"v1", "v2", "v3"}},
		{name: "location", filter: VoyageFilter{Location: "Alaska"}, want: []string{"v1", "v2"}},
		{name: "favorites", filter: VoyageFilter{FavoritesOnly: true}, want: []string{"v2", "v3"}},
		{name: "location and favorites", filter: VoyageFilter{Location: "Alaska", FavoritesOnly: true}, want: []string{"v2"}},
		{name: "title query", filter: VoyageFilter{Query: "passage"}, want: []string{"v1", "v2"}},
		{name: "port query", filter: VoyageFilter{Query: "ROME"}, want: []string{"v3"}},
		{name: "no match", filter: VoyageFilter{Query: "fjord"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(f.voyage.List(ctx, tt.filter)))
		})
	}
}

func TestSearchEmitsEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	f.voyage.List(ctx, VoyageFilter{})
	assert.Empty(t, f.repos.Events.List(ctx))

	f.voyage.List(ctx, VoyageFilter{Query: "rome", Guests: 2})
	events := f.repos.Events.List(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventSearchExecuted, events[0].Name)
	assert.Equal(t, "rome", events[0].Payload["query"])
}

func TestSearcherRanking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(stubSearcher{ids: []string{"v3", "v1", "ghost"}})

	assert.Equal(t, []string{"v3", "v1"}, ids(f.voyage.List(ctx, VoyageFilter{Query: "anything"})))
	assert.Equal(t, []string{"v1"}, ids(f.voyage.List(ctx, VoyageFilter{Query: "anything", Location: "Alaska"})))
}

func TestSearcherFailureFallsBack(t *testing.T) {
	f := newFixture(stubSearcher{err: errors.New("cluster down")})

	got := f.voyage.List(context.Background(), VoyageFilter{Query: "glacier"})
	assert.Equal(t, []string{"v1"}, ids(got))
}

func TestGetVoyage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	v, err := f.voyage.Get(ctx, "v3")
	require.NoError(t, err)
	assert.Equal(t, "Eternal City Escape", v.Title)

	events := f.repos.Events.List(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventViewContent, events[0].Name)
	assert.Equal(t, "voyage", events[0].Payload["type"])

	_, err = f.voyage.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrVoyageNotFound)

	ex, err := f.voyage.Excursions("v3")
	require.NoError(t, err)
	assert.Len(t, ex, 1)
	ex, err = f.voyage.Excursions("v1")
	require.NoError(t, err)
	assert.Empty(t, ex)

	assert.Equal(t, []string{"Alaska", "Europe"}, f.voyage.Locations())
}

func TestToggleFavoriteUnknownVoyage(t *testing.T) {
	f := newFixture(nil)

	_, err := f.voyage.ToggleFavorite(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrVoyageNotFound)
	assert.Empty(t, f.voyage.Favorites(context.Background()))
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	assert.Equal(t, Dashboard{}, f.admin.Dashboard(ctx))

	require.NoError(t, f.repos.Bookings.Append(ctx, models.Booking{ID: "000001", TotalPaid: 1150}))
	require.NoError(t, f.repos.Bookings.Append(ctx, models.Booking{ID: "000002", TotalPaid: 1488}))
	require.NoError(t, f.repos.Events.Append(ctx, models.AnalyticsEvent{ID: "e1", Name: models.EventPurchase}))

	d := f.admin.Dashboard(ctx)
	assert.Equal(t, int64(2638), d.Revenue)
	assert.Equal(t, 2, d.Bookings)
	assert.Equal(t, 4, d.Passengers)
	assert.Equal(t, 1, d.Events)

	assert.Equal(t, "000002", f.admin.Bookings(ctx)[0].ID)
	assert.Len(t, f.admin.Events(ctx), 1)
}
