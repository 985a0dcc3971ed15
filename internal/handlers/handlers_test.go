package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meridian/internal/catalog"
	"meridian/internal/checkout"
	"meridian/internal/messaging"
	"meridian/internal/models"
	"meridian/internal/payment"
	"meridian/internal/repository"
	"meridian/internal/service"
	"meridian/internal/session"
	"meridian/internal/store"
	"meridian/internal/tracker"
	"meridian/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
	recent *tracker.Recent
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Load()
	require.NoError(t, err)

	repos := repository.NewRepositories(store.NewMemoryStore())
	bus := messaging.NewEventBus()
	recent := tracker.NewRecent(tracker.DebugBufferSize)
	bus.Subscribe(recent.Observe)
	tr := tracker.New(repos.Events, bus)

	services := service.NewServices(cat, repos, tr, nil)
	sessions := session.NewManager(cat, session.Options{
		Tracker:  tr,
		Ledger:   repos.Bookings,
		Settler:  payment.NewSimulated(0),
		DeckSeed: 42,
	})
	h := NewHandlers(services, sessions, recent, websocket.NewHub())

	r := gin.New()
	api := r.Group("/api")
	{
		api.GET("/voyages", h.ListVoyages)
		api.GET("/voyages/locations", h.ListLocations)
		api.GET("/voyages/:id", h.GetVoyage)
		api.GET("/voyages/:id/excursions", h.ListExcursions)
		api.GET("/favorites", h.GetFavorites)
		api.POST("/favorites/:id/toggle", h.ToggleFavorite)

		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.CloseSession)
		api.GET("/sessions/:id/deck", h.GetDeck)
		api.PUT("/sessions/:id/cabin", h.SelectCabin)
		api.POST("/sessions/:id/checkout", h.StartCheckout)
		api.POST("/sessions/:id/checkout/next", h.CheckoutNext)
		api.POST("/sessions/:id/checkout/back", h.CheckoutBack)
		api.PUT("/sessions/:id/checkout/guest", h.UpdateGuest)
		api.PUT("/sessions/:id/checkout/package", h.SelectPackage)
		api.POST("/sessions/:id/checkout/excursions/:excursionId/toggle", h.ToggleExcursion)
		api.POST("/sessions/:id/checkout/pay", h.Pay)

		api.GET("/admin/dashboard", h.AdminDashboard)
		api.GET("/admin/bookings", h.AdminBookings)
		api.GET("/admin/events", h.AdminEvents)
		api.GET("/debug/events", h.DebugEvents)
	}

	return &testEnv{router: r, repos: repos, recent: recent}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListVoyages(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodGet, "/api/voyages", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Voyage](t, w), 12)

	w = env.do(t, http.MethodGet, "/api/voyages?location=Alaska", nil)
	alaska := decode[[]models.Voyage](t, w)
	require.Len(t, alaska, 2)
	assert.Equal(t, "v1", alaska[0].ID)

	w = env.do(t, http.MethodGet, "/api/voyages?query=rome&guests=2", nil)
	found := decode[[]models.Voyage](t, w)
	assert.Len(t, found, 2)
	assert.Equal(t, models.EventSearchExecuted, env.recent.Snapshot()[0].Name)

	w = env.do(t, http.MethodGet, "/api/voyages?favorites=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/voyages?guests=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVoyage(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodGet, "/api/voyages/v3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Eternal City Escape", decode[models.Voyage](t, w).Title)

	w = env.do(t, http.MethodGet, "/api/voyages/v3/excursions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Excursion](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/voyages/v7/excursions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Excursion](t, w))

	w = env.do(t, http.MethodGet, "/api/voyages/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/voyages/locations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[models.LocationsResponse](t, w).Locations, "Antarctica")
}

func TestToggleFavorite(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodPost, "/api/favorites/v2/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"v2"}, decode[models.FavoritesResponse](t, w).Favorites)

	w = env.do(t, http.MethodGet, "/api/voyages?favorites=true", nil)
	favs := decode[[]models.Voyage](t, w)
	require.Len(t, favs, 1)
	assert.Equal(t, "v2", favs[0].ID)

	w = env.do(t, http.MethodPost, "/api/favorites/v2/toggle", nil)
	assert.Empty(t, decode[models.FavoritesResponse](t, w).Favorites)

	w = env.do(t, http.MethodPost, "/api/favorites/nope/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodPost, "/api/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions", models.CreateSessionRequest{VoyageID: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func openSession(t *testing.T, env *testEnv, voyageID string) (session.View, []models.Cabin) {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/sessions", models.CreateSessionRequest{VoyageID: voyageID})
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[session.View](t, w)
	assert.Equal(t, session.PhaseRoom, view.Phase)

	w = env.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/deck", nil)
	require.Equal(t, http.StatusOK, w.Code)
	deck := decode[models.DeckResponse](t, w)
	require.Len(t, deck.Cabins, 60)
	return view, deck.Cabins
}

func firstCabin(cabins []models.Cabin, booked bool) models.Cabin {
	for _, c := range cabins {
		if c.IsBooked == booked {
			return c
		}
	}
	return models.Cabin{}
}

func TestCabinSelection(t *testing.T) {
	env := setupRouter(t)
	view, cabins := openSession(t, env, "v1")
	base := "/api/sessions/" + view.ID

	w := env.do(t, http.MethodPost, base+"/checkout", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	booked := firstCabin(cabins, true)
	w = env.do(t, http.MethodPut, base+"/cabin", models.SelectCabinRequest{CabinID: booked.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, base+"/cabin", models.SelectCabinRequest{CabinID: "Z000"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	free := firstCabin(cabins, false)
	w = env.do(t, http.MethodPut, base+"/cabin", models.SelectCabinRequest{CabinID: free.ID})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session.View](t, w)
	require.NotNil(t, got.Cabin)
	assert.Equal(t, free.ID, got.Cabin.ID)

	w = env.do(t, http.MethodGet, base+"/deck", nil)
	assert.Equal(t, free.ID, decode[models.DeckResponse](t, w).Selected)
}

func TestCheckoutFlowWithoutExcursions(t *testing.T) {
	env := setupRouter(t)
	view, cabins := openSession(t, env, "v7")
	base := "/api/sessions/" + view.ID
	cabin := firstCabin(cabins, false)

	w := env.do(t, http.MethodPut, base+"/cabin", models.SelectCabinRequest{CabinID: cabin.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[session.View](t, w)
	require.NotNil(t, v.Checkout)
	assert.Equal(t, checkout.StepReview, v.Checkout.Step)
	assert.NotContains(t, v.Checkout.Path, checkout.StepExcursion)

	w = env.do(t, http.MethodPost, base+"/checkout/next", nil)
	assert.Equal(t, checkout.StepGuest, decode[session.View](t, w).Checkout.Step)

	// guarded: no email yet
	env.do(t, http.MethodPut, base+"/checkout/guest", models.GuestRequest{FirstName: "Ada"})
	w = env.do(t, http.MethodPost, base+"/checkout/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, checkout.StepGuest, decode[session.View](t, w).Checkout.Step)

	env.do(t, http.MethodPut, base+"/checkout/guest", models.GuestRequest{FirstName: "Ada", Email: "ada@example.com"})
	w = env.do(t, http.MethodPost, base+"/checkout/next", nil)
	assert.Equal(t, checkout.StepUpsell, decode[session.View](t, w).Checkout.Step)

	w = env.do(t, http.MethodPut, base+"/checkout/package", map[string]string{"package": "gold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, base+"/checkout/package", models.SelectPackageRequest{Package: models.PackagePlus})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cabin.Price+700, decode[session.View](t, w).Checkout.Price.Total)

	w = env.do(t, http.MethodPost, base+"/checkout/next", nil)
	assert.Equal(t, checkout.StepPayment, decode[session.View](t, w).Checkout.Step)

	w = env.do(t, http.MethodPost, base+"/checkout/pay", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	var final session.View
	require.Eventually(t, func() bool {
		req, _ := http.NewRequest(http.MethodGet, base, nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		if err := json.Unmarshal(w.Body.Bytes(), &final); err != nil || final.Checkout == nil {
			return false
		}
		return final.Checkout.Step == checkout.StepSuccess
	}, 2*time.Second, 10*time.Millisecond)

	require.NotNil(t, final.Checkout.Booking)
	assert.Equal(t, cabin.Price+700, final.Checkout.Booking.TotalPaid)
	assert.Equal(t, 0, final.Checkout.Booking.Excursions)

	w = env.do(t, http.MethodPost, base+"/checkout/pay", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/dashboard", nil)
	dash := decode[service.Dashboard](t, w)
	assert.Equal(t, 1, dash.Bookings)
	assert.Equal(t, 2, dash.Passengers)
	assert.Equal(t, cabin.Price+700, dash.Revenue)

	w = env.do(t, http.MethodGet, "/api/admin/bookings", nil)
	assert.Len(t, decode[[]models.Booking](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/debug/events", nil)
	recent := decode[[]models.AnalyticsEvent](t, w)
	require.NotEmpty(t, recent)
	assert.Equal(t, models.EventPurchase, recent[0].Name)

	w = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutExcursionsAndBack(t *testing.T) {
	env := setupRouter(t)
	view, cabins := openSession(t, env, "v3")
	base := "/api/sessions/" + view.ID
	cabin := firstCabin(cabins, false)

	env.do(t, http.MethodPut, base+"/cabin", models.SelectCabinRequest{CabinID: cabin.ID})
	env.do(t, http.MethodPost, base+"/checkout", nil)

	w := env.do(t, http.MethodPost, base+"/checkout/back", nil)
	v := decode[session.View](t, w)
	assert.Equal(t, session.PhaseRoom, v.Phase)
	require.NotNil(t, v.Cabin)
	assert.Equal(t, cabin.ID, v.Cabin.ID)

	w = env.do(t, http.MethodPost, base+"/checkout/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	env.do(t, http.MethodPost, base+"/checkout", nil)
	env.do(t, http.MethodPost, base+"/checkout/next", nil)
	env.do(t, http.MethodPut, base+"/checkout/guest", models.GuestRequest{FirstName: "Ada", Email: "ada@example.com"})
	env.do(t, http.MethodPost, base+"/checkout/next", nil)
	w = env.do(t, http.MethodPost, base+"/checkout/next", nil)
	require.Equal(t, checkout.StepExcursion, decode[session.View](t, w).Checkout.Step)

	env.do(t, http.MethodPost, base+"/checkout/excursions/rom-01/toggle", nil)
	env.do(t, http.MethodPost, base+"/checkout/excursions/jun-01/toggle", nil)
	w = env.do(t, http.MethodPost, base+"/checkout/excursions/rom-02/toggle", nil)
	v = decode[session.View](t, w)
	assert.Equal(t, []string{"rom-01", "rom-02"}, v.Checkout.Selected)
	assert.Equal(t, cabin.Price+288, v.Checkout.Price.Total)
	assert.Equal(t, 2, v.Checkout.Price.ExcursionCount)

	w = env.do(t, http.MethodPost, base+"/checkout/pay", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "pay before the payment step")
}
