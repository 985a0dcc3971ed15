package handlers

import (
	"net/http"
	"strconv"

	"meridian/internal/models"
	"meridian/internal/service"

	"github.com/gin-gonic/gin"
)

// ListVoyages - GET /api/voyages
// Получить список круизов с фильтрами
func (h *Handlers) ListVoyages(c *gin.Context) {
	favorites, err := models.ParseFlexibleBool(c.Query("favorites"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guests := 0
	if raw := c.Query("guests"); raw != "" {
		guests, err = strconv.Atoi(raw)
		if err != nil || guests < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guests must be a non-negative integer"})
			return
		}
	}

	voyages := h.services.Voyages.List(c.Request.Context(), service.VoyageFilter{
		Location:      c.Query("location"),
		FavoritesOnly: favorites.Bool(),
		Query:         c.Query("query"),
		Guests:        guests,
	})

	c.JSON(http.StatusOK, voyages)
}

// ListLocations - GET /api/voyages/locations
func (h *Handlers) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, models.LocationsResponse{Locations: h.services.Voyages.Locations()})
}

// GetVoyage - GET /api/voyages/:id
// Получить круиз; просмотр записывается в аналитику
func (h *Handlers) GetVoyage(c *gin.Context) {
	voyage, err := h.services.Voyages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voyage)
}

// ListExcursions - GET /api/voyages/:id/excursions
// Экскурсии всех портов маршрута
func (h *Handlers) ListExcursions(c *gin.Context) {
	excursions, err := h.services.Voyages.Excursions(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, excursions)
}

// GetFavorites - GET /api/favorites
func (h *Handlers) GetFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, models.FavoritesResponse{Favorites: h.services.Voyages.Favorites(c.Request.Context())})
}

// ToggleFavorite - POST /api/favorites/:id/toggle
// Добавить круиз в избранное или убрать из него
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	favorites, err := h.services.Voyages.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.FavoritesResponse{Favorites: favorites})
}
