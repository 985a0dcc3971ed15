package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminDashboard - GET /api/admin/dashboard
// Выручка, число бронирований и пассажиров
func (h *Handlers) AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Admin.Dashboard(c.Request.Context()))
}

// AdminBookings - GET /api/admin/bookings
func (h *Handlers) AdminBookings(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Admin.Bookings(c.Request.Context()))
}

// AdminEvents - GET /api/admin/events
func (h *Handlers) AdminEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Admin.Events(c.Request.Context()))
}

// DebugEvents - GET /api/debug/events
// Последние события для отладочной панели
func (h *Handlers) DebugEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.recent.Snapshot())
}

// EventStream - GET /api/events/stream
// Поток событий по WebSocket
func (h *Handlers) EventStream(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
