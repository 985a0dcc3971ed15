package handlers

import (
	"errors"
	"net/http"

	apperrors "meridian/internal/errors"
	"meridian/internal/logger"
	"meridian/internal/service"
	"meridian/internal/session"
	"meridian/internal/tracker"
	"meridian/internal/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
	sessions *session.Manager
	recent   *tracker.Recent
	hub      *websocket.Hub
}

func NewHandlers(services *service.Services, sessions *session.Manager, recent *tracker.Recent, hub *websocket.Hub) *Handlers {
	return &Handlers{
		services: services,
		sessions: sessions,
		recent:   recent,
		hub:      hub,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrVoyageNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrCabinNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidPackage):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrCabinUnavailable),
		errors.Is(err, apperrors.ErrNoCabinSelected),
		errors.Is(err, apperrors.ErrCheckoutNotStarted),
		errors.Is(err, apperrors.ErrCheckoutInProgress),
		errors.Is(err, apperrors.ErrCheckoutClosed),
		errors.Is(err, apperrors.ErrPaymentNotReady),
		errors.Is(err, apperrors.ErrPaymentInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError переводит доменную ошибку в HTTP ответ
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
