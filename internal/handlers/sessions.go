package handlers

import (
	"net/http"

	"meridian/internal/models"
	"meridian/internal/session"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) respondView(c *gin.Context, status int, view session.View, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, view)
}

// CreateSession - POST /api/sessions
// Открыть сессию бронирования для круиза
func (h *Handlers) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.sessions.Create(req.VoyageID)
	h.respondView(c, http.StatusCreated, view, err)
}

// GetSession - GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	view, err := h.sessions.Get(c.Param("id"))
	h.respondView(c, http.StatusOK, view, err)
}

// CloseSession - DELETE /api/sessions/:id
// Закрыть сессию; незавершенная оплата отменяется
func (h *Handlers) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDeck - GET /api/sessions/:id/deck
// План палубы сессии
func (h *Handlers) GetDeck(c *gin.Context) {
	cabins, err := h.sessions.Deck(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.DeckResponse{Cabins: cabins}
	if view.Cabin != nil {
		resp.Selected = view.Cabin.ID
	}
	c.JSON(http.StatusOK, resp)
}

// SelectCabin - PUT /api/sessions/:id/cabin
// Выбрать каюту; занятая каюта не выбирается
func (h *Handlers) SelectCabin(c *gin.Context) {
	var req models.SelectCabinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.sessions.SelectCabin(c.Param("id"), req.CabinID)
	h.respondView(c, http.StatusOK, view, err)
}

// StartCheckout - POST /api/sessions/:id/checkout
// Перейти к оформлению с выбранной каютой
func (h *Handlers) StartCheckout(c *gin.Context) {
	view, err := h.sessions.StartCheckout(c.Request.Context(), c.Param("id"))
	h.respondView(c, http.StatusOK, view, err)
}

// CheckoutNext - POST /api/sessions/:id/checkout/next
// Следующий шаг; если переход не разрешен, шаг не меняется
func (h *Handlers) CheckoutNext(c *gin.Context) {
	view, err := h.sessions.Next(c.Request.Context(), c.Param("id"))
	h.respondView(c, http.StatusOK, view, err)
}

// CheckoutBack - POST /api/sessions/:id/checkout/back
func (h *Handlers) CheckoutBack(c *gin.Context) {
	view, err := h.sessions.Back(c.Request.Context(), c.Param("id"))
	h.respondView(c, http.StatusOK, view, err)
}

// UpdateGuest - PUT /api/sessions/:id/checkout/guest
func (h *Handlers) UpdateGuest(c *gin.Context) {
	var req models.GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.sessions.SetGuest(c.Param("id"), models.GuestInfo{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	h.respondView(c, http.StatusOK, view, err)
}

// SelectPackage - PUT /api/sessions/:id/checkout/package
func (h *Handlers) SelectPackage(c *gin.Context) {
	var req models.SelectPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.sessions.SelectPackage(c.Param("id"), req.Package)
	h.respondView(c, http.StatusOK, view, err)
}

// ToggleExcursion - POST /api/sessions/:id/checkout/excursions/:excursionId/toggle
func (h *Handlers) ToggleExcursion(c *gin.Context) {
	view, err := h.sessions.ToggleExcursion(c.Param("id"), c.Param("excursionId"))
	h.respondView(c, http.StatusOK, view, err)
}

// Pay - POST /api/sessions/:id/checkout/pay
// Запустить оплату; результат появляется в сессии после задержки
func (h *Handlers) Pay(c *gin.Context) {
	view, err := h.sessions.Pay(c.Param("id"))
	h.respondView(c, http.StatusAccepted, view, err)
}
