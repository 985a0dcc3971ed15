package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meridian/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveEvents(t *testing.T) {
	m := New()

	m.Observe(models.AnalyticsEvent{Name: models.EventViewContent})
	m.Observe(models.AnalyticsEvent{Name: models.EventViewContent})
	m.Observe(models.AnalyticsEvent{Name: models.EventPurchase, Payload: map[string]any{"value": int64(1150)}})
	m.Observe(models.AnalyticsEvent{Name: models.EventPurchase, Payload: map[string]any{"value": float64(1488)}})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.eventsTracked.WithLabelValues(models.EventViewContent)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.bookings))
	assert.Equal(t, float64(2638), testutil.ToFloat64(m.revenue))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RegisterGauge("active_sessions", "Open booking sessions.", func() float64 { return 3 })
	m.ObserveRequest(http.MethodGet, "/api/voyages", http.StatusOK, 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "meridian_active_sessions 3"))
	assert.True(t, strings.Contains(body, `meridian_http_requests_total{method="GET",route="/api/voyages",status="200"} 1`))
}
