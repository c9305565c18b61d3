package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/admin/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/admin/leads/{id}", "404"))

	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/leads/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/admin/leads/{id}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordLeadCaptured(t *testing.T) {
	before := testutil.ToFloat64(leadsCaptured.WithLabelValues("tiktok"))
	RecordLeadCaptured("tiktok")
	assert.Equal(t, 1.0, testutil.ToFloat64(leadsCaptured.WithLabelValues("tiktok"))-before)
}

func TestLeadMetrics(t *testing.T) {
	var m LeadMetrics
	payments := testutil.ToFloat64(paymentsConfirmed)
	mailErrors := testutil.ToFloat64(integrationErrors.WithLabelValues("mail"))

	m.PaymentConfirmed()
	m.IntegrationError("mail")

	assert.Equal(t, 1.0, testutil.ToFloat64(paymentsConfirmed)-payments)
	assert.Equal(t, 1.0, testutil.ToFloat64(integrationErrors.WithLabelValues("mail"))-mailErrors)
}
