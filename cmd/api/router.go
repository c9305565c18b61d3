package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/presale-funnel/internal/infra/http/handlers"
	"github.com/xavierca1/presale-funnel/internal/infra/http/middleware"
)

// routes collects the handlers mounted by newRouter. Pages is nil when no site directory
// is configured.
type routes struct {
	Leads      *handlers.LeadHandler
	Admin      *handlers.AdminHandler
	Payments   *handlers.PaymentWebhookHandler
	Health     *handlers.HealthHandler
	Calendar   *handlers.CalendarHandler
	Scheduling *handlers.SchedulingHandler
	Pages      http.Handler

	AdminSecret    string
	AllowedOrigins []string
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/leads", rt.Leads.CaptureLead)
	r.Post("/api/leads", rt.Leads.CaptureLead)
	r.Post("/webhooks/payment", rt.Payments.Handle)
	r.Get("/scheduling/popup", rt.Scheduling.Popup)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(rt.AdminSecret))

		r.Post("/calendar/events", rt.Calendar.CreateEvent)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/leads", rt.Admin.ListLeads)
			r.Get("/leads/{id}", rt.Admin.GetLead)
			r.Patch("/leads/{id}/status", rt.Admin.UpdateStatus)
			r.Get("/analytics/traffic", rt.Admin.Traffic)
		})
	})

	if rt.Pages != nil {
		r.Handle("/*", rt.Pages)
	}
	return r
}
