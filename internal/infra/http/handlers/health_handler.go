package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/rabbitmq/amqp091-go"
)

const (
	depHealthy       = "healthy"
	depNotConfigured = "not configured"
	probeTimeout     = 2 * time.Second
)

// Probe checks one dependency. A nil Check means the dependency is not configured,
// which does not degrade the service.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	Probes    []Probe
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler probes the lead store, the forward broker and the dedup cache.
// Only the store is mandatory; nil broker or cache report "not configured".
func NewHealthHandler(db *sqlx.DB, rabbitMQ *amqp091.Connection, rdb *redis.Client, version string) *HealthHandler {
	probes := []Probe{{Name: "database"}, {Name: "rabbitmq"}, {Name: "redis"}}
	if db != nil {
		probes[0].Check = db.PingContext
	}
	if rabbitMQ != nil {
		probes[1].Check = func(context.Context) error {
			if rabbitMQ.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	if rdb != nil {
		probes[2].Check = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return &HealthHandler{Probes: probes, Version: version, StartTime: time.Now()}
}

// Handle (GET /health) answers 503 when any configured dependency fails its probe.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	status := depHealthy
	deps := make(map[string]string, len(h.Probes))
	for _, p := range h.Probes {
		if p.Check == nil {
			deps[p.Name] = depNotConfigured
			continue
		}
		if err := p.Check(ctx); err != nil {
			deps[p.Name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		deps[p.Name] = depHealthy
	}

	code := http.StatusOK
	if status != depHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
