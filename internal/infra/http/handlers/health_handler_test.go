package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		probes     []Probe
		wantStatus int
		wantDeps   map[string]string
	}{
		{
			name:       "all healthy",
			probes:     []Probe{{Name: "database", Check: ok}, {Name: "redis", Check: ok}},
			wantStatus: http.StatusOK,
			wantDeps:   map[string]string{"database": "healthy", "redis": "healthy"},
		},
		{
			name:       "optional dependency absent",
			probes:     []Probe{{Name: "database", Check: ok}, {Name: "rabbitmq"}},
			wantStatus: http.StatusOK,
			wantDeps:   map[string]string{"database": "healthy", "rabbitmq": "not configured"},
		},
		{
			name:       "store down",
			probes:     []Probe{{Name: "database", Check: down}, {Name: "redis", Check: ok}},
			wantStatus: http.StatusServiceUnavailable,
			wantDeps:   map[string]string{"database": "unhealthy: connection refused", "redis": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{Probes: tt.probes, Version: "test"}
			rr := httptest.NewRecorder()
			h.Handle(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantDeps, body.Dependencies)
			assert.Equal(t, "test", body.Version)
		})
	}
}

func TestNewHealthHandlerWithoutDependencies(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil, "v1")
	rr := httptest.NewRecorder()
	h.Handle(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Len(t, body.Dependencies, 3)
}
