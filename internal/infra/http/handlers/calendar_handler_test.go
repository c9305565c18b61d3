package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/presale-funnel/internal/infra/integration/gcal"
)

type MockEventCreator struct {
	mock.Mock
}

func (m *MockEventCreator) CreateEvent(ctx context.Context, event gcal.Event) (*gcal.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.Event), args.Error(1)
}

func TestCalendarCreateEvent(t *testing.T) {
	valid := `{"summary":"Consultation","start":"2026-06-01T10:00:00-07:00","end":"2026-06-01T10:30:00-07:00","timeZone":"America/Vancouver"}`

	tests := []struct {
		name       string
		body       string
		result     *gcal.Event
		err        error
		wantStatus int
	}{
		{"created", valid, &gcal.Event{ID: "evt_1", Summary: "Consultation"}, nil, http.StatusCreated},
		{"upstream failure", valid, nil, errors.New("token exchange: status 400"), http.StatusBadGateway},
		{"missing summary", `{"start":"2026-06-01T10:00:00Z","end":"2026-06-01T11:00:00Z"}`, nil, nil, http.StatusBadRequest},
		{"bad timestamps", `{"summary":"x","start":"tomorrow","end":"later"}`, nil, nil, http.StatusBadRequest},
		{"end before start", `{"summary":"x","start":"2026-06-01T11:00:00Z","end":"2026-06-01T10:00:00Z"}`, nil, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := new(MockEventCreator)
			if tt.result != nil || tt.err != nil {
				cal.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e gcal.Event) bool {
					return e.Summary == "Consultation" && e.Start.TimeZone == "America/Vancouver"
				})).Return(tt.result, tt.err)
			}

			rr := httptest.NewRecorder()
			NewCalendarHandler(cal, nil).CreateEvent(rr, httptest.NewRequest(http.MethodPost, "/calendar/events", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			cal.AssertExpectations(t)
		})
	}
}

func TestCalendarNotConfigured(t *testing.T) {
	rr := httptest.NewRecorder()
	NewCalendarHandler(nil, nil).CreateEvent(rr, httptest.NewRequest(http.MethodPost, "/calendar/events", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
