package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/infra/integration/gcal"
)

type EventCreator interface {
	CreateEvent(ctx context.Context, event gcal.Event) (*gcal.Event, error)
}

type CalendarHandler struct {
	Calendar EventCreator
	logger   *zap.Logger
}

func NewCalendarHandler(calendar EventCreator, logger *zap.Logger) *CalendarHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarHandler{Calendar: calendar, logger: logger}
}

type CreateEventRequest struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	TimeZone    string          `json:"timeZone"`
	Attendees   []gcal.Attendee `json:"attendees"`
}

// CreateEvent (POST /calendar/events)
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if h.Calendar == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "CALENDAR_NOT_CONFIGURED", "Calendar integration is not configured")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	start, errStart := time.Parse(time.RFC3339, req.Start)
	end, errEnd := time.Parse(time.RFC3339, req.End)
	switch {
	case strings.TrimSpace(req.Summary) == "":
		writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "summary is required")
		return
	case errStart != nil || errEnd != nil:
		writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "start and end must be RFC 3339 timestamps")
		return
	case !end.After(start):
		writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "end must be after start")
		return
	}

	created, err := h.Calendar.CreateEvent(r.Context(), gcal.Event{
		Summary:     strings.TrimSpace(req.Summary),
		Description: req.Description,
		Location:    req.Location,
		Start:       gcal.EventTime{DateTime: start.Format(time.RFC3339), TimeZone: req.TimeZone},
		End:         gcal.EventTime{DateTime: end.Format(time.RFC3339), TimeZone: req.TimeZone},
		Attendees:   req.Attendees,
	})
	if err != nil {
		h.logger.Warn("calendar event failed", zap.Error(err))
		writeErrorResponse(w, http.StatusBadGateway, "CALENDAR_ERROR", "Failed to create calendar event")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
