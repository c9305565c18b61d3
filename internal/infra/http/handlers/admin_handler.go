package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
	"github.com/xavierca1/presale-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/presale-funnel/internal/usecase"
)

type LeadQuerier interface {
	List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error)
	Get(ctx context.Context, id string) (*entity.Lead, error)
	Traffic(ctx context.Context) (*usecase.TrafficReport, error)
}

type LeadStatusUpdater interface {
	Execute(ctx context.Context, input usecase.UpdateLeadStatusInput) (*entity.Lead, error)
}

// AdminHandler serves the operator dashboard. Routes are mounted behind middleware.AdminAuth.
type AdminHandler struct {
	Query  LeadQuerier
	Status LeadStatusUpdater
	logger *zap.Logger
}

func NewAdminHandler(query LeadQuerier, status LeadStatusUpdater, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{Query: query, Status: status, logger: logger}
}

type ListLeadsResponse struct {
	Leads  []entity.Lead `json:"leads"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListLeads (GET /admin/leads?status=&limit=&offset=)
func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.LeadFilter{Status: entity.LeadStatus(q.Get("status"))}
	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "limit must be a number")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "offset must be a number")
			return
		}
	}

	leads, err := h.Query.List(r.Context(), filter)
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = len(leads)
	}
	writeJSON(w, http.StatusOK, ListLeadsResponse{Leads: leads, Limit: limit, Offset: max(filter.Offset, 0)})
}

// GetLead (GET /admin/leads/{id})
func (h *AdminHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Query.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateStatus (PATCH /admin/leads/{id}/status)
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "status is required")
		return
	}

	lead, err := h.Status.Execute(r.Context(), usecase.UpdateLeadStatusInput{
		LeadID: chi.URLParam(r, "id"),
		Status: entity.LeadStatus(body.Status),
	})
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}

	h.logger.Info("operator updated lead",
		zap.String("operator", middleware.Operator(r.Context())),
		zap.String("lead_id", lead.ID),
		zap.String("status", string(lead.Status)))
	writeJSON(w, http.StatusOK, lead)
}

// Traffic (GET /admin/analytics/traffic)
func (h *AdminHandler) Traffic(w http.ResponseWriter, r *http.Request) {
	report, err := h.Query.Traffic(r.Context())
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) writeUseCaseError(w http.ResponseWriter, err error) {
	code := usecase.ErrorCode(err)
	switch code {
	case usecase.CodeLeadNotFound:
		writeErrorResponse(w, http.StatusNotFound, code, err.Error())
	case usecase.CodeInvalidTransition:
		writeErrorResponse(w, http.StatusConflict, code, err.Error())
	case usecase.CodeValidation:
		writeErrorResponse(w, http.StatusBadRequest, code, err.Error())
	default:
		h.logger.Error("admin request failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeDatabase, "internal error")
	}
}
