package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/usecase"
)

const maxLeadBody = 64 << 10

type LeadCapturer interface {
	Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error)
}

type LeadHandler struct {
	CaptureUC   LeadCapturer
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

func NewLeadHandler(captureUC LeadCapturer, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		CaptureUC:   captureUC,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP
		logger:      logger,
	}
}

// Close stops the limiter's eviction loop.
func (h *LeadHandler) Close() {
	h.rateLimiter.Stop()
}

// CaptureLead (POST /leads)
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeErrorResponse(w, http.StatusTooManyRequests, "", "Too many requests. Please try again later.")
		return
	}

	var input usecase.CaptureLeadInput
	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBody)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "", "Request body too large")
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, "", "Missing required fields")
		return
	}

	output, err := h.CaptureUC.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeErrorResponse(w, http.StatusBadRequest, "", err.Error())
			return
		}
		h.logger.Error("capture lead", zap.String("client_ip", clientIP), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "", "Failed to save lead")
		return
	}

	writeJSON(w, http.StatusCreated, output)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
