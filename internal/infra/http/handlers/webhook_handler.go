package handlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/usecase"
)

const maxWebhookBody = 1 << 20

type LeadPaymentMarker interface {
	Execute(ctx context.Context, input usecase.MarkLeadPaidInput) error
}

// PaymentWebhookHandler receives gateway notifications. The gateway signs the raw body as
// hex(sha256(body + secret)) in X-Payment-Signature.
type PaymentWebhookHandler struct {
	MarkPaidUC LeadPaymentMarker
	Secret     string
	logger     *zap.Logger
}

func NewPaymentWebhookHandler(markPaidUC LeadPaymentMarker, secret string, logger *zap.Logger) *PaymentWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWebhookHandler{MarkPaidUC: markPaidUC, Secret: secret, logger: logger}
}

type paymentEvent struct {
	Event   string `json:"event"`
	Payment struct {
		ID                string `json:"id"`
		ExternalReference string `json:"externalReference"`
	} `json:"payment"`
}

func (h *PaymentWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad body", http.StatusBadRequest)
		return
	}

	if !h.validSignature(body, r.Header.Get("X-Payment-Signature")) {
		h.logger.Warn("payment webhook rejected", zap.String("reason", "signature"))
		writeErrorResponse(w, http.StatusUnauthorized, "", "Invalid signature")
		return
	}

	var event paymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}

	if event.Event != "PAYMENT_RECEIVED" && event.Event != "PAYMENT_CONFIRMED" {
		w.WriteHeader(http.StatusOK)
		return
	}

	err = h.MarkPaidUC.Execute(r.Context(), usecase.MarkLeadPaidInput{
		LeadID:    event.Payment.ExternalReference,
		PaymentID: event.Payment.ID,
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case usecase.IsDomainError(err):
		// unknown lead: acknowledge so the gateway stops retrying
		h.logger.Warn("payment for unknown lead",
			zap.String("payment_id", event.Payment.ID),
			zap.String("external_reference", event.Payment.ExternalReference))
		w.WriteHeader(http.StatusOK)
	default:
		h.logger.Error("mark lead paid", zap.String("payment_id", event.Payment.ID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *PaymentWebhookHandler) validSignature(body []byte, signature string) bool {
	if h.Secret == "" || signature == "" {
		return false
	}
	sum := sha256.Sum256(append(body, h.Secret...))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
