package usecase

import (
	"context"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

// LeadForwarder relays a persisted lead to an automation endpoint or to the forward queue.
type LeadForwarder interface {
	Forward(ctx context.Context, lead entity.ForwardedLead) error
}

type EmailService interface {
	SendLeadConfirmation(lead *entity.Lead) error
	SendOperatorAlert(lead *entity.Lead) error
}

// Metrics counts lead lifecycle events. The Prometheus implementation lives with the
// HTTP middleware; nopMetrics is used when none is given.
type Metrics interface {
	LeadCaptured(source string)
	PaymentConfirmed()
	IntegrationError(service string)
}

type nopMetrics struct{}

func (nopMetrics) LeadCaptured(string)     {}
func (nopMetrics) PaymentConfirmed()       {}
func (nopMetrics) IntegrationError(string) {}
