package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

// MarkLeadPaidUseCase runs on payment confirmation. It flips is_paid and then relays a
// lead.paid event in the background; a relay failure is logged, the flag stays set.
type MarkLeadPaidUseCase struct {
	Repo           entity.LeadRepositoryInterface
	Forwarder      LeadForwarder
	SourceTag      string
	ForwardTimeout time.Duration
	Metrics        Metrics
	Logger         *zap.Logger

	background sync.WaitGroup
}

func NewMarkLeadPaidUseCase(
	repo entity.LeadRepositoryInterface,
	forwarder LeadForwarder,
	sourceTag string,
	logger *zap.Logger,
) *MarkLeadPaidUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkLeadPaidUseCase{
		Repo:           repo,
		Forwarder:      forwarder,
		SourceTag:      sourceTag,
		ForwardTimeout: defaultForwardTimeout,
		Metrics:        nopMetrics{},
		Logger:         logger,
	}
}

func (uc *MarkLeadPaidUseCase) Execute(ctx context.Context, input MarkLeadPaidInput) error {
	lead, err := findLead(ctx, uc.Repo, input.LeadID)
	if err != nil {
		return err
	}
	if lead.IsPaid {
		uc.Logger.Info("payment already recorded", zap.String("lead_id", lead.ID), zap.String("payment_id", input.PaymentID))
		return nil
	}

	if err := uc.Repo.MarkPaid(ctx, lead.ID); err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to mark lead as paid", Err: err}
	}
	lead.IsPaid = true
	metrics := uc.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	metrics.PaymentConfirmed()
	uc.Logger.Info("lead marked paid", zap.String("lead_id", lead.ID), zap.String("payment_id", input.PaymentID))

	if uc.Forwarder == nil {
		return nil
	}
	forwardDetached(ctx, &uc.background, detachedForward{
		forwarder: uc.Forwarder,
		payload:   entity.NewForwardedLead(lead, entity.EventLeadPaid, uc.SourceTag),
		timeout:   uc.ForwardTimeout,
		metrics:   metrics,
		logger:    uc.Logger,
	})
	return nil
}

// Wait blocks until background lead.paid relays have finished.
func (uc *MarkLeadPaidUseCase) Wait() {
	uc.background.Wait()
}
