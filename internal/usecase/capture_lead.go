package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

const defaultForwardTimeout = 10 * time.Second

type CaptureLeadUseCase struct {
	Repo           entity.LeadRepositoryInterface
	Forwarder      LeadForwarder
	EmailService   EmailService
	SourceTag      string
	ForwardTimeout time.Duration
	Metrics        Metrics
	Logger         *zap.Logger

	background sync.WaitGroup
}

func NewCaptureLeadUseCase(
	repo entity.LeadRepositoryInterface,
	forwarder LeadForwarder,
	emailService EmailService,
	sourceTag string,
	logger *zap.Logger,
) *CaptureLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureLeadUseCase{
		Repo:           repo,
		Forwarder:      forwarder,
		EmailService:   emailService,
		SourceTag:      sourceTag,
		ForwardTimeout: defaultForwardTimeout,
		Metrics:        nopMetrics{},
		Logger:         logger,
	}
}

// Execute validates, persists, and only then starts best-effort forwarding. Once the row
// is written the caller gets the lead id whatever happens downstream.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, e.Error())
		}
		uc.Logger.Info("lead rejected", zap.Strings("violations", fields))

		msg := "Invalid field values"
		if hasMissing(errs) {
			msg = "Missing required fields"
		}
		return nil, &DomainError{Code: CodeValidation, Message: msg}
	}

	lead, err := entity.NewLead(
		input.FirstName,
		input.LastName,
		input.Email,
		input.Phone,
		entity.BuyerType(strings.TrimSpace(input.BuyerType)),
		entity.LeadSource(strings.TrimSpace(input.LeadSource)),
	)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: "Invalid field values"}
	}
	lead.Timeline = optionalString(input.Timeline)
	lead.Budget = optionalString(input.Budget)
	lead.Message = optionalString(input.Message)
	lead.Attribution = entity.Attribution{
		UTMSource:   optionalString(input.UTMSource),
		UTMMedium:   optionalString(input.UTMMedium),
		UTMCampaign: optionalString(input.UTMCampaign),
		UTMTerm:     optionalString(input.UTMTerm),
		UTMContent:  optionalString(input.UTMContent),
		Referrer:    optionalString(input.Referrer),
		LandingPage: optionalString(input.LandingPage),
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		uc.Logger.Error("persist lead", zap.String("lead_id", lead.ID), zap.Error(err))
		return nil, &TechnicalError{Code: CodeDatabase, Message: "Failed to save lead", Err: err}
	}

	uc.metrics().LeadCaptured(string(lead.LeadSource))
	uc.Logger.Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("lead_source", string(lead.LeadSource)),
		zap.String("buyer_type", string(lead.BuyerType)))

	uc.forwardAsync(ctx, lead, entity.EventLeadCreated)
	uc.notifyAsync(lead)

	return &CaptureLeadOutput{LeadID: lead.ID}, nil
}

func (uc *CaptureLeadUseCase) forwardAsync(ctx context.Context, lead *entity.Lead, event string) {
	if uc.Forwarder == nil {
		return
	}
	forwardDetached(ctx, &uc.background, detachedForward{
		forwarder: uc.Forwarder,
		payload:   entity.NewForwardedLead(lead, event, uc.SourceTag),
		timeout:   uc.ForwardTimeout,
		metrics:   uc.metrics(),
		logger:    uc.Logger,
	})
}

type detachedForward struct {
	forwarder LeadForwarder
	payload   entity.ForwardedLead
	timeout   time.Duration
	metrics   Metrics
	logger    *zap.Logger
}

// forwardDetached runs the relay outside the request: it survives request cancellation
// up to its own timeout, and its errors are logged and counted, never returned.
func forwardDetached(ctx context.Context, wg *sync.WaitGroup, f detachedForward) {
	timeout := f.timeout
	if timeout <= 0 {
		timeout = defaultForwardTimeout
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := f.forwarder.Forward(fctx, f.payload); err != nil {
			f.metrics.IntegrationError("lead_forward")
			f.logger.Warn("lead forward failed",
				zap.String("lead_id", f.payload.LeadID),
				zap.String("event", f.payload.Event),
				zap.String("idempotency_key", f.payload.IdempotencyKey),
				zap.Error(err))
			return
		}
		f.logger.Debug("lead forwarded", zap.String("lead_id", f.payload.LeadID), zap.String("event", f.payload.Event))
	}()
}

func (uc *CaptureLeadUseCase) notifyAsync(lead *entity.Lead) {
	if uc.EmailService == nil {
		return
	}
	uc.background.Add(1)
	go func() {
		defer uc.background.Done()
		if err := uc.EmailService.SendLeadConfirmation(lead); err != nil {
			uc.metrics().IntegrationError("mail")
			uc.Logger.Warn("lead confirmation email failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}
		if err := uc.EmailService.SendOperatorAlert(lead); err != nil {
			uc.metrics().IntegrationError("mail")
			uc.Logger.Warn("operator alert email failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}()
}

func (uc *CaptureLeadUseCase) metrics() Metrics {
	if uc.Metrics == nil {
		return nopMetrics{}
	}
	return uc.Metrics
}

// Wait blocks until detached forwarding and notification work has finished.
func (uc *CaptureLeadUseCase) Wait() {
	uc.background.Wait()
}
