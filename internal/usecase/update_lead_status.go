package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

type UpdateLeadStatusUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Logger *zap.Logger
}

func NewUpdateLeadStatusUseCase(repo entity.LeadRepositoryInterface, logger *zap.Logger) *UpdateLeadStatusUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateLeadStatusUseCase{Repo: repo, Logger: logger}
}

// Execute moves a lead along new → contacted → qualified → closed|lost. Callers must
// already be authenticated operators.
func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*entity.Lead, error) {
	if !input.Status.Valid() {
		return nil, &DomainError{Code: CodeValidation, Message: "unknown status"}
	}

	lead, err := findLead(ctx, uc.Repo, input.LeadID)
	if err != nil {
		return nil, err
	}

	if !lead.Status.CanTransitionTo(input.Status) {
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("cannot move lead from %s to %s", lead.Status, input.Status),
		}
	}

	err = uc.Repo.UpdateStatus(ctx, lead.ID, lead.Status, input.Status)
	switch {
	case errors.Is(err, entity.ErrInvalidStatusTransition):
		uc.Logger.Info("lead status changed concurrently",
			zap.String("lead_id", lead.ID),
			zap.String("expected", string(lead.Status)),
			zap.String("to", string(input.Status)))
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("lead is no longer %s", lead.Status),
		}
	case errors.Is(err, entity.ErrLeadNotFound):
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found"}
	case err != nil:
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to update lead status", Err: err}
	}

	uc.Logger.Info("lead status changed",
		zap.String("lead_id", lead.ID),
		zap.String("from", string(lead.Status)),
		zap.String("to", string(input.Status)))

	lead.Status = input.Status
	return lead, nil
}

func findLead(ctx context.Context, repo entity.LeadRepositoryInterface, id string) (*entity.Lead, error) {
	lead, err := repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found"}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to load lead", Err: err}
	}
	return lead, nil
}
