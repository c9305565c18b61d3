package usecase

import (
	"context"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// QueryLeadsUseCase backs the admin dashboard's read side.
type QueryLeadsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewQueryLeadsUseCase(repo entity.LeadRepositoryInterface) *QueryLeadsUseCase {
	return &QueryLeadsUseCase{Repo: repo}
}

func (uc *QueryLeadsUseCase) List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &DomainError{Code: CodeValidation, Message: "unknown status"}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	leads, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to list leads", Err: err}
	}
	return leads, nil
}

func (uc *QueryLeadsUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	return findLead(ctx, uc.Repo, id)
}

// Traffic groups captured leads by acquisition signal.
func (uc *QueryLeadsUseCase) Traffic(ctx context.Context) (*TrafficReport, error) {
	report := &TrafficReport{}
	groups := []struct {
		column string
		dest   *[]entity.CountBucket
	}{
		{"lead_source", &report.ByLeadSource},
		{"utm_source", &report.ByUTMSource},
		{"landing_page", &report.ByLanding},
	}

	for _, g := range groups {
		buckets, err := uc.Repo.CountBy(ctx, g.column)
		if err != nil {
			return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to aggregate leads", Err: err}
		}
		*g.dest = buckets
	}

	for _, b := range report.ByLeadSource {
		report.Total += b.Count
	}
	return report, nil
}
