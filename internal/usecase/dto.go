package usecase

import "github.com/xavierca1/presale-funnel/internal/entity"

// CaptureLeadInput is the raw, untrusted ingestion payload.
type CaptureLeadInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BuyerType  string `json:"buyerType"`
	LeadSource string `json:"leadSource"`

	Timeline string `json:"timeline"`
	Budget   string `json:"budget"`
	Message  string `json:"message"`

	UTMSource   string `json:"utmSource"`
	UTMMedium   string `json:"utmMedium"`
	UTMCampaign string `json:"utmCampaign"`
	UTMTerm     string `json:"utmTerm"`
	UTMContent  string `json:"utmContent"`
	Referrer    string `json:"referrer"`
	LandingPage string `json:"landingPage"`
}

type CaptureLeadOutput struct {
	LeadID string `json:"leadId"`
}

type UpdateLeadStatusInput struct {
	LeadID string            `json:"-"`
	Status entity.LeadStatus `json:"status"`
}

type MarkLeadPaidInput struct {
	LeadID    string
	PaymentID string
}

type TrafficReport struct {
	Total        int                  `json:"total"`
	ByLeadSource []entity.CountBucket `json:"by_lead_source"`
	ByUTMSource  []entity.CountBucket `json:"by_utm_source"`
	ByLanding    []entity.CountBucket `json:"by_landing_page"`
}
