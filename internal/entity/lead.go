package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound            = errors.New("lead not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

type BuyerType string

const (
	BuyerFirstTime  BuyerType = "first-time-buyer"
	BuyerInvestor   BuyerType = "investor"
	BuyerUpsizer    BuyerType = "upsizer-downsizer"
	BuyerAssignment BuyerType = "assignment-buyer"
	BuyerOther      BuyerType = "other"
)

// BuyerTypes is the union of every funnel variant's buyer-type options.
var BuyerTypes = []BuyerType{BuyerFirstTime, BuyerInvestor, BuyerUpsizer, BuyerAssignment, BuyerOther}

func (b BuyerType) Valid() bool {
	for _, v := range BuyerTypes {
		if v == b {
			return true
		}
	}
	return false
}

type LeadSource string

const (
	SourceInstagram LeadSource = "instagram"
	SourceTikTok    LeadSource = "tiktok"
	SourceYouTube   LeadSource = "youtube"
	SourceReferral  LeadSource = "referral"
	SourceGoogle    LeadSource = "google"
	SourceOther     LeadSource = "other"
)

var LeadSources = []LeadSource{SourceInstagram, SourceTikTok, SourceYouTube, SourceReferral, SourceGoogle, SourceOther}

func (s LeadSource) Valid() bool {
	for _, v := range LeadSources {
		if v == s {
			return true
		}
	}
	return false
}

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusClosed    LeadStatus = "closed"
	StatusLost      LeadStatus = "lost"
)

var statusTransitions = map[LeadStatus][]LeadStatus{
	StatusNew:       {StatusContacted, StatusLost},
	StatusContacted: {StatusQualified, StatusLost},
	StatusQualified: {StatusClosed, StatusLost},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusClosed, StatusLost:
		return true
	}
	return false
}

// CanTransitionTo reports whether an operator may move a lead from s to next.
// Closed and lost are terminal.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Attribution holds the acquisition signals captured once at funnel entry.
// Every field is optional; nil means the signal was absent.
type Attribution struct {
	UTMSource   *string `json:"utm_source,omitempty" db:"utm_source"`
	UTMMedium   *string `json:"utm_medium,omitempty" db:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign,omitempty" db:"utm_campaign"`
	UTMTerm     *string `json:"utm_term,omitempty" db:"utm_term"`
	UTMContent  *string `json:"utm_content,omitempty" db:"utm_content"`
	Referrer    *string `json:"referrer,omitempty" db:"referrer"`
	LandingPage *string `json:"landing_page,omitempty" db:"landing_page"`
}

type Lead struct {
	ID         string     `json:"id" db:"id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Phone      string     `json:"phone" db:"phone"`
	BuyerType  BuyerType  `json:"buyer_type" db:"buyer_type"`
	LeadSource LeadSource `json:"lead_source" db:"lead_source"`

	Timeline *string `json:"timeline,omitempty" db:"timeline"`
	Budget   *string `json:"budget,omitempty" db:"budget"`
	Message  *string `json:"message,omitempty" db:"message"`

	Attribution

	// Only an operator mutates these.
	Status    LeadStatus `json:"status" db:"status"`
	IsPaid    bool       `json:"is_paid" db:"is_paid"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// NewLead normalizes the identity fields, assigns an id and validates the invariants
// that hold at creation time.
func NewLead(firstName, lastName, email, phone string, buyerType BuyerType, source LeadSource) (*Lead, error) {
	lead := &Lead{
		ID:         uuid.New().String(),
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Phone:      strings.TrimSpace(phone),
		BuyerType:  buyerType,
		LeadSource: source,
		Status:     StatusNew,
		IsPaid:     false,
		CreatedAt:  time.Now().UTC(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.FirstName == "" {
		return errors.New("first name is required")
	}
	if l.LastName == "" {
		return errors.New("last name is required")
	}
	if l.Email == "" {
		return errors.New("email is required")
	}
	if l.Phone == "" {
		return errors.New("phone is required")
	}
	if !l.BuyerType.Valid() {
		return errors.New("buyer type is invalid")
	}
	if !l.LeadSource.Valid() {
		return errors.New("lead source is invalid")
	}
	return nil
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// LeadFilter narrows admin listings.
type LeadFilter struct {
	Status LeadStatus
	Limit  int
	Offset int
}

// CountBucket is one row of a grouped lead count.
type CountBucket struct {
	Key   string `json:"key" db:"key"`
	Count int    `json:"count" db:"count"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]Lead, error)
	// UpdateStatus moves a lead from one status to another. It fails with
	// ErrInvalidStatusTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to LeadStatus) error
	MarkPaid(ctx context.Context, id string) error
	CountBy(ctx context.Context, column string) ([]CountBucket, error)
}
