package entity

import "time"

const (
	EventLeadCreated = "lead.created"
	EventLeadPaid    = "lead.paid"
)

// ForwardedLead is the normalized copy of a persisted lead relayed to automation endpoints.
type ForwardedLead struct {
	Event          string     `json:"event"`
	IdempotencyKey string     `json:"idempotency_key"`
	Source         string     `json:"source"`
	LeadID         string     `json:"lead_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	BuyerType      BuyerType  `json:"buyer_type"`
	LeadSource     LeadSource `json:"lead_source"`
	Timeline       *string    `json:"timeline,omitempty"`
	Budget         *string    `json:"budget,omitempty"`
	Message        *string    `json:"message,omitempty"`
	Attribution
	Status    LeadStatus `json:"status"`
	IsPaid    bool       `json:"is_paid"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewForwardedLead builds the relay payload. The idempotency key is derived from the
// lead id and the event so a redelivered message can be recognized downstream.
func NewForwardedLead(l *Lead, event, sourceTag string) ForwardedLead {
	key := "lead:" + l.ID
	if event != EventLeadCreated {
		key += ":" + event
	}
	return ForwardedLead{
		Event:          event,
		IdempotencyKey: key,
		Source:         sourceTag,
		LeadID:         l.ID,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Email:          l.Email,
		Phone:          l.Phone,
		BuyerType:      l.BuyerType,
		LeadSource:     l.LeadSource,
		Timeline:       l.Timeline,
		Budget:         l.Budget,
		Message:        l.Message,
		Attribution:    l.Attribution,
		Status:         l.Status,
		IsPaid:         l.IsPaid,
		CreatedAt:      l.CreatedAt,
	}
}
