package kommo

import (
	"fmt"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

type CreateLeadInput struct {
	ExternalID string
	Title      string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Tags       []string
}

// NewCreateLeadInput tags the CRM lead with its acquisition signals so the sales team can
// filter by channel.
func NewCreateLeadInput(lead entity.ForwardedLead) CreateLeadInput {
	tags := []string{
		string(lead.BuyerType),
		"source:" + string(lead.LeadSource),
		lead.Source,
	}
	if lead.UTMCampaign != nil {
		tags = append(tags, "campaign:"+*lead.UTMCampaign)
	}
	if lead.Event == entity.EventLeadPaid {
		tags = append(tags, "paid")
	}
	return CreateLeadInput{
		ExternalID: lead.LeadID,
		Title:      fmt.Sprintf("%s %s - %s", lead.FirstName, lead.LastName, lead.BuyerType),
		FirstName:  lead.FirstName,
		LastName:   lead.LastName,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Tags:       tags,
	}
}

type ContactResponse struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type contactsResponse struct {
	Embedded struct {
		Contacts []ContactResponse `json:"contacts"`
	} `json:"_embedded"`
}

type leadsResponse struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}
