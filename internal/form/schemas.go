package form

import "github.com/xavierca1/presale-funnel/internal/entity"

// Field names match the ingestion endpoint's JSON keys.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldBuyerType  = "buyerType"
	FieldLeadSource = "leadSource"
	FieldTimeline   = "timeline"
	FieldBudget     = "budget"
	FieldMessage    = "message"
)

var Timelines = []string{"0-3 months", "3-6 months", "6-12 months", "12+ months"}

func buyerTypes(types ...entity.BuyerType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func leadSources() []string {
	out := make([]string, len(entity.LeadSources))
	for i, s := range entity.LeadSources {
		out[i] = string(s)
	}
	return out
}

func contactFields() Schema {
	return Schema{
		{Name: FieldFirstName, Label: "First name", Rule: Rule{Required: true, MinLength: 2, MaxLength: 80}},
		{Name: FieldLastName, Label: "Last name", Rule: Rule{Required: true, MinLength: 2, MaxLength: 80}},
		{Name: FieldEmail, Label: "Email", Rule: Rule{Required: true, MaxLength: 254, Kind: KindEmail}},
		{Name: FieldPhone, Label: "Phone", Rule: Rule{Required: true, MaxLength: 32, Kind: KindPhone, MinDigits: 10}},
	}
}

// LeadFormSchema backs the short lead form on the home and services pages.
var LeadFormSchema = append(contactFields(),
	Field{Name: FieldBuyerType, Label: "Buyer type", Rule: Rule{Required: true, Kind: KindEnum,
		Allowed: buyerTypes(entity.BuyerFirstTime, entity.BuyerInvestor, entity.BuyerUpsizer, entity.BuyerOther)}},
	Field{Name: FieldLeadSource, Label: "Lead source", Rule: Rule{Required: true, Kind: KindEnum, Allowed: leadSources()}},
	Field{Name: FieldMessage, Label: "Message", Rule: Rule{MaxLength: 2000}},
)

// DeveloperAdvisorySchema backs the developer/agent landing page form, which offers
// assignment buyers instead of upsizers.
var DeveloperAdvisorySchema = append(contactFields(),
	Field{Name: FieldBuyerType, Label: "Buyer type", Rule: Rule{Required: true, Kind: KindEnum,
		Allowed: buyerTypes(entity.BuyerFirstTime, entity.BuyerInvestor, entity.BuyerAssignment, entity.BuyerOther)}},
	Field{Name: FieldLeadSource, Label: "Lead source", Rule: Rule{Required: true, Kind: KindEnum, Allowed: leadSources()}},
	Field{Name: FieldMessage, Label: "Message", Rule: Rule{MaxLength: 2000}},
)

// BookingSchema backs the multi-step booking funnel.
var BookingSchema = append(contactFields(),
	Field{Name: FieldBuyerType, Label: "Buyer type", Rule: Rule{Required: true, Kind: KindEnum,
		Allowed: buyerTypes(entity.BuyerTypes...)}},
	Field{Name: FieldLeadSource, Label: "Lead source", Rule: Rule{Required: true, Kind: KindEnum, Allowed: leadSources()}},
	Field{Name: FieldTimeline, Label: "Timeline", Rule: Rule{Required: true, Kind: KindEnum, Allowed: Timelines}},
	Field{Name: FieldBudget, Label: "Budget", Rule: Rule{MaxLength: 64}},
	Field{Name: FieldMessage, Label: "Message", Rule: Rule{MaxLength: 2000}},
)

// BookingSteps splits BookingSchema into the booking funnel's screens.
var BookingSteps = []Step{
	{Name: "contact", Fields: []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone}},
	{Name: "profile", Fields: []string{FieldBuyerType, FieldLeadSource}},
	{Name: "plans", Fields: []string{FieldTimeline, FieldBudget, FieldMessage}},
}
