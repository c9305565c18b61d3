package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

const (
	maxAttributionLength = 256
	maxURLLength         = 2048
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateCaptureLeadInput re-checks the ingestion payload server side without trusting
// anything the funnel validated.
func ValidateCaptureLeadInput(input CaptureLeadInput) []ValidationError {
	var errors []ValidationError

	required := []struct {
		field, value string
	}{
		{"firstName", input.FirstName},
		{"lastName", input.LastName},
		{"email", input.Email},
		{"phone", input.Phone},
		{"buyerType", input.BuyerType},
		{"leadSource", input.LeadSource},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errors = append(errors, ValidationError{r.field, "is required"})
		}
	}
	if len(errors) > 0 {
		return errors
	}

	limits := []struct {
		field, value string
		max          int
	}{
		{"firstName", input.FirstName, 80},
		{"lastName", input.LastName, 80},
		{"email", input.Email, 254},
		{"phone", input.Phone, 32},
		{"timeline", input.Timeline, 64},
		{"budget", input.Budget, 64},
		{"message", input.Message, 2000},
		{"utmSource", input.UTMSource, maxAttributionLength},
		{"utmMedium", input.UTMMedium, maxAttributionLength},
		{"utmCampaign", input.UTMCampaign, maxAttributionLength},
		{"utmTerm", input.UTMTerm, maxAttributionLength},
		{"utmContent", input.UTMContent, maxAttributionLength},
		{"referrer", input.Referrer, maxURLLength},
		{"landingPage", input.LandingPage, maxURLLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(strings.TrimSpace(l.value)) > l.max {
			errors = append(errors, ValidationError{l.field, fmt.Sprintf("is longer than %d characters", l.max)})
		}
	}

	if !entity.BuyerType(strings.TrimSpace(input.BuyerType)).Valid() {
		errors = append(errors, ValidationError{"buyerType", "is not a known buyer type"})
	}
	if !entity.LeadSource(strings.TrimSpace(input.LeadSource)).Valid() {
		errors = append(errors, ValidationError{"leadSource", "is not a known lead source"})
	}
	return errors
}

func hasMissing(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Message == "is required" {
			return true
		}
	}
	return false
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
