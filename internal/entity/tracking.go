package entity

// TrackingContext is the flat attribution record read once when a funnel becomes visible.
// The five campaign keys and the referrer are nil when absent, never empty strings.
// LandingPage is always set.
type TrackingContext struct {
	UTMSource   *string `json:"utmSource"`
	UTMMedium   *string `json:"utmMedium"`
	UTMCampaign *string `json:"utmCampaign"`
	UTMTerm     *string `json:"utmTerm"`
	UTMContent  *string `json:"utmContent"`
	Referrer    *string `json:"referrer"`
	LandingPage string  `json:"landingPage"`
}
