// Package tracking reads acquisition signals for a funnel entry.
package tracking

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

const (
	KeySource   = "utm_source"
	KeyMedium   = "utm_medium"
	KeyCampaign = "utm_campaign"
	KeyTerm     = "utm_term"
	KeyContent  = "utm_content"
)

// FromURL extracts the tracking context from the page URL the visitor landed on and the
// referring document URL. An unparsable page URL yields landing page "/".
func FromURL(pageURL, referrer string) entity.TrackingContext {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		u = &url.URL{}
	}
	return build(u.Query(), u.Path, referrer)
}

// FromRequest extracts the tracking context of a server-rendered funnel page.
func FromRequest(r *http.Request) entity.TrackingContext {
	return build(r.URL.Query(), r.URL.Path, r.Referer())
}

func build(q url.Values, path, referrer string) entity.TrackingContext {
	if path == "" {
		path = "/"
	}
	return entity.TrackingContext{
		UTMSource:   optional(q.Get(KeySource)),
		UTMMedium:   optional(q.Get(KeyMedium)),
		UTMCampaign: optional(q.Get(KeyCampaign)),
		UTMTerm:     optional(q.Get(KeyTerm)),
		UTMContent:  optional(q.Get(KeyContent)),
		Referrer:    optional(referrer),
		LandingPage: path,
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
