// Package leadclient submits completed funnel records to the ingestion endpoint.
package leadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

// ErrSubmissionFailed is the single failure signal for network errors, non-2xx statuses
// and malformed bodies alike.
var ErrSubmissionFailed = errors.New("lead submission failed")

type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Payload is the ingestion endpoint's request body.
type Payload struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	BuyerType   string  `json:"buyerType"`
	LeadSource  string  `json:"leadSource"`
	Timeline    string  `json:"timeline,omitempty"`
	Budget      string  `json:"budget,omitempty"`
	Message     string  `json:"message,omitempty"`
	UTMSource   *string `json:"utmSource"`
	UTMMedium   *string `json:"utmMedium"`
	UTMCampaign *string `json:"utmCampaign"`
	UTMTerm     *string `json:"utmTerm"`
	UTMContent  *string `json:"utmContent"`
	Referrer    *string `json:"referrer"`
	LandingPage string  `json:"landingPage"`
}

type response struct {
	LeadID string `json:"leadId"`
	Error  string `json:"error"`
}

func NewPayload(values map[string]string, tc entity.TrackingContext) Payload {
	return Payload{
		FirstName:   values["firstName"],
		LastName:    values["lastName"],
		Email:       values["email"],
		Phone:       values["phone"],
		BuyerType:   values["buyerType"],
		LeadSource:  values["leadSource"],
		Timeline:    values["timeline"],
		Budget:      values["budget"],
		Message:     values["message"],
		UTMSource:   tc.UTMSource,
		UTMMedium:   tc.UTMMedium,
		UTMCampaign: tc.UTMCampaign,
		UTMTerm:     tc.UTMTerm,
		UTMContent:  tc.UTMContent,
		Referrer:    tc.Referrer,
		LandingPage: tc.LandingPage,
	}
}

// Submit sends one request and never retries. Any failure is reported as
// ErrSubmissionFailed; the underlying cause is wrapped for logs only.
func (c *Client) Submit(ctx context.Context, values map[string]string, tc entity.TrackingContext) (string, error) {
	body, err := json.Marshal(NewPayload(values, tc))
	if err != nil {
		return "", c.fail(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.fail(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", c.fail(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail(fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", c.fail(fmt.Errorf("decode body: %w", err))
	}
	if strings.TrimSpace(out.LeadID) == "" {
		return "", c.fail(errors.New("response carries no leadId"))
	}
	return out.LeadID, nil
}

func (c *Client) fail(cause error) error {
	c.logger.Warn("lead submission failed", zap.String("endpoint", c.endpoint), zap.Error(cause))
	return fmt.Errorf("%w: %v", ErrSubmissionFailed, cause)
}
