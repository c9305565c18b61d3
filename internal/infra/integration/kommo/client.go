package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

var ErrNotConfigured = errors.New("kommo is not configured")

type Client struct {
	apiToken   string
	baseURL    string
	statusID   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient targets a Kommo account API root, e.g. https://<account>.kommo.com/api/v4.
// statusID is the pipeline stage new leads land in; zero leaves it to the pipeline default.
func NewClient(baseURL, apiToken string, statusID int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		statusID:   statusID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Forward lets the CRM act as a forwarding target next to the automation webhook.
func (c *Client) Forward(ctx context.Context, lead entity.ForwardedLead) error {
	_, err := c.CreateLead(ctx, NewCreateLeadInput(lead))
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" || c.baseURL == "" {
		return 0, ErrNotConfigured
	}

	// Primeiro, criar ou buscar contato
	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("find or create contact: %w", err)
	}

	tags := make([]map[string]any, 0, len(input.Tags))
	for _, t := range input.Tags {
		tags = append(tags, map[string]any{"name": t})
	}
	lead := map[string]any{
		"name": input.Title,
		"_embedded": map[string]any{
			"tags":     tags,
			"contacts": []map[string]any{{"id": contactID}},
		},
	}
	if c.statusID != 0 {
		lead["status_id"] = c.statusID
	}

	var result leadsResponse
	if err := c.do(ctx, http.MethodPost, "/leads", []map[string]any{lead}, &result, http.StatusOK); err != nil {
		return 0, fmt.Errorf("create lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, errors.New("create lead: response carries no id")
	}

	leadID := result.Embedded.Leads[0].ID
	c.logger.Info("kommo lead created",
		zap.Int("kommo_lead_id", leadID),
		zap.Int("contact_id", contactID),
		zap.String("lead_id", input.ExternalID))

	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	// Buscar contato por e-mail
	contactID, err := c.findContact(ctx, input.Email)
	if err == nil && contactID > 0 {
		c.logger.Debug("kommo contact reused", zap.Int("contact_id", contactID))
		return contactID, nil
	}

	return c.createContact(ctx, input)
}

func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	var result contactsResponse
	path := "/contacts?query=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}
	return 0, errors.New("contact not found")
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contact := []map[string]any{
		{
			"first_name": input.FirstName,
			"last_name":  input.LastName,
			"custom_fields_values": []map[string]any{
				{
					"field_code": "PHONE",
					"values":     []map[string]any{{"value": input.Phone, "enum_code": "WORK"}},
				},
				{
					"field_code": "EMAIL",
					"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
				},
			},
		},
	}

	var result contactsResponse
	if err := c.do(ctx, http.MethodPost, "/contacts", contact, &result, http.StatusOK, http.StatusCreated); err != nil {
		return 0, fmt.Errorf("create contact: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errors.New("create contact: response carries no id")
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, okStatus ...int) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	accepted := false
	for _, s := range okStatus {
		if resp.StatusCode == s {
			accepted = true
			break
		}
	}
	if !accepted {
		return fmt.Errorf("status %d - %s", resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
