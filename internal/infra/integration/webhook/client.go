// Package webhook delivers forwarded leads to the marketing automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(url string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Forward makes a single POST attempt. Retrying is left to the queue, which dedups on the
// idempotency key.
func (c *Client) Forward(ctx context.Context, lead entity.ForwardedLead) error {
	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", lead.IdempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("webhook delivered",
		zap.String("lead_id", lead.LeadID),
		zap.String("event", lead.Event),
		zap.Int("status", resp.StatusCode))
	return nil
}
