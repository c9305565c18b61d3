// Package gcal creates Google Calendar events with a service account.
package gcal

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	DefaultTokenURI = "https://oauth2.googleapis.com/token"
	DefaultBaseURL  = "https://www.googleapis.com/calendar/v3"
	calendarScope   = "https://www.googleapis.com/auth/calendar"
)

var ErrNotConfigured = errors.New("calendar service account is not configured")

type Config struct {
	ClientEmail   string
	PrivateKeyPEM string
	CalendarID    string
	TokenURI      string
	BaseURL       string
}

type Client struct {
	cfg        Config
	key        *rsa.PrivateKey
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ClientEmail == "" || cfg.PrivateKeyPEM == "" {
		return nil, ErrNotConfigured
	}
	// keys pasted into env files usually carry literal \n sequences
	pem := strings.ReplaceAll(cfg.PrivateKeyPEM, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	if cfg.TokenURI == "" {
		cfg.TokenURI = DefaultTokenURI
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		key:        key,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}, nil
}

// CreateEvent inserts the event into the configured calendar and returns it as stored.
func (c *Client) CreateEvent(ctx context.Context, event Event) (*Event, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.cfg.BaseURL, url.PathEscape(c.cfg.CalendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create event: status %d - %s", resp.StatusCode, string(body))
	}

	var created Event
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	c.logger.Info("calendar event created", zap.String("event_id", created.ID), zap.String("calendar_id", c.cfg.CalendarID))
	return &created, nil
}

// token returns a cached access token, exchanging a fresh signed assertion when the
// current one is within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.accessToken != "" && now.Add(time.Minute).Before(c.expiresAt) {
		return c.accessToken, nil
	}

	assertion, err := c.signAssertion(now)
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange: status %d - %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token exchange: empty access token")
	}

	c.accessToken = tr.AccessToken
	c.expiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) signAssertion(now time.Time) (string, error) {
	claims := assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.ClientEmail,
			Audience:  jwt.ClaimStrings{c.cfg.TokenURI},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Scope: calendarScope,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
