// Package config loads process configuration from the environment (and an optional .env).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	SiteDir  string `env:"SITE_DIR"`

	DatabaseURL    string `env:"DATABASE_URL"`
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`

	RabbitMQURL   string `env:"RABBITMQ_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	LeadWebhookURL   string `env:"LEAD_WEBHOOK_URL"`
	ForwardSourceTag string `env:"FORWARD_SOURCE_TAG" envDefault:"presale-site"`

	AllowedOrigins       []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	AdminJWTSecret       string   `env:"ADMIN_JWT_SECRET"`
	PaymentWebhookSecret string   `env:"PAYMENT_WEBHOOK_SECRET"`

	Mail     MailConfig
	Kommo    KommoConfig
	Calendar CalendarConfig
	Schedule SchedulingConfig
}

type MailConfig struct {
	Host         string `env:"MAIL_HOST"`
	Port         int    `env:"MAIL_PORT" envDefault:"587"`
	User         string `env:"MAIL_USER"`
	Password     string `env:"MAIL_PASS"`
	From         string `env:"MAIL_FROM" envDefault:"no-reply@presale.example"`
	OperatorAddr string `env:"MAIL_OPERATOR"`
	ProjectName  string `env:"MAIL_PROJECT_NAME" envDefault:"Presale"`
}

type KommoConfig struct {
	BaseURL  string `env:"KOMMO_BASE_URL"`
	APIToken string `env:"KOMMO_API_TOKEN"`
	StatusID int    `env:"KOMMO_STATUS_ID"`
}

type CalendarConfig struct {
	ClientEmail string `env:"GCAL_CLIENT_EMAIL"`
	PrivateKey  string `env:"GCAL_PRIVATE_KEY"`
	CalendarID  string `env:"GCAL_CALENDAR_ID" envDefault:"primary"`
	TokenURI    string `env:"GCAL_TOKEN_URI"`
}

type SchedulingConfig struct {
	URL             string `env:"SCHEDULING_URL"`
	BackgroundColor string `env:"SCHEDULING_BACKGROUND_COLOR" envDefault:"ffffff"`
	TextColor       string `env:"SCHEDULING_TEXT_COLOR" envDefault:"1f2933"`
	PrimaryColor    string `env:"SCHEDULING_PRIMARY_COLOR" envDefault:"0b6e4f"`
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Load reads .env when present, then the environment. A missing store address is fatal:
// there is no degraded mode without persistence.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", cfg.DatabaseDriver)
	}
	return cfg, nil
}

func (c Config) CalendarEnabled() bool {
	return c.Calendar.ClientEmail != "" && c.Calendar.PrivateKey != ""
}

func (c Config) KommoEnabled() bool {
	return c.Kommo.BaseURL != "" && c.Kommo.APIToken != ""
}

func (c Config) MailEnabled() bool {
	return c.Mail.Host != ""
}
