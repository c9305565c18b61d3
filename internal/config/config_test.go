package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "  ")

	_, err := Parse()
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/presale")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "presale-site", cfg.ForwardSourceTag)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "primary", cfg.Calendar.CalendarID)
	assert.False(t, cfg.KommoEnabled())
	assert.False(t, cfg.CalendarEnabled())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:presale.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("ALLOWED_ORIGINS", "https://presale.example,https://www.presale.example")
	t.Setenv("FORWARD_SOURCE_TAG", "landing-v2")
	t.Setenv("KOMMO_BASE_URL", "https://acme.kommo.com/api/v4")
	t.Setenv("KOMMO_API_TOKEN", "tok")
	t.Setenv("KOMMO_STATUS_ID", "96648371")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://presale.example", "https://www.presale.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "landing-v2", cfg.ForwardSourceTag)
	assert.Equal(t, 96648371, cfg.Kommo.StatusID)
	assert.True(t, cfg.KommoEnabled())
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://x")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Parse()
	assert.Error(t, err)
}
