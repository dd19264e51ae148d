package config

import (
	"testing"

	"lostwatch/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "AUTH_ISSUER", "NOTIFIER", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "lostwatch.db", cfg.Store.DSN)
	assert.False(t, cfg.Verifier.Enabled())
	assert.Equal(t, "log", cfg.Notifier)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadDerivesJWKSURL(t *testing.T) {
	t.Setenv("AUTH_ISSUER", "https://id.example.com/")
	t.Setenv("AUTH_AUDIENCE", "lostwatch")
	t.Setenv("AUTH_JWKS_URL", "")

	cfg := Load()
	assert.Equal(t, "https://id.example.com", cfg.Verifier.Issuer)
	assert.Equal(t, "https://id.example.com/.well-known/jwks.json", cfg.Verifier.JWKSURL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }, "DB_DRIVER"},
		{"empty dsn", func(c *Config) { c.Store.DSN = "" }, "DB_DSN"},
		{"issuer without audience", func(c *Config) { c.Verifier.Issuer = "https://id" }, "AUTH_AUDIENCE"},
		{"amqp without url", func(c *Config) { c.Notifier = "amqp" }, "AMQP_URL"},
		{"sendgrid without key", func(c *Config) { c.Notifier = "sendgrid" }, "SENDGRID_API_KEY"},
		{"sendgrid without sender", func(c *Config) {
			c.Notifier = "sendgrid"
			c.SendGrid.APIKey = "SG.x"
		}, "SENDGRID_FROM_EMAIL"},
		{"unknown notifier", func(c *Config) { c.Notifier = "sms" }, "NOTIFIER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Store: Store{Driver: "sqlite", DSN: "x.db"}, Notifier: "log"}
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			e := apperr.As(err)
			assert.Equal(t, apperr.KindConfig, e.Kind)
			assert.Equal(t, tt.wantKey, e.Field)
		})
	}
}
