package config

import (
	"os"
	"strings"

	"lostwatch/internal/apperr"

	"github.com/joho/godotenv"
)

type Store struct {
	Driver string
	DSN    string
}

type Verifier struct {
	Issuer   string
	Audience string
	JWKSURL  string
}

// Enabled reports whether bearer tokens are checked at all.
func (v Verifier) Enabled() bool { return v.Issuer != "" }

type AMQP struct {
	URL        string
	Exchange   string
	RoutingKey string
	Queue      string
}

type SendGrid struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type Config struct {
	Port string

	Store    Store
	Verifier Verifier

	Notifier string
	AMQP     AMQP
	SendGrid SendGrid

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// a missing .env is normal in containers
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Store: Store{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:    getEnv("DB_DSN", "lostwatch.db"),
		},
		Verifier: Verifier{
			Issuer:   strings.TrimRight(getEnv("AUTH_ISSUER", ""), "/"),
			Audience: getEnv("AUTH_AUDIENCE", ""),
			JWKSURL:  getEnv("AUTH_JWKS_URL", ""),
		},
		Notifier: strings.ToLower(getEnv("NOTIFIER", "log")),
		AMQP: AMQP{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "lostwatch"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "match.notice"),
			Queue:      getEnv("AMQP_QUEUE", "lostwatch-notices"),
		},
		SendGrid: SendGrid{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
			FromName:  getEnv("SENDGRID_FROM_NAME", "Lost Watch Registry"),
		},
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
	if cfg.Verifier.Enabled() && cfg.Verifier.JWKSURL == "" {
		cfg.Verifier.JWKSURL = cfg.Verifier.Issuer + "/.well-known/jwks.json"
	}
	return cfg
}

// Validate checks cross-field requirements once at startup.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return apperr.Config("DB_DRIVER", "unsupported driver "+c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return apperr.Config("DB_DSN", "store handle is required")
	}
	if c.Verifier.Enabled() && c.Verifier.Audience == "" {
		return apperr.Config("AUTH_AUDIENCE", "audience is required when AUTH_ISSUER is set")
	}
	switch c.Notifier {
	case "log":
	case "amqp":
		if c.AMQP.URL == "" {
			return apperr.Config("AMQP_URL", "required for the amqp notifier")
		}
	case "sendgrid":
		if err := c.SendGrid.Validate(); err != nil {
			return err
		}
	default:
		return apperr.Config("NOTIFIER", "unsupported notifier "+c.Notifier)
	}
	return nil
}

func (s SendGrid) Validate() error {
	if s.APIKey == "" {
		return apperr.Config("SENDGRID_API_KEY", "required for e-mail delivery")
	}
	if s.FromEmail == "" {
		return apperr.Config("SENDGRID_FROM_EMAIL", "required for e-mail delivery")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
