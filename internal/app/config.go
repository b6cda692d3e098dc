package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the admin application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// BackendAPIURL is the base URL of the service that owns all business
	// data. This application never talks to a database directly.
	BackendAPIURL     string        `envconfig:"BACKEND_API_URL" default:"http://127.0.0.1:3001"`
	BackendAPITimeout time.Duration `envconfig:"BACKEND_API_TIMEOUT" default:"30s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	// Image CDN upload target. The backend only issues the signed upload
	// authorization; image bytes go straight to the CDN.
	ImageCDNUploadURL string `envconfig:"IMAGE_CDN_UPLOAD_URL" default:"https://upload.imagekit.io/api/v1/files/upload"`
	ImageCDNPublicKey string `envconfig:"IMAGE_CDN_PUBLIC_KEY"`

	// PaymentPhone appears only in exported order PDFs as the transfer
	// reference for customers.
	PaymentPhone string `envconfig:"PAYMENT_PHONE" default:""`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	cfg.BackendAPIURL = strings.TrimRight(cfg.BackendAPIURL, "/")
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
