package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	Port         string `env:"PORT" envDefault:"3000"`
	APIKey       string `env:"API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-image"`
	// GeminiBaseURL overrides the SDK endpoint. Empty keeps the default.
	GeminiBaseURL string        `env:"GEMINI_BASE_URL"`
	QRBaseURL     string        `env:"QR_BASE_URL" envDefault:"https://api.qrserver.com"`
	QRCacheTTL    time.Duration `env:"QR_CACHE_TTL" envDefault:"30m"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	StaticDir     string        `env:"STATIC_DIR" envDefault:"dist"`
	MaxBodyBytes  int64         `env:"MAX_BODY_BYTES" envDefault:"52428800"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RateLimitPerMin  int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY" envDefault:"2s"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig reads an optional .env file, then the environment, and applies
// defaults where needed. A missing API key is not an error: the server starts
// and reports a configuration error per request.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("MAX_RETRIES must not be negative")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("RETRY_BASE_DELAY must be positive")
	}
	if c.RateLimitPerMin < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// ModelAPIKey returns the Gemini key, preferring API_KEY over GEMINI_API_KEY.
func (c *Config) ModelAPIKey() string {
	if k := strings.TrimSpace(c.APIKey); k != "" {
		return k
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
