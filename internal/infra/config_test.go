package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MAX_BODY_BYTES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "3000")
	}
	if cfg.MaxBodyBytes != 50<<20 {
		t.Fatalf("MaxBodyBytes mismatch: got %d", cfg.MaxBodyBytes)
	}
	if cfg.RetryBaseDelay != 2*time.Second || cfg.MaxRetries != 3 {
		t.Fatalf("retry defaults mismatch: %v %d", cfg.RetryBaseDelay, cfg.MaxRetries)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-image" {
		t.Fatalf("GeminiModel mismatch: got %q", cfg.GeminiModel)
	}
	if cfg.ModelAPIKey() != "" {
		t.Fatalf("expected empty api key")
	}
}

func TestLoadConfigPrefersAPIKey(t *testing.T) {
	t.Setenv("API_KEY", " primary ")
	t.Setenv("GEMINI_API_KEY", "secondary")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got := cfg.ModelAPIKey(); got != "primary" {
		t.Fatalf("ModelAPIKey = %q, want primary", got)
	}

	t.Setenv("API_KEY", "")
	cfg, _ = LoadConfig()
	if got := cfg.ModelAPIKey(); got != "secondary" {
		t.Fatalf("ModelAPIKey = %q, want secondary", got)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("RETRY_BASE_DELAY", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("RETRY_BASE_DELAY", "2s")
	t.Setenv("MAX_RETRIES", "-1")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error")
	}
}
