package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable the loader reads so tests see pure defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
		"MAX_HEADER_BYTES", "GIN_MODE", "LOG_LEVEL", "LOG_PRETTY", "SWAGGER_ENABLED",
		"API_BASE_PATH", "DB_PATH", "RATE_RPS", "RATE_BURST", "CORS_ALLOWED_ORIGINS",
		"ENABLE_HSTS", "HSTS_MAX_AGE", "IDEMPOTENCY_TTL",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
		"BLOB_ENDPOINT", "BLOB_ACCESS_KEY", "BLOB_SECRET_KEY", "BLOB_BUCKET",
		"BLOB_REGION", "BLOB_USE_SSL", "BLOB_LINK_TTL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "SMTP_FROM_NAME",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM", "SMS_DEFAULT_COUNTRY_CODE",
		"CERT_ASSET_DIR", "CERT_ISSUER",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("default base path = %q", cfg.APIBasePath)
	}
	if cfg.Blob.LinkTTL != time.Hour {
		t.Fatalf("default link TTL = %v", cfg.Blob.LinkTTL)
	}
	if cfg.SMS.DefaultCountryCode != "+91" {
		t.Fatalf("default country code = %q", cfg.SMS.DefaultCountryCode)
	}
	if cfg.Blob.Bucket != "certificates" {
		t.Fatalf("default bucket = %q", cfg.Blob.Bucket)
	}
}

func TestLoad_NormalizesCountryCode(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMS_DEFAULT_COUNTRY_CODE", "44")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SMS.DefaultCountryCode != "+44" {
		t.Fatalf("expected +44, got %q", cfg.SMS.DefaultCountryCode)
	}
}

func TestLoad_NormalizesWarningLevelAndBasePath(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("API_BASE_PATH", "api/v2/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected warn, got %q", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("expected /api/v2, got %q", cfg.APIBasePath)
	}
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Fatalf("expected LOG_LEVEL error, got %v", err)
	}
}

func TestLoad_RejectsBadRateBurst(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_BURST", "0")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RATE_BURST") {
		t.Fatalf("expected RATE_BURST error, got %v", err)
	}
}

func TestLoad_RejectsBadSMTPPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_PORT", "70000")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SMTP_PORT") {
		t.Fatalf("expected SMTP_PORT error, got %v", err)
	}
}

func TestLoad_RejectsZeroLinkTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOB_LINK_TTL", "-1s")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "BLOB_LINK_TTL") {
		t.Fatalf("expected BLOB_LINK_TTL error, got %v", err)
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_BURST", "0")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic from MustLoad")
		}
	}()
	_ = MustLoad()
}
