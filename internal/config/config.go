// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full runtime configuration for the letter pipeline.
type Config struct {
	Environment string

	HTTP     HTTPConfig
	Database DatabaseConfig
	Letters  LettersConfig
	Provider ProviderConfig
	Alerts   AlertsConfig
	Tracing  TracingConfig
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	DSN string
}

// LettersConfig controls collation, batching and dispatch of letter PDFs.
type LettersConfig struct {
	PDFBucket           string
	ProviderDropBucket  string
	ProviderReplyBucket string

	MaxZipBytes    int64
	MaxFilesPerZip int

	// Collation window, expressed in local civil time.
	Timezone            string
	WindowStartHour     int
	WindowStartMinute   int
	WindowEndHour       int
	WindowEndMinute     int
	CutoffHour          int
	CutoffMinute        int
	CollatePollInterval time.Duration

	DVLAAPIEnabled     bool
	DVLAEmailAddresses []string
}

// ProviderConfig configures the DVLA print provider client.
type ProviderConfig struct {
	BaseURL           string
	UsernameSecret    string
	PasswordSecret    string
	APIKeySecret      string
	CredentialTTL     time.Duration
	RotationLockName  string
	NewPasswordLength int
}

type AlertsConfig struct {
	Enabled     bool
	TicketURL   string
	TicketToken string
	RunbookURL  string
}

type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	cfg := Config{
		Environment: envString("NOTIFY_ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Addr: envString("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			DSN: envString("DATABASE_DSN", ""),
		},
		Letters: LettersConfig{
			PDFBucket:           envString("LETTERS_PDF_BUCKET", "letters-pdf"),
			ProviderDropBucket:  envString("PROVIDER_DROP_BUCKET", "provider-drop"),
			ProviderReplyBucket: envString("PROVIDER_REPLY_BUCKET", "provider-response"),
			MaxZipBytes:         envInt64("MAX_LETTER_PDF_ZIP_FILESIZE", 500*1024*1024),
			MaxFilesPerZip:      envInt("MAX_LETTER_PDF_COUNT_PER_ZIP", 5000),
			Timezone:            envString("LETTERS_TIMEZONE", "Europe/London"),
			WindowStartHour:     envInt("PRINT_RUN_WINDOW_START_HOUR", 17),
			WindowStartMinute:   envInt("PRINT_RUN_WINDOW_START_MINUTE", 50),
			WindowEndHour:       envInt("PRINT_RUN_WINDOW_END_HOUR", 18),
			WindowEndMinute:     envInt("PRINT_RUN_WINDOW_END_MINUTE", 49),
			CutoffHour:          envInt("PRINT_RUN_CUTOFF_HOUR", 17),
			CutoffMinute:        envInt("PRINT_RUN_CUTOFF_MINUTE", 30),
			CollatePollInterval: envDuration("COLLATE_POLL_INTERVAL", 10*time.Minute),
			DVLAAPIEnabled:      envBool("DVLA_API_ENABLED", false),
			DVLAEmailAddresses:  envList("DVLA_EMAIL_ADDRESSES"),
		},
		Provider: ProviderConfig{
			BaseURL:           envString("DVLA_API_BASE_URL", "https://uat.driver-vehicle-licensing.api.gov.uk"),
			UsernameSecret:    envString("DVLA_USERNAME_SECRET", "notify/api/dvla_username"),
			PasswordSecret:    envString("DVLA_PASSWORD_SECRET", "notify/api/dvla_password"),
			APIKeySecret:      envString("DVLA_API_KEY_SECRET", "notify/api/dvla_api_key"),
			CredentialTTL:     envDuration("DVLA_CREDENTIAL_TTL", 10*time.Minute),
			RotationLockName:  envString("DVLA_ROTATION_LOCK", "dvla-credential-rotation"),
			NewPasswordLength: envInt("DVLA_NEW_PASSWORD_LENGTH", 24),
		},
		Alerts: AlertsConfig{
			Enabled:     envBool("ALERTS_ENABLED", false),
			TicketURL:   envString("ALERTS_TICKET_URL", ""),
			TicketToken: envString("ALERTS_TICKET_TOKEN", ""),
			RunbookURL:  envString("ALERTS_RUNBOOK_URL", "https://github.com/govnotify/letterpipe-manuals/wiki/Support-Runbook"),
		},
		Tracing: TracingConfig{
			Enabled:          envBool("TRACING_ENABLED", false),
			ExporterEndpoint: envString("OTEL_EXPORTER_ENDPOINT", ""),
			ExporterProtocol: envString("OTEL_EXPORTER_PROTOCOL", "grpc"),
			SamplingRatio:    envFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
