package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "DATABASE_DRIVER", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT",
		"CORS_ALLOWED_ORIGINS", "SLACK_BOT_TOKEN", "SLACK_CHANNEL",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "ROLLUP_INTERVAL", "SEED_PROFILE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != 3001 || cfg.Addr() != ":3001" {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "postgres" || cfg.DatabaseURL != defaultPostgresURL {
		t.Errorf("database = %s %s", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("logging = %s %s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.RollupInterval != time.Hour {
		t.Errorf("RollupInterval = %s", cfg.RollupInterval)
	}
	if cfg.SlackEnabled() {
		t.Error("Slack should be disabled without a token")
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ServiceName != "fleetpulse" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example.com, ,http://b.example.com")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("ROLLUP_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.DatabaseURL != defaultSQLitePath {
		t.Errorf("database = %s %s", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" {
		t.Errorf("logging = %s %s", cfg.LogLevel, cfg.LogFormat)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.example.com" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.SlackEnabled() {
		t.Error("Slack should be enabled with a token")
	}
	if cfg.RollupInterval != 15*time.Minute {
		t.Errorf("RollupInterval = %s", cfg.RollupInterval)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"HTTP_PORT", "abc"},
		{"HTTP_PORT", "70000"},
		{"DATABASE_DRIVER", "oracle"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
		{"ROLLUP_INTERVAL", "hourly"},
		{"ROLLUP_INTERVAL", "-5m"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
