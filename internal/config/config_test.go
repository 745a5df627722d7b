package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{})
	cfg, err := Load("schemachat-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8095" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Metadata.Database != "default" {
		t.Fatalf("Metadata.Database = %q", cfg.Metadata.Database)
	}
	if len(cfg.Metadata.AllowedTables) != 5 {
		t.Fatalf("AllowedTables = %v", cfg.Metadata.AllowedTables)
	}
	if !cfg.LLM.Enabled {
		t.Fatal("LLM.Enabled should default to true")
	}
	if cfg.LLM.MaxTokens != 512 {
		t.Fatalf("LLM.MaxTokens = %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Fatalf("LLM.Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	lookup := mapLookup(map[string]string{"SCHEMACHAT_PROFILE": "prod"})
	cfg, err := Load("schemachat-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"SCHEMACHAT_HTTP_ADDR":           ":9000",
		"SCHEMACHAT_CLICKHOUSE_DSN":      "clickhouse://user:pw@ch:9000/analytics",
		"SCHEMACHAT_CLICKHOUSE_DATABASE": "analytics",
		"SCHEMACHAT_ALLOWED_TABLES":      "events, sessions ,,accounts",
		"SCHEMACHAT_LLM_ENABLED":         "false",
		"SCHEMACHAT_LLM_TIMEOUT":         "45s",
		"SCHEMACHAT_LOG_LEVEL":           "warn",
	})
	cfg, err := Load("schemachat-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Address != ":9000" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Metadata.Database != "analytics" {
		t.Fatalf("Metadata.Database = %q", cfg.Metadata.Database)
	}
	want := []string{"events", "sessions", "accounts"}
	if len(cfg.Metadata.AllowedTables) != len(want) {
		t.Fatalf("AllowedTables = %v", cfg.Metadata.AllowedTables)
	}
	for i, table := range want {
		if cfg.Metadata.AllowedTables[i] != table {
			t.Fatalf("AllowedTables[%d] = %q, want %q", i, cfg.Metadata.AllowedTables[i], table)
		}
	}
	if cfg.LLM.Enabled {
		t.Fatal("LLM.Enabled should be overridden to false")
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Fatalf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Observability.LogLevel != slog.LevelWarn {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{"SCHEMACHAT_PROFILE": "staging"})
	if _, err := Load("schemachat-api", lookup); err == nil {
		t.Fatal("expected error for invalid profile")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	lookup := mapLookup(map[string]string{"SCHEMACHAT_LLM_TIMEOUT": "soon"})
	if _, err := Load("schemachat-api", lookup); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
