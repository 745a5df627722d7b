package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Metadata      MetadataConfig
	LLM           LLMConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MetadataConfig struct {
	DSN             string
	Database        string
	AllowedTables   []string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type LLMConfig struct {
	Enabled     bool
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SCHEMACHAT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SCHEMACHAT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "SCHEMACHAT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SCHEMACHAT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SCHEMACHAT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SCHEMACHAT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SCHEMACHAT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SCHEMACHAT_CLICKHOUSE_DSN", &cfg.Metadata.DSN); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SCHEMACHAT_CLICKHOUSE_DATABASE", &cfg.Metadata.Database); err != nil {
		return Config{}, err
	}
	if err := applyStringSlice(lookup, "SCHEMACHAT_ALLOWED_TABLES", &cfg.Metadata.AllowedTables); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SCHEMACHAT_CLICKHOUSE_MAX_OPEN_CONNS", &cfg.Metadata.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SCHEMACHAT_CLICKHOUSE_MAX_IDLE_CONNS", &cfg.Metadata.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SCHEMACHAT_CLICKHOUSE_CONN_MAX_IDLE_TIME", &cfg.Metadata.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SCHEMACHAT_CLICKHOUSE_CONN_MAX_LIFETIME", &cfg.Metadata.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SCHEMACHAT_LLM_ENABLED", &cfg.LLM.Enabled); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SCHEMACHAT_LLM_BASE_URL", &cfg.LLM.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SCHEMACHAT_LLM_API_KEY", &cfg.LLM.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SCHEMACHAT_LLM_MODEL", &cfg.LLM.Model); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SCHEMACHAT_LLM_MAX_TOKENS", &cfg.LLM.MaxTokens); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "SCHEMACHAT_LLM_TEMPERATURE", &cfg.LLM.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SCHEMACHAT_LLM_TIMEOUT", &cfg.LLM.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SCHEMACHAT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "SCHEMACHAT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Metadata.Database == "" {
		return Config{}, fmt.Errorf("clickhouse database is required")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "schemachat-api"},
		HTTP: HTTPConfig{
			Address:      ":8095",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Metadata: MetadataConfig{
			DSN:             "clickhouse://default:@localhost:9000/default",
			Database:        "default",
			AllowedTables:   []string{"users", "orders", "products", "inventory", "analytics_events"},
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		LLM: LLMConfig{
			Enabled:     true,
			BaseURL:     "http://localhost:8000",
			MaxTokens:   512,
			Temperature: 0.7,
			Timeout:     30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18095"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyStringSlice(lookup LookupFunc, key string, dst *[]string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		values = append(values, part)
	}
	*dst = values
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
