package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the interview agent service.
type Config struct {
	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration
	RequestTimeout   time.Duration

	DatabaseURL string
	ArchiveDir  string

	ModelAdapterMode string
	ModelHTTPURL     string
	ModelID          string
	ModelMaxTokens   int
	ModelTemperature float64
	ModelTopP        float64
	ModelTimeout     time.Duration

	RecentTurnLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "interviewer"),
		ShutdownTimeout:  15 * time.Second,
		RequestTimeout:   30 * time.Second,
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		ArchiveDir:       stringsTrimSpace("ARCHIVE_DIR"),
		ModelAdapterMode: envOrDefault("MODEL_ADAPTER_MODE", "auto"),
		ModelHTTPURL:     stringsTrimSpace("MODEL_HTTP_URL"),
		ModelID:          envOrDefault("MODEL_ID", "interviewer-mock"),
		ModelMaxTokens:   350,
		ModelTemperature: 0.7,
		ModelTopP:        0.9,
		ModelTimeout:     60 * time.Second,
		RecentTurnLimit:  12,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RequestTimeout, err = durationFromEnv("APP_REQUEST_TIMEOUT", cfg.RequestTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTimeout, err = durationFromEnv("MODEL_TIMEOUT", cfg.ModelTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelMaxTokens, err = intFromEnv("MODEL_MAX_TOKENS", cfg.ModelMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTemperature, err = floatFromEnv("MODEL_TEMPERATURE", cfg.ModelTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTopP, err = floatFromEnv("MODEL_TOP_P", cfg.ModelTopP)
	if err != nil {
		return Config{}, err
	}
	cfg.RecentTurnLimit, err = intFromEnv("RECENT_TURN_LIMIT", cfg.RecentTurnLimit)
	if err != nil {
		return Config{}, err
	}

	if cfg.RequestTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_REQUEST_TIMEOUT must be at least 1s")
	}
	if cfg.ModelMaxTokens <= 0 {
		return Config{}, fmt.Errorf("MODEL_MAX_TOKENS must be positive")
	}
	if cfg.ModelTemperature < 0 || cfg.ModelTemperature > 2 {
		return Config{}, fmt.Errorf("MODEL_TEMPERATURE must be in [0,2]")
	}
	if cfg.ModelTopP < 0 || cfg.ModelTopP > 1 {
		return Config{}, fmt.Errorf("MODEL_TOP_P must be in [0,1]")
	}
	if cfg.RecentTurnLimit <= 0 {
		return Config{}, fmt.Errorf("RECENT_TURN_LIMIT must be positive")
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.ModelAdapterMode))
	switch mode {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("invalid MODEL_ADAPTER_MODE: %q (expected auto|http|mock)", cfg.ModelAdapterMode)
	}
	if mode == "http" && cfg.ModelHTTPURL == "" {
		return Config{}, fmt.Errorf("MODEL_HTTP_URL is required when MODEL_ADAPTER_MODE=http")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return trimSpace(os.Getenv(key))
}

func trimSpace(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\n' || v[0] == '\t' || v[0] == '\r') {
		v = v[1:]
	}
	for len(v) > 0 {
		c := v[len(v)-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			v = v[:len(v)-1]
			continue
		}
		break
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
