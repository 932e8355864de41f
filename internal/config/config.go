// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all application configuration outside the LLM layer.
type Config struct {
	DBPath      string
	Addr        string
	Locale      domain.Locale
	StrictSteps bool
	LogLevel    slog.Level
	LogFormat   string
	CORSOrigins []string
}

// Load reads configuration from MANDALART_* environment variables.
func Load() (*Config, error) {
	dbPath := getEnv("MANDALART_DB", "")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".mandalart", "mandalart.db")
	}

	level, err := parseLevel(getEnv("MANDALART_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		DBPath:      dbPath,
		Addr:        getEnv("MANDALART_ADDR", ":8080"),
		Locale:      domain.Locale(strings.ToLower(strings.TrimSpace(getEnv("MANDALART_LOCALE", string(domain.LocaleKorean))))),
		StrictSteps: getEnvBool("MANDALART_STRICT_STEPS", false),
		LogLevel:    level,
		LogFormat:   strings.ToLower(getEnv("MANDALART_LOG_FORMAT", "")),
		CORSOrigins: splitList(getEnv("MANDALART_CORS_ORIGINS", "*")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that required fields are set and enumerations are known.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("MANDALART_DB cannot be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("MANDALART_ADDR cannot be empty")
	}
	if c.Locale != domain.LocaleKorean && c.Locale != domain.LocaleEnglish {
		return fmt.Errorf("MANDALART_LOCALE must be %q or %q, got %q", domain.LocaleKorean, domain.LocaleEnglish, c.Locale)
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("MANDALART_LOG_FORMAT must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	return nil
}

// Logger builds the process logger. An unset format falls back to
// fallback, which lets the server default to JSON and the CLI to text.
func (c *Config) Logger(w io.Writer, fallback string) *slog.Logger {
	format := c.LogFormat
	if format == "" {
		format = fallback
	}
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("MANDALART_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
