// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/usestring/labelscan/internal/cache"
	"github.com/usestring/labelscan/internal/render"
)

// ErrNoBaseURL is returned by Validate when no service address is configured.
var ErrNoBaseURL = errors.New("extraction service URL is not set (use LABELSCAN_API_URL or --api-url)")

// Config holds all configuration for the client.
type Config struct {
	APIBaseURL        string        // LABELSCAN_API_URL, required
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 0 (no timeout)
	ExportDir         string        // EXPORT_DIR, default "."
	RenderWidth       int           // RENDER_WIDTH, default 100
	HistoryMaxItems   int           // HISTORY_MAX_ITEMS, default 32

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "warn"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		APIBaseURL:        getEnvString("LABELSCAN_API_URL", ""),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 0),
		ExportDir:         getEnvString("EXPORT_DIR", "."),
		RenderWidth:       getEnvInt("RENDER_WIDTH", render.DefaultWidth),
		HistoryMaxItems:   getEnvInt("HISTORY_MAX_ITEMS", cache.DefaultMaxItems),

		LogLevel:      getEnvString("LOG_LEVEL", "warn"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// Validate reports configuration that makes uploads impossible. A missing
// service URL is an error rather than a silent fallback to localhost.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid LABELSCAN_API_URL %q: %w", c.APIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid LABELSCAN_API_URL %q: scheme must be http or https", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid LABELSCAN_API_URL %q: missing host", c.APIBaseURL)
	}
	if c.HTTPClientTimeout < 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT_MS must not be negative")
	}
	return nil
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
