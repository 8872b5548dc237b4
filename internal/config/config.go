// Package config loads client configuration from the environment.
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings for the client.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	ConfigDir      string
	LogLevel       string
}

// Load reads configuration from ATHARVA_* environment variables with defaults.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:     getEnv("ATHARVA_API_URL", "http://127.0.0.1:8000/api"),
		RequestTimeout: getDuration("ATHARVA_TIMEOUT", 180*time.Second),
		ConfigDir:      getEnv("ATHARVA_CONFIG_DIR", defaultConfigDir()),
		LogLevel:       getEnv("ATHARVA_LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("ATHARVA_API_URL must be an absolute http(s) URL")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("ATHARVA_TIMEOUT must be positive")
	}
	if c.ConfigDir == "" {
		return errors.New("ATHARVA_CONFIG_DIR must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("ATHARVA_LOG_LEVEL must be one of: debug, info, warn, error")
	}
	return nil
}

// BaseURL returns the API root without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.APIBaseURL, "/")
}

func defaultConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "atharva")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "atharva")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
