// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL    string `env:"LENSFOLIO_API_BASE_URL" envDefault:"http://localhost:4000/api"`
	DBPath        string `env:"LENSFOLIO_DB_PATH" envDefault:"./data/lensfolio.db"`
	SessionSecret string `env:"LENSFOLIO_SESSION_SECRET,required"`
	ServerHost    string `env:"LENSFOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"LENSFOLIO_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"LENSFOLIO_ENV" envDefault:"development"`
	LogLevel      string `env:"LENSFOLIO_LOG_LEVEL" envDefault:"info"`
	SiteName      string `env:"LENSFOLIO_SITE_NAME" envDefault:"Lensfolio"`

	// API client tuning
	APITimeout    int `env:"LENSFOLIO_API_TIMEOUT" envDefault:"30"`     // seconds
	APIRetries    int `env:"LENSFOLIO_API_RETRIES" envDefault:"3"`      // read retries
	UploadMaxSize int `env:"LENSFOLIO_UPLOAD_MAX_SIZE" envDefault:"50"` // megabytes

	// Cache configuration
	RedisURL     string `env:"LENSFOLIO_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"LENSFOLIO_CACHE_PREFIX" envDefault:"lf:"`     // Redis key prefix
	CacheTTL     int    `env:"LENSFOLIO_CACHE_TTL" envDefault:"300"`        // Gallery cache TTL in seconds
	CacheMaxSize int    `env:"LENSFOLIO_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"LENSFOLIO_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("LENSFOLIO_API_BASE_URL is not a valid URL: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("LENSFOLIO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("LENSFOLIO_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("LENSFOLIO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
