// Package config provides configuration loading and validation for the
// API server. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (rate limiting, health)
	RedisURL string `koanf:"redis_url"`

	// JWT Authentication
	JWTSecret         string `koanf:"jwt_secret"`
	JWTPreviousSecret string `koanf:"jwt_previous_secret"`

	// Feed
	DefaultCity string `koanf:"default_city"`

	// Ticketing provider
	TicketingBaseURL string `koanf:"ticketing_base_url"`
	TicketingAPIKey  string `koanf:"ticketing_api_key"`

	// CORS
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort             = 8080
	DefaultEnv              = "development"
	DefaultCityFallback     = "Kampala"
	DefaultTicketingBaseURL = "https://app.ticketmaster.com/discovery/v2"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid).
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// File first, lower precedence.
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	origins := k.Strings("allowed_origins")
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		origins = nil
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	cfg := &Config{
		Port:              port,
		Env:               getEnvOrDefault("ENV", k.String("env"), DefaultEnv),
		DatabaseURL:       getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:          getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		JWTSecret:         getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTPreviousSecret: getEnvOrKoanf("JWT_PREVIOUS_SECRET", k, "jwt_previous_secret"),
		DefaultCity:       getEnvOrDefault("DEFAULT_CITY", k.String("default_city"), DefaultCityFallback),
		TicketingBaseURL:  getEnvOrDefault("TICKETING_BASE_URL", k.String("ticketing_base_url"), DefaultTicketingBaseURL),
		TicketingAPIKey:   getEnvOrKoanf("TICKETING_API_KEY", k, "ticketing_api_key"),
		AllowedOrigins:    origins,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set,
// otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set,
// otherwise the koanf value, or default. Returns an error if the
// environment variable is set but not an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid). The ticketing
// API key is optional: without it the external events surface degrades
// to empty results.
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	return errs
}

// LogSummary returns a summary of the configuration suitable for
// logging. All secrets are masked.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":               fmt.Sprintf("%d", c.Port),
		"env":                c.Env,
		"database_url":       maskDatabaseURL(c.DatabaseURL),
		"redis_url":          maskDatabaseURL(c.RedisURL),
		"jwt_secret":         maskSecret(c.JWTSecret),
		"default_city":       c.DefaultCity,
		"ticketing_base_url": c.TicketingBaseURL,
		"ticketing_api_key":  maskSecret(c.TicketingAPIKey),
		"allowed_origins":    strings.Join(c.AllowedOrigins, ","),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters.
// Secrets shorter than 8 characters are fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a connection URL.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // no credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // username only
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
