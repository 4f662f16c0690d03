// Package config provides configuration management for the GEM tuning service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported email providers
const (
	EmailMailgun = "mailgun"
	EmailConsole = "console"
	EmailMock    = "mock"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Email    EmailConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port                   string
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	Provider      string // "mailgun", "console" or "mock"
	MailgunDomain string
	MailgunAPIKey string
	FromAddress   string
	FromName      string
	AppURL        string // links in report emails
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver                string // "postgres" or "sqlite"
	URL                   string
	Host                  string
	Port                  string
	Name                  string
	User                  string
	Password              string
	SSLMode               string
	SQLitePath            string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:                   getEnv("PORT", "8080"),
			RateLimitPerMinute:     getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			AuthRateLimitPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		},
		Database: DatabaseConfig{
			Driver:                getEnv("DB_DRIVER", DriverSQLite),
			URL:                   os.Getenv("DATABASE_URL"),
			Host:                  getEnv("DB_HOST", "localhost"),
			Port:                  getEnv("DB_PORT", "5432"),
			Name:                  getEnv("DB_NAME", "gemtune_dev"),
			User:                  getEnv("DB_USER", "gemtune_user"),
			Password:              GetSecret("DB_PASSWORD", "gemtune_pass"),
			SSLMode:               getEnv("DB_SSLMODE", "disable"),
			SQLitePath:            getEnv("SQLITE_PATH", "gemtune.db"),
			MaxConnections:        getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnectionMaxLifetime: getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", "5m"),
		},
		Auth: AuthConfig{
			JWTSecret:         GetSecret("JWT_SECRET", "dev-secret-key-change-in-production"),
			JWTAccessTokenTTL: getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", "24h"),
		},
		Email: EmailConfig{
			Provider:      getEnv("EMAIL_PROVIDER", EmailConsole),
			MailgunDomain: GetSecret("MAILGUN_DOMAIN", ""),
			MailgunAPIKey: GetSecret("MAILGUN_API_KEY", ""),
			FromAddress:   getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
			FromName:      getEnv("EMAIL_FROM_NAME", "GEM Tune"),
			AppURL:        getEnv("APP_URL", "http://localhost:3000"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.Database.Driver)
	}

	switch c.Email.Provider {
	case EmailMailgun:
		if c.Email.MailgunAPIKey == "" {
			return errors.New("MAILGUN_API_KEY is required when EMAIL_PROVIDER=mailgun")
		}
		if c.Email.MailgunDomain == "" {
			return errors.New("MAILGUN_DOMAIN is required when EMAIL_PROVIDER=mailgun")
		}
	case EmailConsole, EmailMock:
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	if c.Server.RateLimitPerMinute <= 0 || c.Server.AuthRateLimitPerMinute <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

// ConnectionString returns the driver-specific data source name
func (d *DatabaseConfig) ConnectionString() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		defaultDuration, _ := time.ParseDuration(defaultValue)
		return defaultDuration
	}
	return value
}
