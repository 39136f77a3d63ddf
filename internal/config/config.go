// Package config loads the application configuration from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// API contains API server configuration
	API APIConfig
	// Session contains session security configuration
	Session SessionConfig
	// Reset contains password reset configuration
	Reset ResetConfig
	// Lockout contains authentication rate limiting configuration
	Lockout LockoutConfig
	// Database contains database configuration
	Database DatabaseConfig
	// Email contains email service configuration
	Email EmailConfig

	// Transport-level rate limiting (per IP, whole API surface)
	RateLimit struct {
		Requests int // Number of requests allowed per window
		Window   int // Time window in seconds
		Burst    int // Maximum burst size
	}

	// CleanupSchedule is the cron expression for the maintenance sweeps
	CleanupSchedule string
	// AuditRetention is how long audit trail rows are kept before the
	// maintenance sweep deletes them
	AuditRetention time.Duration
}

// APIConfig contains API server settings
type APIConfig struct {
	// Port is the server port to listen on
	Port string
}

// SessionConfig contains the session state machine settings
type SessionConfig struct {
	// Secret signs session tokens. Loaded once at startup, immutable
	// afterwards; never rotated at runtime.
	Secret string
	// IdleTimeout is the maximum allowed gap between authenticated requests
	IdleTimeout time.Duration
	// Lifetime is the absolute session lifetime from issuance
	Lifetime time.Duration
	// RenewalWindow is how close to absolute expiry a renewal slides it forward
	RenewalWindow time.Duration
}

// ResetConfig contains password reset token settings
type ResetConfig struct {
	// TokenLifetime is how long a reset token stays redeemable
	TokenLifetime time.Duration
	// MaxTokensPerUser caps concurrently valid tokens per user
	MaxTokensPerUser int
}

// LockoutConfig contains the failed-attempt lockout settings
type LockoutConfig struct {
	// MaxAttempts is the failed-attempt count at which lockout starts
	MaxAttempts int
	// Window is the sliding interval over which failures are counted
	Window time.Duration
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxLife    time.Duration
}

// EmailConfig contains email service settings
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromAddress  string
	// AppURL is the base URL used in password reset links
	AppURL string
}

// LoadFromEnv retrieves configuration from environment variables
func (c *Config) LoadFromEnv() error {
	c.API = APIConfig{
		Port: getEnvOrDefault("API_PORT", "8080"),
	}
	c.Database = DatabaseConfig{
		Host:           getEnvOrDefault("DB_HOST", "localhost"),
		Port:           getEnvAsInt("DB_PORT", 5432),
		User:           getEnvOrDefault("DB_USER", "postgres"),
		Password:       getEnvOrDefault("DB_PASSWORD", "postgres"),
		DBName:         getEnvOrDefault("DB_NAME", "oversave"),
		SSLMode:        getEnvOrDefault("DB_SSL_MODE", "disable"),
		MigrationsPath: "migrations",
		MaxOpenConns:   getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLife:    getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	c.Session = SessionConfig{
		Secret:        os.Getenv("SESSION_SECRET"),
		IdleTimeout:   getEnvAsDuration("SESSION_IDLE_TIMEOUT", 5*time.Minute),
		Lifetime:      getEnvAsDuration("SESSION_LIFETIME", 24*time.Hour),
		RenewalWindow: getEnvAsDuration("SESSION_RENEWAL_WINDOW", time.Hour),
	}
	c.Reset = ResetConfig{
		TokenLifetime:    getEnvAsDuration("RESET_TOKEN_LIFETIME", 15*time.Minute),
		MaxTokensPerUser: getEnvAsInt("MAX_RESET_TOKENS", 3),
	}
	c.Lockout = LockoutConfig{
		MaxAttempts: getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
		Window:      getEnvAsDuration("LOCKOUT_WINDOW", 15*time.Minute),
	}
	c.Email = EmailConfig{
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromAddress:  os.Getenv("SMTP_FROM"),
		AppURL:       os.Getenv("APP_URL"),
	}

	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", 1000)
	c.RateLimit.Window = getEnvAsInt("RATE_LIMIT_WINDOW", 60)
	c.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 50)

	c.CleanupSchedule = getEnvOrDefault("CLEANUP_SCHEDULE", "*/15 * * * *")
	c.AuditRetention = getEnvAsDuration("AUDIT_RETENTION", 90*24*time.Hour)

	// Validate required fields
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	return nil
}

// getEnvAsInt retrieves an environment variable and converts it to an integer
func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvAsDuration retrieves an environment variable and parses it as a duration
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
