package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Session  SessionConfig
	Market   MarketConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds session token configuration.
// Key must be a base64-encoded 32-byte fernet key.
type SessionConfig struct {
	Key string
	TTL time.Duration
}

// MarketConfig holds external provider configuration.
type MarketConfig struct {
	QuoteBaseURL       string
	CryptoBaseURL      string
	IndexBaseURL       string
	RequestTimeout     time.Duration
	QuoteStaleness     time.Duration // age beyond which a quote is flagged stale
	RefreshCronSpec    string
	SnapshotCronSpec   string
	ClockSkewTolerance time.Duration // how far in the future a transaction may be stamped
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/finance_manager.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Session: SessionConfig{
			Key: getEnv("SESSION_KEY", ""),
			TTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		Market: MarketConfig{
			QuoteBaseURL:       getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			CryptoBaseURL:      getEnv("CRYPTO_BASE_URL", "https://api.coingecko.com"),
			IndexBaseURL:       getEnv("INDEX_BASE_URL", "https://api.bcb.gov.br"),
			RequestTimeout:     getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
			QuoteStaleness:     getEnvDuration("QUOTE_STALENESS", 48*time.Hour),
			RefreshCronSpec:    getEnv("REFRESH_CRON", "0 7 * * *"),
			SnapshotCronSpec:   getEnv("SNAPSHOT_CRON", "30 7 * * *"),
			ClockSkewTolerance: getEnvDuration("CLOCK_SKEW_TOLERANCE", 5*time.Minute),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration parses a duration from the environment, accepting either a
// Go duration string or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
