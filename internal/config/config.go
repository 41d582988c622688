package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Feed      FeedConfig
	Engine    EngineConfig
	LogLevel  string
	LogFormat string
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

// FeedConfig holds price-feed configuration. The API token itself is stored
// encrypted in the database; FernetKey decrypts it.
type FeedConfig struct {
	BaseURL   string
	FernetKey string
}

// EngineConfig holds recompute pipeline configuration. Cron specs use the
// robfig/cron format; Workers bounds the per-user recompute pool.
type EngineConfig struct {
	SnapshotSchedule string
	AlertSchedule    string
	Workers          int
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
			Path: getEnv("DB_PATH", "./data/portfolio_engine.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost"), ","),
		},
		Feed: FeedConfig{
			BaseURL:   getEnv("FEED_BASE_URL", "https://query1.finance.yahoo.com"),
			FernetKey: getEnv("FEED_FERNET_KEY", ""),
		},
		Engine: EngineConfig{
			SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "0 30 18 * * *"),
			AlertSchedule:    getEnv("ALERT_SCHEDULE", "0 0 * * * *"),
			Workers:          getEnvInt("RECOMPUTE_WORKERS", 4),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if config.Engine.Workers < 1 {
		return nil, fmt.Errorf("RECOMPUTE_WORKERS must be at least 1, got %d", config.Engine.Workers)
	}

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

// getEnvInt gets an integer environment variable or returns a default value.
// Unparseable values fall back to the default rather than failing startup.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
