package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment selects the security posture for session cookies.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// ParseEnvironment maps the APP_ENV value to an Environment. Anything that is
// not explicitly "development" gets the production posture.
func ParseEnvironment(value string) Environment {
	if value == string(Development) {
		return Development
	}
	return Production
}

// Config holds the application configuration. It is read once at startup and
// treated as read-only afterwards.
type Config struct {
	ServerPort        int
	DatabasePath      string
	Environment       Environment
	AccessTokenSecret string
	PruneSchedule     string
	ActivityRetention int // days of account activity to keep
}

// Load loads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// Optional, mirrors how the app is run locally. Deployed environments set
	// variables directly.
	_ = godotenv.Load()

	portStr := getEnv("PORT", "5500")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	retentionStr := getEnv("ACTIVITY_RETENTION_DAYS", "90")
	retention, err := strconv.Atoi(retentionStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:        port,
		DatabasePath:      getEnv("DATABASE_PATH", "./cse340.db"),
		Environment:       ParseEnvironment(getEnv("APP_ENV", "production")),
		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		PruneSchedule:     getEnv("ACTIVITY_PRUNE_SCHEDULE", "0 3 * * *"),
		ActivityRetention: retention,
	}, nil
}

// IsDevelopment reports whether the relaxed development posture is active.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
