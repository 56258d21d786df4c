// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Stores
	DatabaseURL string
	RedisURL    string

	// Engine
	ResultTTL time.Duration // classification cache / staleness window

	// Batch worker
	WorkerMax       int
	WorkerBatchSize int
	WorkerFetch     int
	WorkerPoll      time.Duration

	// HTTP
	BodyLimitMB     int
	CORSOrigins     string
	RateLimitPerMin int
}

// Load reads configuration from environment variables with defaults fit for
// local development.
func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		ResultTTL: time.Duration(getEnvInt("RESULT_TTL_MIN", 60)) * time.Minute,

		WorkerMax:       getEnvInt("WORKER_MAX", 4),
		WorkerBatchSize: getEnvInt("WORKER_BATCH_SIZE", 50),
		WorkerFetch:     getEnvInt("WORKER_FETCH_LIMIT", 500),
		WorkerPoll:      time.Duration(getEnvInt("WORKER_POLL_SEC", 30)) * time.Second,

		BodyLimitMB:     getEnvInt("BODY_LIMIT_MB", 10),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}
