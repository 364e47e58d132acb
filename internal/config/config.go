package config

import (
	"os"
	"time"
)

// Config holds runtime configuration sourced from the environment.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	DatabaseURL string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret []byte

	// FeedCacheTTL bounds how stale a cached feed page may be.
	FeedCacheTTL time.Duration

	// ReconcileInterval controls the background counter reconciler.
	ReconcileInterval time.Duration

	OTLPEndpoint string
}

// Load reads configuration from environment variables, applying defaults
// where a value is optional.
func Load() *Config {
	return &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:           getEnvOrDefault("LOG_FILE", "server.log"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisHost:         getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:         getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         []byte(os.Getenv("JWT_SECRET")),
		FeedCacheTTL:      getEnvDuration("FEED_CACHE_TTL", 5*time.Minute),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 15*time.Minute),
		OTLPEndpoint:      os.Getenv("OTLP_ENDPOINT"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
