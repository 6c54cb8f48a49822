package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Infrastructure
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MetricsAddr   string

	// Batch behavior
	Workers     int           // bounded worker pool size (storage-capacity bound)
	SnapshotTTL time.Duration // expiry on Redis-mirrored snapshot keys
	ATMBand     int           // strike band half-width for ATM selection

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		SQLitePath:    getEnv("SQLITE_PATH", "data/nfo.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		Workers:     getEnvInt("WORKERS", 8),
		SnapshotTTL: getEnvDuration("SNAPSHOT_TTL", 24*time.Hour),
		ATMBand:     getEnvInt("ATM_BAND", 2),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
