package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string // Postgres; empty means SQLite
	SQLitePath  string
	RedisURL    string // empty means in-process presence
	JWTSecret   string
	SeedRooms   []string // rooms guaranteed to exist at startup
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
	}

	// Parse seed rooms (comma-separated names)
	seed := getEnv("SEED_ROOMS", "general")
	for _, name := range strings.Split(seed, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.SeedRooms = append(cfg.SeedRooms, name)
		}
	}

	// In production, require an explicit signing secret
	if cfg.Env == "production" {
		if os.Getenv("JWT_SECRET") == "" {
			panic("JWT_SECRET is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
