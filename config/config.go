// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Addr        string
	DBPath      string
	JWTSecret   string
	Environment string
	CORSOrigins []string
}

// Load reads configuration from the environment with dev-friendly
// defaults. Validate separately; a missing JWT secret is legal in
// development but not in production.
func Load() Config {
	return Config{
		Addr:        getEnv("APP_ADDR", ":8080"),
		DBPath:      getEnv("DB_PATH", "payroll.db"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Environment: getEnv("APP_ENV", "development"),
		CORSOrigins: splitEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080"),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
