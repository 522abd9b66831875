package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL   string
	FrontendURL   string
	Port          string
	SecretKey     string
	TokenTTLHours int
}

func Load() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/syncspace?sslmode=disable"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		Port:          getEnv("PORT", "8080"),
		SecretKey:     getEnv("SECRET_KEY", "your-secret-key-change-this"),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 168),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
