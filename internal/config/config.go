package config

import (
	"os"
	"time"

	"github.com/taskhive/project-management-api/internal/constants"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	JWTSecret     string
	TokenLifetime time.Duration
	GinMode       string
	ServerPort    string
}

func Load() *Config {
	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "projectuser"),
		DBPassword:    getEnv("DB_PASSWORD", "projectpassword"),
		DBName:        getEnv("DB_NAME", "project_management"),
		JWTSecret:     getEnv("JWT_SECRET", "default-secret-key-change-me"),
		TokenLifetime: constants.TokenLifetime,
		GinMode:       getEnv("GIN_MODE", "debug"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
