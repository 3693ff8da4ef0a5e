package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the API server and CLI
type Config struct {
	Addr        string
	DBPath      string
	DBLogLevel  string
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration
	NoticeTTL   time.Duration

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
	// Warnings lists settings that were ignored; the caller logs them
	// once a logger exists.
	Warnings []string
}

// Load reads an optional .env file and then the process environment.
// Missing values fall back to development defaults.
func Load() Config {
	loaded := godotenv.Load() == nil
	var warnings []string
	jwtTTL := getDuration("JWT_TTL", 24*time.Hour, &warnings)
	noticeTTL := getDuration("NOTICE_TTL", 10*time.Minute, &warnings)

	return Config{
		Addr:        getEnv("APP_ADDR", ":8008"),
		DBPath:      getEnv("DB_PATH", "task-tracker.db"),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		JWTSecret:   getEnv("JWT_SECRET", "development-insecure-secret-change-me"),
		JWTIssuer:   getEnv("JWT_ISSUER", "task-tracker-api"),
		JWTAudience: getEnv("JWT_AUDIENCE", "task-tracker-clients"),
		JWTTTL:      jwtTTL,
		NoticeTTL:   noticeTTL,

		EnvFileLoaded: loaded,
		Warnings:      warnings,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, warnings *[]string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*warnings = append(*warnings, fmt.Sprintf("invalid duration for %s (%q), using %s", key, raw, fallback))
		return fallback
	}
	return d
}
