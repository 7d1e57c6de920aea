package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL     string
	DataDir      string
	GameStateTTL time.Duration
	WorkerID     string

	// Campaign is the campaign new games start in when the request names none.
	Campaign string
}

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("GAMESTATE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid GAMESTATE_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("invalid GAMESTATE_TTL: %s is negative", ttl)
	}
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:     getEnv("REDIS_URL", "localhost:6379"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		GameStateTTL: ttl,
		WorkerID:     os.Getenv("WORKER_ID"),
		Campaign:     getEnv("CAMPAIGN", "greywater"),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
