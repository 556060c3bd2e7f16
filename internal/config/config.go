package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret     string
	TokenLifetime time.Duration

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	ModerationEnabled bool

	IngestEnabled  bool
	IngestSchedule string
	IngestFeedURL  string

	MaxClients int

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Best effort: OS environment wins over .env contents.
	_ = gotenv.Load()

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		IngestSchedule:    getEnv("INGEST_SCHEDULE", "0 */12 * * *"),
		IngestFeedURL:     getEnv("INGEST_FEED_URL", "https://www.reddit.com/r/worldnews/hot.json?limit=5"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		ModerationEnabled: getEnvBool("MODERATION_ENABLED", false),
		IngestEnabled:     getEnvBool("INGEST_ENABLED", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	lifetimeHours, err := getEnvInt("TOKEN_LIFETIME_HOURS", 72)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_LIFETIME_HOURS must be an integer: %w", err)
	}
	if lifetimeHours <= 0 {
		return nil, fmt.Errorf("TOKEN_LIFETIME_HOURS must be positive")
	}
	cfg.TokenLifetime = time.Duration(lifetimeHours) * time.Hour

	timeoutSeconds, err := getEnvInt("OPENAI_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_TIMEOUT_SECONDS must be an integer: %w", err)
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("OPENAI_TIMEOUT_SECONDS must be positive")
	}
	cfg.OpenAITimeout = time.Duration(timeoutSeconds) * time.Second

	maxClients, err := getEnvInt("MAX_WS_CLIENTS", 1000)
	if err != nil {
		return nil, fmt.Errorf("MAX_WS_CLIENTS must be an integer: %w", err)
	}
	if maxClients <= 0 {
		return nil, fmt.Errorf("MAX_WS_CLIENTS must be positive")
	}
	cfg.MaxClients = maxClients

	if cfg.ModerationEnabled && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("MODERATION_ENABLED requires OPENAI_API_KEY")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
