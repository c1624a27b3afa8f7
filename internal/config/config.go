package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration. Values come from an optional YAML file
// (VENDFLEET_CONFIG) with environment variables filling anything the file
// leaves empty.
type Config struct {
	DatabaseURL     string        `yaml:"database_url"`
	HTTPAddr        string        `yaml:"http_addr"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	LockTimeout     time.Duration `yaml:"lock_timeout"`
	Currency        string        `yaml:"currency"`
	DailyGenerateAt string        `yaml:"daily_generate_at"`
}

// Load reads configuration. A local .env file is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("VENDFLEET_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = getenvDefault("DATABASE_URL", os.Getenv("PG_DSN"))
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", os.Getenv("JWT_SECRET"))
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = getenvDuration("AUTH_TOKEN_TTL", 12*time.Hour)
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = getenvDuration("DB_LOCK_TIMEOUT", 3*time.Second)
	}
	if cfg.Currency == "" {
		cfg.Currency = getenvDefault("CURRENCY", "CNY")
	}
	if cfg.DailyGenerateAt == "" {
		cfg.DailyGenerateAt = getenvDefault("STATS_DAILY_AT", "00:05")
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: DATABASE_URL required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
