package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the earnings service needs from its environment.
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		TierTTL  time.Duration
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Gateway struct {
		BaseURL      string
		ServiceToken string
		Timeout      time.Duration
	}
	JWT struct {
		Secret string
	}
	Engine struct {
		// Source of pricing tiers: "gateway" or "postgres".
		TierSource string
		// Baseline minutes per delivery for the efficiency comparison.
		BaselineMinutes float64
	}
}

// Load reads a .env file if present and builds the config from the
// environment. Missing keys fall back to development defaults.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Server.Port = getEnvAsInt("SERVER_PORT", 3003)

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "parcelhub_user")
	cfg.DB.Password = getEnv("DB_PASS", "parcelhub_pass")
	cfg.DB.Database = getEnv("DB_NAME", "parcelhub_db")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASS", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	cfg.Redis.TierTTL = getEnvAsDuration("REDIS_TIER_TTL", 5*time.Minute)

	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	cfg.RabbitMQ.Port = getEnvAsInt("RABBITMQ_PORT", 5672)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", "guest")
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASS", "guest")

	cfg.Gateway.BaseURL = getEnv("GATEWAY_BASE_URL", "http://localhost:8000")
	cfg.Gateway.ServiceToken = getEnv("GATEWAY_SERVICE_TOKEN", "")
	cfg.Gateway.Timeout = getEnvAsDuration("GATEWAY_TIMEOUT", 10*time.Second)

	cfg.JWT.Secret = getEnv("JWT_SECRET", "dev-secret-change-me")

	cfg.Engine.TierSource = getEnv("TIER_SOURCE", "gateway")
	cfg.Engine.BaselineMinutes = getEnvAsFloat("BASELINE_MINUTES_PER_DELIVERY", 30)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
