package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	LogLevel       zerolog.Level
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string
	ServerAddress  string

	RedisAddress  string
	RedisUsername string
	RedisPassword string
	CacheTTL      time.Duration

	MQTTBrokerURL string
	MQTTClientID  string

	DefaultLocation *time.Location
	Policy          availability.Policy
}

func (c *Config) Development() bool { return c.Environment == "development" }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:    getenv("APP_ENV", "production"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		RedisAddress:   os.Getenv("REDIS_ADDRESS"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:  os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:   getenv("MQTT_CLIENT_ID", "perks-server"),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getenv("CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.DefaultLocation, err = time.LoadLocation(getenv("DEFAULT_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	if cfg.Policy.Weekday, err = availability.ParseWeekdayConvention(os.Getenv("AVAILABILITY_WEEKDAY")); err != nil {
		return nil, fmt.Errorf("AVAILABILITY_WEEKDAY: %w", err)
	}
	if cfg.Policy.Precision, err = availability.ParsePrecision(os.Getenv("AVAILABILITY_PRECISION")); err != nil {
		return nil, fmt.Errorf("AVAILABILITY_PRECISION: %w", err)
	}
	return cfg, nil
}
