package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the lib/pq connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Config is the service configuration, read from the environment.
type Config struct {
	Port        string
	Env         string // "development" or "production"
	StoreDriver string // "postgres" or "memory"
	JWTSecret   string
	TokenTTL    time.Duration
	NumWorkers  int
	DB          DBConfig
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables. Call godotenv.Load
// before this if a .env file should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "mercury"),
			Password: getEnv("DB_PASSWORD", "mercury"),
			Name:     getEnv("DB_NAME", "mercury_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in production")
		}
		cfg.JWTSecret = "dev-secret-do-not-use-in-production"
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	workers, err := strconv.Atoi(getEnv("NUM_WORKERS", "5"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid NUM_WORKERS: %q", getEnv("NUM_WORKERS", "5"))
	}
	cfg.NumWorkers = workers

	return cfg, nil
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
