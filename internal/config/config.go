package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the full application configuration.
// Populated from environment variables.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Cart        CartConfig
	Idempotency IdempotencyConfig
	Jobs        JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// CartConfig controls cart lifecycle rules
type CartConfig struct {
	TTL time.Duration // how long a cart stays valid after creation
}

// IdempotencyConfig controls idempotency record retention
type IdempotencyConfig struct {
	RecordTTL time.Duration // how long a record can be replayed
}

// JobConfig holds cron expressions for scheduled maintenance jobs
type JobConfig struct {
	IdempotencyCleanupCron string
	ExpiredCartCleanupCron string
	InstallmentOverdueCron string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "CourseHub API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "coursehub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Cart: CartConfig{
			TTL: getEnvDuration("CART_TTL", 24*time.Hour),
		},
		Idempotency: IdempotencyConfig{
			RecordTTL: getEnvDuration("IDEMPOTENCY_RECORD_TTL", 24*time.Hour),
		},
		Jobs: JobConfig{
			IdempotencyCleanupCron: getEnv("JOB_IDEMPOTENCY_CLEANUP_CRON", "0 * * * *"),  // hourly
			ExpiredCartCleanupCron: getEnv("JOB_EXPIRED_CART_CLEANUP_CRON", "30 * * * *"), // hourly at :30
			InstallmentOverdueCron: getEnv("JOB_INSTALLMENT_OVERDUE_CRON", "0 1 * * *"),  // daily at 1 AM
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
