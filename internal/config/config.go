package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
)

const (
	EnvLocal       = "local"
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Seed      SeedConfig
	Metrics   *observability.Config
	Logging   *observability.LoggingConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name  string
	Env   string // local, development, or production
	Port  int
	Debug bool // automatically set based on Env
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Timeout         int
	MaxConnections  int
	IdleConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// AuthConfig holds token and password hashing configuration
type AuthConfig struct {
	JWTSecret        string
	TokenExpiry      time.Duration
	PasswordHashCost int
	PasswordMinLen   int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	Enabled           bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials bool
	MaxAge           time.Duration
}

// SeedConfig holds the initial super admin credentials. Used once at boot
// when no super admin exists yet.
type SeedConfig struct {
	SuperAdminName     string
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Attempt to load .env file - useful for local dev, ignored in production if vars are set
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", EnvLocal)
	debug := appEnv != EnvProduction
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	return &Config{
		App: AppConfig{
			Name:  getEnv("APP_NAME", "chatbot-backoffice"),
			Env:   appEnv,
			Port:  getEnvAsInt("APP_PORT", 8080),
			Debug: debug,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASS", "postgres"),
			Name:            getEnv("DB_NAME", "chatbot_backoffice"),
			Timeout:         getEnvAsInt("DB_TIMEOUT", 30),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 100),
			IdleConnections: getEnvAsInt("DB_IDLE_CONNECTIONS", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", "insecure-jwt-secret"),
			TokenExpiry:      getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
			PasswordHashCost: getEnvAsInt("PASSWORD_HASH_COST", 12),
			PasswordMinLen:   getEnvAsInt("PASSWORD_MIN_LENGTH", 8),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat64("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS"),
			AllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "Authorization,Content-Type"),
			ExposedHeaders:   getEnv("CORS_EXPOSED_HEADERS", "Content-Length,Content-Disposition"),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvAsDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		Seed: SeedConfig{
			SuperAdminName:     getEnv("SEED_SUPER_ADMIN_NAME", "Super Admin"),
			SuperAdminEmail:    getEnv("SEED_SUPER_ADMIN_EMAIL", ""),
			SuperAdminPassword: getEnv("SEED_SUPER_ADMIN_PASSWORD", ""),
		},
		Metrics: &observability.Config{
			Enabled:          getEnvAsBool("METRICS_ENABLED", true),
			MetricsNamespace: getEnv("METRICS_NAMESPACE", "chatbot_backoffice"),
		},
		Logging: &observability.LoggingConfig{
			Level:      observability.LogLevel(getEnv("LOG_LEVEL", logLevel)),
			JSONFormat: getEnvAsBool("LOG_JSON", true),
			OutputPath: getEnv("LOG_FILE", ""),
		},
	}, nil
}

// Helper functions to get environment variables with default values
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// GetRedisAddr returns the Redis address as host:port
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
