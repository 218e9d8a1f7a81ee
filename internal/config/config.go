package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from the environment
type Config struct {
	Port        string
	Environment string

	DatabaseURL      string
	DBMaxIdleConns   int
	DBMaxOpenConns   int
	DBVerboseLogging bool

	JWTSecret string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AWSRegion    string
	S3Bucket     string
	S3BaseURL    string
	SESFromEmail string
	SESFromName  string

	GoogleClientID     string
	GoogleClientSecret string

	CORSOrigins []string

	LogLevel string
	LogFile  string

	TracingEnabled      bool
	TracingOTLPEndpoint string
	TracingSamplingRate float64

	RateLimitMaxRequests int
	RateLimitWindowSecs  int
}

// Load reads configuration from environment variables. DATABASE_URL and
// JWT_SECRET are required; everything else has a development default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        GetEnv("PORT", "8080"),
		Environment: GetEnv("ENVIRONMENT", "development"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxIdleConns:   GetEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:   GetEnvInt("DB_MAX_OPEN_CONNS", 100),
		DBVerboseLogging: GetEnvBool("DB_VERBOSE_LOGGING", false),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion:    GetEnv("AWS_REGION", "us-east-1"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3BaseURL:    os.Getenv("S3_BASE_URL"),
		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		SESFromName:  GetEnv("SES_FROM_NAME", "ClipTide"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		LogLevel: GetEnv("LOG_LEVEL", "info"),
		LogFile:  GetEnv("LOG_FILE", "logs/cliptide.log"),

		TracingEnabled:      GetEnvBool("TRACING_ENABLED", false),
		TracingOTLPEndpoint: GetEnv("OTLP_ENDPOINT", "localhost:4318"),
		TracingSamplingRate: GetEnvFloat("TRACING_SAMPLING_RATE", 0.1),

		RateLimitMaxRequests: GetEnvInt("RATE_LIMIT_MAX_REQUESTS", 300),
		RateLimitWindowSecs:  GetEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitAndTrim(origins)
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	return cfg, nil
}

// GetEnv returns an environment variable or a fallback
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt returns an integer environment variable or a fallback
func GetEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvBool returns a boolean environment variable or a fallback
func GetEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvFloat returns a float environment variable or a fallback
func GetEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
