package config

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string
	LogLevel    string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisAddress string
	CacheTTL     time.Duration

	// Secret of the access tokens issued by the hosted auth backend
	JWTSecret string

	// internal secret used for server-to-server calls
	InternalSecret string

	FrontendAddress string

	// Page builder
	HistoryLimit     int
	VersionListLimit int
	TemplateSlugs    []string
	DefaultsFile     string
	SessionTTL       time.Duration
	WorkerPoolSize   int

	// Warnings collected while loading, logged once a logger exists
	Warnings []string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	var envErr error
	if _, err := os.Stat(envPath); err == nil {
		envErr = godotenv.Load(envPath)
	}

	AppConfig = FromEnv()
	if envErr != nil {
		AppConfig.Warnings = append(AppConfig.Warnings, fmt.Sprintf("error loading .env file: %v", envErr))
	}
}

// FromEnv builds a Config from the current environment.
func FromEnv() Config {
	var warnings []string
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = generateRandomSecret(32) // admin routes reject every token until configured
		warnings = append(warnings, "JWT_SECRET is not set, generated a random one")
	}

	return Config{
		ServerPort:       getEnv("PORT", "8080"),
		Environment:      getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "storefront"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		RedisAddress:     getEnv("REDIS_ADDRESS", "localhost:6379"),
		CacheTTL:         getDuration("CACHE_TTL", 10*time.Minute),
		JWTSecret:        jwtSecret,
		InternalSecret:   getEnv("INTERNAL_SECRET", "storefront-internal-secret"),
		FrontendAddress:  getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
		HistoryLimit:     getInt("HISTORY_LIMIT", 50),
		VersionListLimit: getInt("VERSION_LIST_LIMIT", 20),
		TemplateSlugs:    getList("TEMPLATE_SLUGS", []string{"collection-template", "product-template"}),
		DefaultsFile:     getEnv("DEFAULTS_FILE", "defaults.yml"),
		SessionTTL:       getDuration("EDITOR_SESSION_TTL", 2*time.Hour),
		WorkerPoolSize:   getInt("WORKER_POOL_SIZE", 4),
		Warnings:         warnings,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// getList reads a comma separated list, blanks are dropped
func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// generateRandomSecret generates a random secret of the specified length
func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secret := make([]byte, length)
	for i := range secret {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(err)
		}
		secret[i] = charset[n.Int64()]
	}
	return string(secret)
}
