// Package config reads terminal settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the terminal binaries read at start-up.
type Config struct {
	// Backend
	DatabaseURL     string
	CatalogCacheTTL time.Duration
	RevalidateStock bool

	// Client-local state. RedisAddr, when set, replaces the SQLite file so
	// several terminals can share one session store.
	LocalStorePath string
	RedisAddr      string
	RedisNamespace string

	// Currency
	BaseCurrency string

	// HTTP bridge
	ServerPort     string
	AllowedOrigins []string
	JWTSecret      string
}

// Load reads configuration from the environment. A .env file in the working
// directory or its parent is loaded first if present; real environment
// variables always win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil && !os.IsNotExist(err) {
			log.Printf("warning: error loading .env file: %v", err)
		}
	}

	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 30*time.Second),
		RevalidateStock: getEnvAsBool("REVALIDATE_STOCK", true),
		LocalStorePath:  getEnv("LOCAL_STORE_PATH", "pos-terminal.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisNamespace:  getEnv("REDIS_NAMESPACE", "pos"),
		BaseCurrency:    strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:  getList("ALLOWED_ORIGINS"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s (%q), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s (%q), using default: %s", key, valueStr, fallback)
	return fallback
}

// getList splits a comma-separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
