package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DatabasePath string
	CatalogPath  string // optional TOML catalog/weight overrides
	IndexTicker  string // index used for drawdown tracking
	FredAPIKey   string
	CacheTTL     time.Duration
	LogLevel     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("GO_PORT", 8090),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/weltfolio.db"),
		CatalogPath:  getEnv("CATALOG_PATH", ""),
		IndexTicker:  getEnv("INDEX_TICKER", "URTH"),
		FredAPIKey:   getEnv("FRED_API_KEY", ""),
		CacheTTL:     time.Duration(getEnvAsInt("CACHE_TTL_MINUTES", 30)) * time.Minute,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.IndexTicker == "" {
		return fmt.Errorf("INDEX_TICKER is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must be positive")
	}

	// Note: FRED_API_KEY optional, the spread falls back to a VIX estimate

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
