// Package config centralises configuration parsing for the carbon API.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/share"
)

// DevJWTSecret is the secret used when JWT_SECRET is unset. It must not be
// used outside local development.
const DevJWTSecret = "dev-secret-change-me"

// Config captures runtime configuration values.
type Config struct {
	HTTPAddress string
	// DatabaseURL selects the Postgres store; empty means the in-memory store.
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	// FactorsFile is an optional YAML file of emission factor overrides.
	FactorsFile    string
	SharePrecision int

	NarrativeAPIKey  string
	NarrativeBaseURL string
	NarrativeModel   string
	NarrativeTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads a .env file if one exists, then environment variables, applying
// defaults for local development.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv reads configuration from the process environment only.
func FromEnv() Config {
	return Config{
		HTTPAddress:      getEnv("HTTP_ADDRESS", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", DevJWTSecret),
		JWTIssuer:        getEnv("JWT_ISSUER", ""),
		FactorsFile:      getEnv("FACTORS_FILE", ""),
		SharePrecision:   getIntEnv("SHARE_PRECISION", share.DefaultPrecision),
		NarrativeAPIKey:  getEnv("NARRATIVE_API_KEY", ""),
		NarrativeBaseURL: getEnv("NARRATIVE_BASE_URL", ""),
		NarrativeModel:   getEnv("NARRATIVE_MODEL", ""),
		NarrativeTimeout: getDurationEnv("NARRATIVE_TIMEOUT", 8*time.Second),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}
}

// FactorTable returns the built-in factors with any FactorsFile overrides applied.
func (c Config) FactorTable() (carbon.FactorTable, error) {
	table := carbon.DefaultFactorTable()
	if c.FactorsFile == "" {
		return table, nil
	}
	f, err := os.Open(c.FactorsFile)
	if err != nil {
		return table, fmt.Errorf("open factors file: %w", err)
	}
	defer f.Close()

	overrides, err := carbon.LoadFactorOverrides(f)
	if err != nil {
		return table, fmt.Errorf("read factors file %s: %w", c.FactorsFile, err)
	}
	return table.WithOverrides(overrides)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
