package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects everything the server reads from the environment. Policy
// values (driver thresholds, advance-notice days) live here so business rules
// can change without recompiling the engine.
type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	ORSAPIKey  string
	ORSBaseURL string
	HomeRegion string

	EmailDomain       string
	SecondDriverHours float64
	AdvanceDaysLocal  int
	AdvanceDaysRemote int

	PendingDigestAgeHours int
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		Port:                  getEnv("PORT", "8080"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		ORSAPIKey:             os.Getenv("ORS_API_KEY"),
		ORSBaseURL:            os.Getenv("ORS_BASE_URL"),
		HomeRegion:            getEnv("HOME_REGION", "Chihuahua"),
		EmailDomain:           getEnv("EMAIL_DOMAIN", "uach.mx"),
		SecondDriverHours:     getEnvFloat("SECOND_DRIVER_HOURS", 6),
		AdvanceDaysLocal:      getEnvInt("ADVANCE_DAYS_LOCAL", 7),
		AdvanceDaysRemote:     getEnvInt("ADVANCE_DAYS_REMOTE", 14),
		PendingDigestAgeHours: getEnvInt("PENDING_DIGEST_AGE_HOURS", 48),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
