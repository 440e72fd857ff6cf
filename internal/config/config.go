package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DatabaseConfig names one logical database/project the core addresses
// by ProjectName (spec §4.6, §6). Several of these back one Registry.
type DatabaseConfig struct {
	ProjectName string `validate:"required"`
	URL         string `validate:"required,url"`
}

// Config holds all configuration for the application, validated at
// startup the same way slighter12-NomNom-Radar validates its request
// DTOs with go-playground/validator.
type Config struct {
	TelegramToken  string           `validate:"required"`
	Databases      []DatabaseConfig `validate:"required,min=1,dive"`
	LogLevel       string           `validate:"required,oneof=debug info warn warning error fatal panic"`
	PrometheusPort string           `validate:"required,numeric"`
	Port           string           `validate:"required,numeric"`
	WebAppURL      string           `validate:"omitempty,url"`
	DefaultTZ      string           `validate:"required"`

	CheckInterval        time.Duration `validate:"required,gt=0"`
	MaxLocationAge       time.Duration `validate:"required,gt=0"`
	MonitoringEnabled    bool
	NotificationsEnabled bool
}

// Load loads configuration from the environment, falling back to a
// local .env file when present (development convenience; production
// deployments set real environment variables, so a missing file is not
// an error).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		Port:           getEnvOrDefault("PORT", "8080"),
		WebAppURL:      os.Getenv("WEB_APP_URL"),
		DefaultTZ:      getEnvOrDefault("DEFAULT_TZ", "Africa/Nairobi"),
	}

	if cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN"); cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	cfg.Databases = buildDatabasesFromEnv()
	if len(cfg.Databases) == 0 {
		return nil, fmt.Errorf("at least one DATABASE_URL_0 / DATABASE_PROJECT_0 pair is required")
	}

	var err error
	if cfg.CheckInterval, err = getEnvDuration("CHECK_INTERVAL_MINUTES", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxLocationAge, err = getEnvDuration("MAX_LOCATION_AGE_MINUTES", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MonitoringEnabled, err = getEnvBool("MONITORING_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.NotificationsEnabled, err = getEnvBool("NOTIFICATIONS_ENABLED", true); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// buildDatabasesFromEnv reads the indexed DATABASE_URL_N / DATABASE_PROJECT_N
// pairs, stopping at the first missing index — the same loop-until-absent
// shape NomNom-Radar uses to build its POSTGRES_REPLICAS_N_* list.
func buildDatabasesFromEnv() []DatabaseConfig {
	var dbs []DatabaseConfig

	for i := 0; ; i++ {
		url := os.Getenv("DATABASE_URL_" + strconv.Itoa(i))
		if url == "" {
			break
		}
		project := os.Getenv("DATABASE_PROJECT_" + strconv.Itoa(i))
		if project == "" {
			project = "default"
		}
		dbs = append(dbs, DatabaseConfig{ProjectName: project, URL: url})
	}

	return dbs
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultMinutes time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultMinutes, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer number of minutes: %w", key, err)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}
