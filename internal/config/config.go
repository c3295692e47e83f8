package config

import (
	"os"
	"runtime"
	"strconv"

	"apareport/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Report ReportConfig
	Server ServerConfig
	Log    LogConfig
}

// ReportConfig holds defaults for formatting calls
type ReportConfig struct {
	ConfidenceLevel float64 // ΔR² bootstrap interval level
	BootSamples     int
	Seed            *int64 // nil: time-seeded, not reproducible
	Workers         int    // parallel bootstrap refits
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// Load reads an optional .env file, then configuration from environment
// variables, and validates it
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	report, err := loadReportConfig()
	if err != nil {
		return nil, err
	}
	config := &Config{
		Report: report,
		Server: ServerConfig{Port: getEnvOrDefault("APA_PORT", "8080")},
		Log:    LogConfig{Level: getEnvOrDefault("APA_LOG_LEVEL", "info")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			ConfidenceLevel: 0.90,
			BootSamples:     2000,
			Workers:         runtime.NumCPU(),
		},
		Server: ServerConfig{Port: "8080"},
		Log:    LogConfig{Level: "info"},
	}
}

func loadReportConfig() (ReportConfig, error) {
	def := Default().Report
	var (
		report ReportConfig
		err    error
	)
	if report.ConfidenceLevel, err = getEnvFloatOrDefault("APA_CONF_LEVEL", def.ConfidenceLevel); err != nil {
		return report, err
	}
	if report.BootSamples, err = getEnvIntOrDefault("APA_BOOT_SAMPLES", def.BootSamples); err != nil {
		return report, err
	}
	if report.Workers, err = getEnvIntOrDefault("APA_WORKERS", def.Workers); err != nil {
		return report, err
	}
	if raw := os.Getenv("APA_SEED"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return report, errors.ConfigInvalid("APA_SEED must be an integer")
		}
		report.Seed = &seed
	}
	return report, nil
}

func validateConfig(config *Config) error {
	if config.Report.ConfidenceLevel <= 0 || config.Report.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid("APA_CONF_LEVEL must be in (0, 1)")
	}
	if config.Report.BootSamples < 1 {
		return errors.ConfigInvalid("APA_BOOT_SAMPLES must be positive")
	}
	if config.Report.Workers < 1 {
		return errors.ConfigInvalid("APA_WORKERS must be positive")
	}
	switch config.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid("APA_LOG_LEVEL must be debug, info, warn or error")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return intValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number")
	}
	return floatValue, nil
}
