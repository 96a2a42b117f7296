package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"promptlab/internal"
	"promptlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Stats  StatsConfig
	Server ServerConfig
	Source SourceConfig
	Log    LogConfig
}

// StatsConfig holds the overridable parameters of the comparison engine
type StatsConfig struct {
	ZScore  float64
	Alpha   float64
	TMethod string // "normal" or "student"
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// SourceConfig says where comparison records come from. Both fields are optional;
// when DatabaseURL is set it wins over File.
type SourceConfig struct {
	DatabaseURL string
	File        string
	Table       string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// Defaults for the stats engine
const (
	DefaultZScore  = 1.96
	DefaultAlpha   = 0.05
	DefaultTMethod = "normal"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Stats:  loadStatsConfig(),
		Server: loadServerConfig(),
		Source: loadSourceConfig(),
		Log:    loadLogConfig(),
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// Default returns the configuration used when no environment is present
func Default() *Config {
	return &Config{
		Stats: StatsConfig{
			ZScore:  DefaultZScore,
			Alpha:   DefaultAlpha,
			TMethod: DefaultTMethod,
		},
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Source: SourceConfig{Table: "comparisons"},
		Log:    LogConfig{Level: internal.LogLevelInfo},
	}
}

func loadStatsConfig() StatsConfig {
	return StatsConfig{
		ZScore:  getEnvFloatOrDefault("STATS_Z_SCORE", DefaultZScore),
		Alpha:   getEnvFloatOrDefault("STATS_ALPHA", DefaultAlpha),
		TMethod: strings.ToLower(getEnvOrDefault("STATS_T_METHOD", DefaultTMethod)),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadSourceConfig() SourceConfig {
	return SourceConfig{
		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		File:        getEnvOrDefault("COMPARISONS_FILE", ""),
		Table:       getEnvOrDefault("COMPARISONS_TABLE", "comparisons"),
	}
}

func loadLogConfig() LogConfig {
	level, _ := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	return LogConfig{Level: level}
}

// Validate checks value ranges. It does not require any source to be set.
func Validate(cfg *Config) error {
	if cfg.Stats.ZScore <= 0 || math.IsNaN(cfg.Stats.ZScore) || math.IsInf(cfg.Stats.ZScore, 0) {
		return errors.ConfigInvalid("STATS_Z_SCORE must be a positive finite number")
	}
	if !(cfg.Stats.Alpha > 0 && cfg.Stats.Alpha < 1) {
		return errors.ConfigInvalid("STATS_ALPHA must be in (0, 1)")
	}
	switch cfg.Stats.TMethod {
	case "normal", "student":
	default:
		return errors.ConfigInvalid("STATS_T_METHOD must be \"normal\" or \"student\"")
	}
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if cfg.Source.Table == "" {
		return errors.ConfigInvalid("COMPARISONS_TABLE must not be empty")
	}
	return nil
}

// HasSource reports whether a record source is configured
func (c *Config) HasSource() bool {
	return c.Source.DatabaseURL != "" || c.Source.File != ""
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
