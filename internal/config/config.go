// Package config loads runtime settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds application configuration
type Config struct {
	LogLevel        string  `mapstructure:"EMR_LOG_LEVEL"`
	Environment     string  `mapstructure:"EMR_ENV"`
	ServiceName     string  `mapstructure:"EMR_SERVICE_NAME"`
	Workers         int     `mapstructure:"EMR_WORKERS"`
	CacheSize       int     `mapstructure:"EMR_CACHE_SIZE"`
	RequireID       bool    `mapstructure:"EMR_REQUIRE_ID"`
	DerivedBMI      bool    `mapstructure:"EMR_DERIVED_BMI"`
	MetricsFile     string  `mapstructure:"EMR_METRICS_FILE"`
	OTLPEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRate float64 `mapstructure:"EMR_TRACE_SAMPLE_RATE"`
}

var keys = []string{
	"EMR_LOG_LEVEL",
	"EMR_ENV",
	"EMR_SERVICE_NAME",
	"EMR_WORKERS",
	"EMR_CACHE_SIZE",
	"EMR_REQUIRE_ID",
	"EMR_DERIVED_BMI",
	"EMR_METRICS_FILE",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"EMR_TRACE_SAMPLE_RATE",
}

// Load reads configuration. With an empty path a .env file in the working
// directory is used if present. A named file must exist; .env files are also
// exported to the process environment so that libraries reading os.Getenv
// see them. Environment variables win over file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("EMR_LOG_LEVEL", "info")
	v.SetDefault("EMR_ENV", "development")
	v.SetDefault("EMR_SERVICE_NAME", "emr-check")
	v.SetDefault("EMR_WORKERS", 4)
	v.SetDefault("EMR_CACHE_SIZE", 1024)
	v.SetDefault("EMR_TRACE_SAMPLE_RATE", 1.0)

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if isDotenv(path) {
		if err := godotenv.Load(path); err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		v.SetConfigType("env")
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && explicit {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func isDotenv(path string) bool {
	base := filepath.Base(path)
	return base == ".env" || strings.HasSuffix(base, ".env")
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("EMR_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("EMR_CACHE_SIZE must not be negative, got %d", c.CacheSize)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("EMR_TRACE_SAMPLE_RATE must be within [0, 1], got %v", c.TraceSampleRate)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("EMR_LOG_LEVEL: %w", err)
	}
	return nil
}

// TracingEnabled reports whether an OTLP endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

// Logger builds a production zap logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if c.Environment == "development" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zc.Build()
}
