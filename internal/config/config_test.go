package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Workers != 4 || cfg.CacheSize != 1024 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RequireID || cfg.DerivedBMI || cfg.TracingEnabled() {
		t.Errorf("feature flags should default off: %+v", cfg)
	}
	if cfg.TraceSampleRate != 1.0 {
		t.Errorf("TraceSampleRate = %v", cfg.TraceSampleRate)
	}
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("EMR_WORKERS", "12")
	t.Setenv("EMR_REQUIRE_ID", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 12 || !cfg.RequireID || !cfg.TracingEnabled() {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "emr.yaml")
	data := []byte("EMR_LOG_LEVEL: debug\nEMR_WORKERS: 2\nEMR_DERIVED_BMI: true\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EMR_WORKERS", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" || !cfg.DerivedBMI {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Workers != 6 {
		t.Errorf("environment should override file, Workers = %d", cfg.Workers)
	}
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "local.env")
	if err := os.WriteFile(path, []byte("EMR_CACHE_SIZE=0\nEMR_SERVICE_NAME=intake\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CacheSize != 0 || cfg.ServiceName != "intake" {
		t.Errorf("dotenv values not applied: %+v", cfg)
	}
	if got := os.Getenv("EMR_SERVICE_NAME"); got != "intake" {
		t.Errorf("dotenv should export to the environment, got %q", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{LogLevel: "info", Workers: 1, TraceSampleRate: 0.5}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }, true},
		{"sample rate above one", func(c *Config) { c.TraceSampleRate = 1.5 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := Config{LogLevel: "warn", Environment: "production"}
	logger, err := cfg.Logger()
	if err != nil {
		t.Fatalf("Logger() error = %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Error("debug should be disabled at warn level")
	}
}
