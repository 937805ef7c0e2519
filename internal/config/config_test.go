package config_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/queryeval/kernel/internal/config"
)

func resetViper() {
	viper.Reset()
}

func TestLoadAppliesDefaults(t *testing.T) {
	resetViper()
	t.Setenv("EVALKERNEL_CONFIG_FILE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Execution.MaxRows != 100 {
		t.Fatalf("expected default max_rows 100, got %d", cfg.Execution.MaxRows)
	}
	if cfg.Execution.ValidationStrictness != "reject_on_error" {
		t.Fatalf("expected default validation_strictness reject_on_error, got %s", cfg.Execution.ValidationStrictness)
	}
	if cfg.Engines.MaxConnections != 10 {
		t.Fatalf("expected default max_connections 10, got %d", cfg.Engines.MaxConnections)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	resetViper()
	t.Setenv("EVALKERNEL_CONFIG_FILE", "")
	t.Setenv("EVALKERNEL_EXECUTION_MAX_ROWS", "250")
	t.Setenv("EVALKERNEL_EXECUTION_VALIDATION_STRICTNESS", "warn_only")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Execution.MaxRows != 250 {
		t.Fatalf("expected max_rows override 250, got %d", cfg.Execution.MaxRows)
	}
	if cfg.Execution.ValidationStrictness != "warn_only" {
		t.Fatalf("expected validation_strictness override warn_only, got %s", cfg.Execution.ValidationStrictness)
	}
}

func TestLoadRejectsInvalidValidationStrictness(t *testing.T) {
	resetViper()
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("execution:\n  validation_strictness: \"nonsense\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("EVALKERNEL_CONFIG_FILE", configPath)

	_, err := config.Load()
	if err == nil {
		t.Fatalf("expected Load to return error for invalid validation_strictness")
	}
}

func TestLoadRejectsNonPositiveMaxConnections(t *testing.T) {
	resetViper()
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("engines:\n  max_connections: 0\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("EVALKERNEL_CONFIG_FILE", configPath)

	_, err := config.Load()
	if err == nil {
		t.Fatalf("expected Load to return error for max_connections 0")
	}
}

func init() {
	logrus.StandardLogger().SetOutput(io.Discard)
}
