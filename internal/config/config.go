// Package config loads the evaluation kernel's configuration from built-in
// defaults, a YAML file, .env files, and environment variables, in that
// order of increasing priority (a .env file never overrides a variable
// already set in the environment), following the same viper-driven shape
// as the rest of this codebase's services.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/queryeval/kernel/pkg/logger"
)

// Config is the kernel's full runtime configuration.
type Config struct {
	Execution ExecutionConfig `mapstructure:"execution"`
	Engines   EnginesConfig   `mapstructure:"engines"`
	Log       logger.Config   `mapstructure:"log"`
}

// ExecutionConfig holds the Sandboxed Executor's default policy, overridable
// per call via EvalOptions.
type ExecutionConfig struct {
	MaxRows               int           `mapstructure:"max_rows"`
	QueryTimeout          time.Duration `mapstructure:"query_timeout"`
	IntrospectionTimeout  time.Duration `mapstructure:"introspection_timeout"`
	ValidationStrictness  string        `mapstructure:"validation_strictness"`
	AllowNonSelect        bool          `mapstructure:"allow_non_select"`
	SlowQueryThreshold    time.Duration `mapstructure:"slow_query_threshold"`
	WeightsPreset         string        `mapstructure:"weights_preset"`
}

// EnginesConfig holds connection-pool sizing shared by every server-based
// Engine Adapter, plus the per-dialect DSNs used to reach a concrete engine.
type EnginesConfig struct {
	MaxConnections     int               `mapstructure:"max_connections"`
	MaxIdleConns       int               `mapstructure:"max_idle_connections"`
	ConnectionTimeout  time.Duration     `mapstructure:"connection_timeout"`
	IdleTimeout        time.Duration     `mapstructure:"idle_timeout"`
	ConnectionLifetime time.Duration     `mapstructure:"connection_lifetime"`
	DSNs               map[string]string `mapstructure:"dsns"`
}

// Load reads kernel configuration from (in increasing priority) defaults,
// an optional YAML config file, .env/.env.<environment>, and environment
// variables prefixed EVALKERNEL_.
func Load() (*Config, error) {
	if err := LoadEnv(nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	setDefaults()

	if configFile := os.Getenv("EVALKERNEL_CONFIG_FILE"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/evalkernel")
	}

	viper.SetEnvPrefix("EVALKERNEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Log.Level = strings.TrimSpace(config.Log.Level)
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	config.Log.Format = strings.TrimSpace(config.Log.Format)
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	config.Log.Output = strings.TrimSpace(config.Log.Output)
	if config.Log.Output == "" {
		config.Log.Output = "stdout"
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("execution.max_rows", 100)
	viper.SetDefault("execution.query_timeout", "30s")
	viper.SetDefault("execution.introspection_timeout", "10s")
	viper.SetDefault("execution.validation_strictness", "reject_on_error")
	viper.SetDefault("execution.allow_non_select", false)
	viper.SetDefault("execution.slow_query_threshold", "1s")
	viper.SetDefault("execution.weights_preset", "default")

	viper.SetDefault("engines.max_connections", 10)
	viper.SetDefault("engines.max_idle_connections", 2)
	viper.SetDefault("engines.connection_timeout", "10s")
	viper.SetDefault("engines.idle_timeout", "5m")
	viper.SetDefault("engines.connection_lifetime", "1h")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)
}

func validate(config *Config) error {
	if config.Execution.MaxRows < 0 {
		return fmt.Errorf("execution.max_rows must be non-negative")
	}

	switch config.Execution.ValidationStrictness {
	case "reject_on_error", "warn_only", "off":
	default:
		return fmt.Errorf("invalid execution.validation_strictness: %s", config.Execution.ValidationStrictness)
	}

	switch config.Execution.WeightsPreset {
	case "default", "strict", "performance", "quality":
	default:
		return fmt.Errorf("invalid execution.weights_preset: %s", config.Execution.WeightsPreset)
	}

	if config.Engines.MaxConnections <= 0 {
		return fmt.Errorf("engines.max_connections must be positive")
	}
	if config.Engines.MaxIdleConns < 0 || config.Engines.MaxIdleConns > config.Engines.MaxConnections {
		return fmt.Errorf("engines.max_idle_connections must be between 0 and max_connections")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(config.Log.Format)] {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	return nil
}

// DSN returns the configured connection string for a dialect, if any.
func (c *Config) DSN(dialect string) (string, bool) {
	dsn, ok := c.Engines.DSNs[strings.ToLower(dialect)]
	return dsn, ok
}
