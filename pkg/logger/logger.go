// Package logger builds a configured logrus.Logger for the evaluation
// kernel: level, format, and output (stdout/stderr/file, with lumberjack
// rotation) are all driven from Config.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction.
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// New builds a *logrus.Logger from Config.
func New(config Config) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		return nil, fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch strings.ToLower(config.Output) {
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	case "file":
		if config.File == "" {
			return nil, fmt.Errorf("log file path is required when output is 'file'")
		}
		logger.SetOutput(rotatingFile(config))
	case "both":
		if config.File == "" {
			return nil, fmt.Errorf("log file path is required when output is 'both'")
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, rotatingFile(config)))
	default:
		return nil, fmt.Errorf("invalid log output: %s", config.Output)
	}

	return logger, nil
}

func rotatingFile(config Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// WithComponent tags an entry with the kernel component that produced it
// (e.g. "parser", "executor", "scorer").
func WithComponent(logger *logrus.Logger, component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// WithQuery tags an entry with the SQL text being processed, for
// correlating a log line back to the evaluation that produced it.
func WithQuery(logger *logrus.Logger, sql string) *logrus.Entry {
	return logger.WithField("sql", sql)
}

// DefaultConfig is the out-of-the-box logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// DevelopmentConfig favors human-readable, verbose local output.
func DevelopmentConfig() Config {
	return Config{
		Level:      "debug",
		Format:     "text",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}
