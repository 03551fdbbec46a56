// Package observability provides structured logging for the tileset tools.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/tileset/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Output goes to stderr so that tool output on stdout stays machine-readable.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NewCLILogger returns a console logger at the given level for tools that
// run without a config file.
//
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewCLILogger(level string) (*zap.Logger, error) {
	return NewLogger(config.LoggingConfig{Level: level, Format: "console"})
}

// Tileset returns the standard fields identifying a descriptor in log entries.
func Tileset(name, path string) zap.Field {
	return zap.Dict("tileset", zap.String("name", name), zap.String("path", path))
}
