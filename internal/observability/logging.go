// Package observability builds the process-wide zap logger. Emberfall's
// visibility into a running simulation comes from structured logs on the
// tick path; metrics and tracing layers sit outside this repo.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/emberfall/internal/config"
)

// NewLogger builds the process logger from cfg. Format "json" uses the
// production encoder for log ingestion; "console" uses the development
// encoder for a terminal, with stacktraces reserved for errors so a
// noisy tick does not bury the output. Levels follow zapcore's names.
//
// Postcondition: Returns a ready logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	var base zap.Config
	switch cfg.Format {
	case "json":
		base = zap.NewProductionConfig()
	case "console":
		base = zap.NewDevelopmentConfig()
		base.Development = false
	default:
		return nil, fmt.Errorf("log format %q: want json or console", cfg.Format)
	}
	base.Level = zap.NewAtomicLevelAt(level)
	base.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := base.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
