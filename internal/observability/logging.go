// Package observability builds the battle server's zap loggers: one root
// logger per process, then children scoped to a Telnet client and to a
// single battle.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/apprentice/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Every entry carries the service name.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		// Sampling would drop per-action combat traces.
		if level == zapcore.DebugLevel {
			zapCfg.Sampling = nil
		}
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if service != "" {
		zapCfg.InitialFields = map[string]interface{}{"service": service}
	}

	logger, err := zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// RemoteLogger returns a child logger for one Telnet client.
func RemoteLogger(logger *zap.Logger, remoteAddr string) *zap.Logger {
	return logger.With(zap.String("remote_addr", remoteAddr))
}

// BattleLogger returns a child logger for one combat session. Engine and
// handler entries for the same battle share the session_id field.
func BattleLogger(logger *zap.Logger, sessionID, encounter string) *zap.Logger {
	fields := []zap.Field{zap.String("session_id", sessionID)}
	if encounter != "" {
		fields = append(fields, zap.String("encounter", encounter))
	}
	return logger.With(fields...)
}
