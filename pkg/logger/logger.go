// pkg/logger/logger.go

package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// L returns the process-wide logger, or nil before initialization.
func L() *zap.Logger {
	return log
}

// GetLogger returns the process-wide logger, initializing a console
// fallback if nothing has been set up yet.
func GetLogger() *zap.Logger {
	if log == nil {
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
	}
	return log
}

// ParseLogLevel maps a LOG_LEVEL string onto a zap level, defaulting to info.
func ParseLogLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// DefaultConsoleEncoderConfig returns the encoder settings used for the
// human-facing console core.
func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// Sync flushes any buffered log entries.
func Sync() error {
	if log == nil {
		return nil
	}
	err := log.Sync()
	// Sync on a terminal stdout returns EINVAL on Linux; not actionable.
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

func levelFromEnv() zapcore.Level {
	return ParseLogLevel(os.Getenv("LOG_LEVEL"))
}
