// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the logger. LOG_PRETTY=1 selects the development encoder,
// LOG_LEVEL ("debug", "info", "warn", "error") overrides the level.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if os.Getenv("LOG_PRETTY") == "1" {
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := zap.ParseAtomicLevel(lvl)
		if err != nil {
			return nil, err
		}
		cfg.Level = parsed
	}
	return cfg.Build()
}

// MustNew is New, panicking on failure. Intended for main functions.
func MustNew() *zap.Logger {
	logger, err := New()
	if err != nil {
		panic(err)
	}
	return logger
}

// OrNop returns logger, or a no-op logger when nil. Components accept a
// nil logger and call this once at construction.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
