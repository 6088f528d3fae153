package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger. The TUI owns the terminal, so in
// interactive mode logs only go to a file, and nowhere when none is set.
func newLogger(cfg LogConfig, verbose, interactive bool) (*zap.Logger, error) {
	if interactive && cfg.File == "" {
		return zap.NewNop(), nil
	}

	config := zap.NewProductionConfig()
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.File != "" {
		config.OutputPaths = []string{cfg.File}
		config.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func elementFields(el Element) []zap.Field {
	return []zap.Field{
		zap.String("id", string(el.ID)),
		zap.Stringer("type", el.Type),
		zap.Int("top", el.Position.Top),
		zap.Int("left", el.Position.Left),
	}
}
