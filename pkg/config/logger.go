package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide zap logger the bot runs with. The
// level comes from LOG_LEVEL (debug, info, warn, error); unset means
// info. Output is production JSON with ISO8601 timestamps so decision
// logs line up with the journal's decided_at column.
func NewLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		err := level.UnmarshalText([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", raw, err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
