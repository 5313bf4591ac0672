package bootstrap

import (
	"io"
	"log/slog"

	"github.com/abgdnv/stockguard/pkg/config"
	"github.com/abgdnv/stockguard/pkg/logger"
)

// NewLogger creates a slog.Logger writing to w with the configured level and format.
// JSON is used unless the format is text.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	logLevel := ToLevel(cfg.Level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	var logHandler slog.Handler
	if cfg.Format == config.LogFormatText {
		logHandler = slog.NewTextHandler(w, loggerOpts)
	} else {
		logHandler = slog.NewJSONHandler(w, loggerOpts)
	}
	return slog.New(logger.NewContextHandler(logHandler))
}

// ToLevel converts a string representation of a log level to slog.Level.
func ToLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
