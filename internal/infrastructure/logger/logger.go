// Package logger настраивает структурированный логгер приложения.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Setup создает JSON-логгер с уровнем из конфигурации и делает его логгером по умолчанию
func Setup(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	return logger
}
