package logger

import (
	"log/slog"
	"os"
)

// New creates the process-wide JSON logger. Every line carries the service
// name so the lifecycle topics and HTTP logs aggregate cleanly alongside
// other services sharing the log pipeline.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", "orderflow"))
}
