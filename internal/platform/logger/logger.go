package logger

import (
	"log/slog"
	"os"
)

// New returns the JSON slog logger every service in this repo consumes.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
