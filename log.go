package snitray

import (
	"log/slog"
	"os"
)

var (
	debugEnabled = os.Getenv("SNITRAY_DEBUG") == "1"
	logger       = slog.With("pkg", "snitray")
)

func logDebug(msg string, args ...any) {
	if debugEnabled {
		logger.Debug(msg, args...)
	}
}

func logErr(msg string, args ...any) {
	if debugEnabled {
		logger.Error(msg, args...)
	}
}
