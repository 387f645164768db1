package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger routes the default slog logger to a size-rotated log file.
// Logging must never interfere with terminal output, so nothing is written
// to stdout/stderr.
func InitLogger(verbose bool) {
	logPath := LogFilePath()

	_ = os.MkdirAll(filepath.Dir(logPath), 0o755)

	w := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
