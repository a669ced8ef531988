package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"ytdlsync/src/features/config"
)

// SetupLogger builds the process-wide slog logger. When a log path is
// configured the output is duplicated to that file so scheduled runs leave a
// trail even when nobody watches stderr.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	var formatter log.Formatter
	switch cfg.Get().Logger.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	level := log.InfoLevel
	switch cfg.Get().Logger.Level {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	var out io.Writer = os.Stderr
	if logPath := cfg.Get().Logger.Path; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			slog.Warn("Failed to create log directory", "path", logPath, "error", err)
		} else if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			slog.Warn("Failed to open log file", "path", logPath, "error", err)
		} else {
			out = io.MultiWriter(os.Stderr, f)
		}
	}

	handler := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "ytdlsync",
		Formatter:       formatter,
		Level:           level,
	})

	return slog.New(handler)
}
