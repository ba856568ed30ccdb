// Package logging builds the slog loggers used by both binaries.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mission-control/telemetry/internal/config"
)

// New returns a logger writing to w. Dev environments get tint's
// human-readable output; prod gets JSON with version and env attached.
func New(cfg config.Log, w io.Writer, version, appName string) *slog.Logger {
	level := cfg.SlogLevel()
	if cfg.Env != "prod" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    w != os.Stdout && w != os.Stderr,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.Env,
	)
}

// NewFile returns a logger writing to the rotating file named by
// cfg.File. The caller closes the returned io.Closer on exit.
func NewFile(cfg config.Log, version, appName string) (*slog.Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	return New(cfg, w, version, appName), w
}
