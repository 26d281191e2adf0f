// Package logger builds the process-wide slog logger with optional file rotation.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// debug, info, warn, error
	Level string
	// json or text
	Format string
	// stdout, file, both
	Output   string
	FilePath string
	// rotation, in MB / files / days
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	WithCaller bool
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to stdout; see NewWithWriter.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds a logger for cfg, using stdout as the console sink.
// The returned Closer releases the rotating file, if any.
func NewWithWriter(cfg Config, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logger: output %q needs a file path", cfg.Output)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		fw := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		closer = fw
		out = fw
		if strings.EqualFold(cfg.Output, "both") {
			out = io.MultiWriter(stdout, fw)
		}
	case "", "stdout":
		out = stdout
	default:
		return nil, nil, fmt.Errorf("logger: unknown output %q", cfg.Output)
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.WithCaller,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(h), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
