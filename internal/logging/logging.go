// Package logging builds the process-wide slog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/1broseidon/multiview/internal/runtimepath"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Sink string

const (
	SinkStderr Sink = "stderr"
	SinkFile   Sink = "file"
	SinkNone   Sink = "none"
)

// Config is the logging section of the multiview config file.
type Config struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Sink       string `yaml:"sink"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig logs info and above as text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     string(FormatText),
		Sink:       string(SinkStderr),
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Normalize lowercases enum fields and clamps negative rotation limits.
func (c Config) Normalize() Config {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	c.File = strings.TrimSpace(c.File)
	c.MaxSizeMB = max(c.MaxSizeMB, 0)
	c.MaxBackups = max(c.MaxBackups, 0)
	c.MaxAgeDays = max(c.MaxAgeDays, 0)
	return c
}

// Validate checks the enum fields. Empty values fall back to defaults.
func (c Config) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("level: invalid %q", c.Level)
	}
	switch Format(c.Format) {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("format: invalid %q", c.Format)
	}
	switch Sink(c.Sink) {
	case "", SinkStderr, SinkFile, SinkNone:
	default:
		return fmt.Errorf("sink: invalid %q", c.Sink)
	}
	return nil
}

// ParseLevel maps a config level onto slog. Unknown values are info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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

// New builds a logger and the func that releases its sink.
func New(cfg Config, component string) (*slog.Logger, func() error, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	writer, closeFn, err := resolveWriter(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	switch Format(cfg.Format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler)
	if component != "" {
		logger = logger.With(slog.String("component", component))
	}
	return logger, closeFn, nil
}

// Init builds a logger, installs it with slog.SetDefault and returns it
// together with its close func.
func Init(cfg Config, component string) (*slog.Logger, func() error, error) {
	logger, closeFn, err := New(cfg, component)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func resolveWriter(cfg Config) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch Sink(cfg.Sink) {
	case SinkNone:
		return io.Discard, noop, nil
	case "", SinkStderr:
		return os.Stderr, noop, nil
	case SinkFile:
		path := cfg.File
		if path == "" {
			p, err := runtimepath.LogPath()
			if err != nil {
				return nil, nil, fmt.Errorf("logging: resolve log path: %w", err)
			}
			path = p
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		rot := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		return rot, rot.Close, nil
	default:
		return nil, nil, fmt.Errorf("logging: unknown sink %q", cfg.Sink)
	}
}
