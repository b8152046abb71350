package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{name: "empty", cfg: Config{}},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: "level"},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: "format"},
		{name: "bad sink", cfg: Config{Sink: "syslog"}, wantErr: "sink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Normalize().Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Config{Level: " DEBUG ", Format: "JSON", Sink: "File", MaxBackups: -3}.Normalize()
	if got.Level != "debug" || got.Format != "json" || got.Sink != "file" {
		t.Fatalf("unexpected normalized enums: %+v", got)
	}
	if got.MaxBackups != 0 {
		t.Fatalf("expected negative backups clamped to 0, got %d", got.MaxBackups)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileSinkWritesThroughRotator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "multiview.log")
	cfg := DefaultConfig()
	cfg.Sink = string(SinkFile)
	cfg.File = path
	cfg.Format = string(FormatJSON)

	logger, closeFn, err := New(cfg, "test")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("overview opened", "windows", 3)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"overview opened"`) || !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("unexpected log contents: %s", out)
	}
}

func TestNoneSinkDiscards(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sink = string(SinkNone)
	logger, closeFn, err := New(cfg, "")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer closeFn()
	logger.Error("dropped")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, _, err := New(Config{Sink: "carrier-pigeon"}, ""); err == nil {
		t.Fatalf("expected error for unknown sink")
	}
}
