package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/multiview/internal/geom"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.DesktopMargins.Top != 150 || cfg.Thumbnail.HeightPercent != 70 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.AnimationDurationMS != DefaultAnimationDurationMS {
		t.Fatalf("expected default duration, got %d", res.Config.AnimationDurationMS)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Easing != DefaultEasing {
		t.Fatalf("expected easing %q, got %q", DefaultEasing, res.Config.Easing)
	}
}

func TestLoadFromPath_OverridesAndOptions(t *testing.T) {
	data := strings.Join([]string{
		"animation_duration_ms: 150",
		"easing: linear",
		"border_margin: 4",
		"desktop_margins:",
		"  top: 100",
		"  left: 8",
		"thumbnail:",
		"  plus_button: false",
		"max_desktops: 0",
		"dim_opacity: 0.5",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Thumbnail.HeightPercent != 70 || cfg.Thumbnail.Spacing != 24 {
		t.Fatalf("partial thumbnail section must keep defaults, got %+v", cfg.Thumbnail)
	}

	opts := cfg.Options()
	if opts.Duration != 150*time.Millisecond {
		t.Fatalf("duration = %v", opts.Duration)
	}
	if got := opts.Easing(0.5); got != 0.5 {
		t.Fatalf("expected linear easing, got %v at 0.5", got)
	}
	if opts.DesktopMargins != (geom.Margins{Top: 100, Left: 8}) {
		t.Fatalf("margins = %+v", opts.DesktopMargins)
	}
	if opts.PlusButton || opts.MaxDesktops != 0 || opts.BorderMargin != 4 || opts.DimOpacity != 0.5 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestLoadFromPath_UnknownKeyIsError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "border_margins: 3\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "frame_rate: 60\neasing: bouncy\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Path != "easing" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 2 {
		t.Fatalf("expected source line 2, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative duration", func(c *Config) { c.AnimationDurationMS = -1 }, "animation_duration_ms"},
		{"frame rate", func(c *Config) { c.FrameRate = 0 }, "frame_rate"},
		{"solver iterations", func(c *Config) { c.SolverMaxIterations = 0 }, "solver_max_iterations"},
		{"margins", func(c *Config) { c.DesktopMargins.Bottom = -2 }, "desktop_margins"},
		{"thumb height", func(c *Config) { c.Thumbnail.HeightPercent = 101 }, "thumbnail.height_percent"},
		{"max desktops", func(c *Config) { c.MaxDesktops = -1 }, "max_desktops"},
		{"dim", func(c *Config) { c.DimOpacity = 1.5 }, "dim_opacity"},
		{"log sink", func(c *Config) { c.Logging.Sink = "syslog" }, "logging.sink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestLoadFromPath_IncludesMergeAndMainWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", "border_margin: 20\nthumbnail:\n  spacing: 12\n")
	writeConfig(t, dir, "logging.yaml", "logging:\n  level: debug\n")
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include:",
		"  - base.yaml",
		"  - logging.yaml",
		"border_margin: 6",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderMargin != 6 {
		t.Fatalf("main file must override includes, got %d", res.Config.BorderMargin)
	}
	if res.Config.Thumbnail.Spacing != 12 || res.Config.Logging.Level != "debug" {
		t.Fatalf("included keys lost: %+v", res.Config)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}

	_, src, err := Explain(res, "thumbnail.spacing")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || filepath.Base(src.File) != "base.yaml" {
		t.Fatalf("expected base.yaml source, got %+v", src)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")
	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_MissingInclude(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_NestedBlocksMergeFieldByField(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", strings.Join([]string{
		"desktop_margins:",
		"  top: 120",
		"  left: 16",
		"thumbnail:",
		"  height_percent: 50",
		"  spacing: 12",
		"logging:",
		"  level: debug",
		"  format: json",
		"",
	}, "\n"))
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include: base.yaml",
		"desktop_margins:",
		"  left: 4",
		"thumbnail:",
		"  plus_button: false",
		"logging:",
		"  format: text",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.DesktopMargins != (Margins{Top: 120, Left: 4}) {
		t.Fatalf("desktop_margins = %+v", cfg.DesktopMargins)
	}
	if cfg.Thumbnail != (Thumbnail{HeightPercent: 50, Spacing: 12, PlusButton: false}) {
		t.Fatalf("thumbnail = %+v", cfg.Thumbnail)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}

	cases := []struct {
		path string
		file string
		line int
	}{
		{"desktop_margins.top", "base.yaml", 2},
		{"desktop_margins.left", "config.yaml", 3},
		{"thumbnail.height_percent", "base.yaml", 5},
		{"thumbnail.spacing", "base.yaml", 6},
		{"thumbnail.plus_button", "config.yaml", 5},
		{"logging.level", "base.yaml", 8},
		{"logging.format", "config.yaml", 7},
	}
	for _, tc := range cases {
		_, src, err := Explain(res, tc.path)
		if err != nil {
			t.Fatalf("explain %s: %v", tc.path, err)
		}
		if src.Kind != SourceFile || filepath.Base(src.File) != tc.file || src.Line != tc.line {
			t.Fatalf("%s: got %+v, want %s:%d", tc.path, src, tc.file, tc.line)
		}
	}

	_, src, err := Explain(res, "desktop_margins.bottom")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("unset key must come from defaults, got %+v", src)
	}
}

func TestLoadFromPath_DirectoryIncludeInNameOrder(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(conf, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, conf, "10-thumbs.yaml", "thumbnail:\n  spacing: 30\n")
	writeConfig(t, conf, "20-thumbs.yml", "thumbnail:\n  spacing: 40\n")
	writeConfig(t, conf, "notes.txt", "not yaml: [\n")
	path := writeConfig(t, dir, "config.yaml", "include: conf.d\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Thumbnail.Spacing != 40 {
		t.Fatalf("later file must win, got spacing %d", res.Config.Thumbnail.Spacing)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("files = %v", res.Files)
	}
}

func TestLoadFromPath_SharedIncludeMergesOnce(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "common.yaml", "border_margin: 3\n")
	writeConfig(t, dir, "a.yaml", "include: common.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: common.yaml\nborder_margin: 9\n")
	path := writeConfig(t, dir, "config.yaml", "include:\n  - a.yaml\n  - b.yaml\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderMargin != 9 {
		t.Fatalf("border_margin = %d", res.Config.BorderMargin)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected common.yaml once, got %v", res.Files)
	}
}

func TestLoadFromPath_InvalidIncludedValuePointsAtInclude(t *testing.T) {
	dir := t.TempDir()
	inc := writeConfig(t, dir, "thumbs.yaml", "thumbnail:\n  height_percent: 0\n")
	path := writeConfig(t, dir, "config.yaml", "include: thumbs.yaml\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "thumbnail.height_percent" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error: %+v", verr)
	}
	if !strings.Contains(err.Error(), filepath.Base(inc)) {
		t.Fatalf("expected error to name %s, got %v", inc, err)
	}
}

func TestExplain_DefaultsAndUnknownPath(t *testing.T) {
	res := &LoadResult{Config: DefaultConfig(), Sources: map[string]Source{}}
	v, src, err := Explain(res, "max_desktops")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if v != DefaultMaxDesktops || src.Kind != SourceDefault {
		t.Fatalf("got %v from %+v", v, src)
	}
	if _, _, err := Explain(res, "thumbnail.colour"); err == nil {
		t.Fatalf("expected unsupported path error")
	}
	if _, _, err := Explain(res, "easing.name"); err == nil {
		t.Fatalf("expected error for sub-key of a scalar")
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.MaxDesktops = 6
	cfg.Easing = "smoothstep"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MaxDesktops != 6 || res.Config.Easing != "smoothstep" {
		t.Fatalf("saved values lost: %+v", res.Config)
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = -5
	if err := cfg.SaveTo(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = 50
	if got := cfg.FrameInterval(); got != 20*time.Millisecond {
		t.Fatalf("interval = %v", got)
	}
}
