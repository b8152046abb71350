package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/multiview/internal/effect"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/logging"
	"github.com/1broseidon/multiview/internal/motion"
)

// Margins reserve screen edges from the window layout.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// Thumbnail configures the desktop strip drawn in the top margin.
type Thumbnail struct {
	HeightPercent int  `yaml:"height_percent"` // of the top margin, 1-100
	Spacing       int  `yaml:"spacing"`
	PlusButton    bool `yaml:"plus_button"`
}

const (
	DefaultHotkey              = "Mod4-w"
	DefaultAnimationDurationMS = 300
	DefaultEasing              = "out-cubic"
	DefaultFrameRate           = 60
	DefaultBorderMargin        = 10
	DefaultSolverMaxIterations = 600
	DefaultMaxDesktops         = 4
	DefaultDragThreshold       = 8
	DefaultDimOpacity          = 0.85
)

// Config is the effective multiview configuration.
type Config struct {
	Display             string         `yaml:"display,omitempty"`
	Hotkey              string         `yaml:"hotkey"` // empty disables the global toggle
	AnimationDurationMS int            `yaml:"animation_duration_ms"`
	Easing              string         `yaml:"easing"`
	FrameRate           int            `yaml:"frame_rate"`
	BorderMargin        int            `yaml:"border_margin"`
	SolverMaxIterations int            `yaml:"solver_max_iterations"`
	DesktopMargins      Margins        `yaml:"desktop_margins"`
	Thumbnail           Thumbnail      `yaml:"thumbnail"`
	MaxDesktops         int            `yaml:"max_desktops"` // 0 = unlimited
	DragThreshold       int            `yaml:"drag_threshold"`
	DimOpacity          float64        `yaml:"dim_opacity"`
	Logging             logging.Config `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Hotkey:              DefaultHotkey,
		AnimationDurationMS: DefaultAnimationDurationMS,
		Easing:              DefaultEasing,
		FrameRate:           DefaultFrameRate,
		BorderMargin:        DefaultBorderMargin,
		SolverMaxIterations: DefaultSolverMaxIterations,
		DesktopMargins:      Margins{Top: 150},
		Thumbnail: Thumbnail{
			HeightPercent: 70,
			Spacing:       24,
			PlusButton:    true,
		},
		MaxDesktops:   DefaultMaxDesktops,
		DragThreshold: DefaultDragThreshold,
		DimOpacity:    DefaultDimOpacity,
		Logging:       logging.DefaultConfig(),
	}
}

// AnimationDuration is animation_duration_ms as a time.Duration.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.AnimationDurationMS) * time.Millisecond
}

// FrameInterval is the daemon tick period for frame_rate.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Options converts the config into overview tuning. Unknown easings fall
// back to out-cubic; Validate rejects them earlier.
func (c *Config) Options() effect.Options {
	easing, ok := motion.EasingByName(c.Easing)
	if !ok {
		easing = motion.EaseOutCubic
	}
	return effect.Options{
		Duration:      c.AnimationDuration(),
		Easing:        easing,
		BorderMargin:  c.BorderMargin,
		MaxIterations: c.SolverMaxIterations,
		DesktopMargins: geom.Margins{
			Top:    c.DesktopMargins.Top,
			Bottom: c.DesktopMargins.Bottom,
			Left:   c.DesktopMargins.Left,
			Right:  c.DesktopMargins.Right,
		},
		ThumbHeightPercent: c.Thumbnail.HeightPercent,
		ThumbSpacing:       c.Thumbnail.Spacing,
		PlusButton:         c.Thumbnail.PlusButton,
		MaxDesktops:        c.MaxDesktops,
		DragThreshold:      c.DragThreshold,
		DimOpacity:         c.DimOpacity,
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.AnimationDurationMS < 0 {
		return &ValidationError{Path: "animation_duration_ms", Err: fmt.Errorf("animation_duration_ms must be >= 0")}
	}
	if _, ok := motion.EasingByName(c.Easing); !ok {
		return &ValidationError{Path: "easing", Err: fmt.Errorf("easing must be one of: %s", strings.Join(motion.EasingNames(), ", "))}
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return &ValidationError{Path: "frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 240")}
	}
	if c.BorderMargin < 0 {
		return &ValidationError{Path: "border_margin", Err: fmt.Errorf("border_margin must be >= 0")}
	}
	if c.SolverMaxIterations < 1 {
		return &ValidationError{Path: "solver_max_iterations", Err: fmt.Errorf("solver_max_iterations must be >= 1")}
	}
	m := c.DesktopMargins
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return &ValidationError{Path: "desktop_margins", Err: fmt.Errorf("desktop_margins values must be >= 0")}
	}
	if c.Thumbnail.HeightPercent < 1 || c.Thumbnail.HeightPercent > 100 {
		return &ValidationError{Path: "thumbnail.height_percent", Err: fmt.Errorf("height_percent must be between 1 and 100")}
	}
	if c.Thumbnail.Spacing < 0 {
		return &ValidationError{Path: "thumbnail.spacing", Err: fmt.Errorf("spacing must be >= 0")}
	}
	if c.MaxDesktops < 0 {
		return &ValidationError{Path: "max_desktops", Err: fmt.Errorf("max_desktops must be >= 0 (0 = unlimited)")}
	}
	if c.DragThreshold < 0 {
		return &ValidationError{Path: "drag_threshold", Err: fmt.Errorf("drag_threshold must be >= 0")}
	}
	if c.DimOpacity < 0 || c.DimOpacity > 1 {
		return &ValidationError{Path: "dim_opacity", Err: fmt.Errorf("dim_opacity must be between 0 and 1")}
	}
	if err := c.Logging.Validate(); err != nil {
		path := "logging"
		if field, _, ok := strings.Cut(err.Error(), ":"); ok {
			path = "logging." + field
		}
		return &ValidationError{Path: path, Err: err}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}
	var warnings []string
	if c.DesktopMargins.Top == 0 {
		warnings = append(warnings, "desktop_margins.top is 0; the desktop thumbnails will not be shown")
	}
	if c.Logging.Sink == string(logging.SinkFile) && c.Logging.MaxSizeMB == 0 {
		warnings = append(warnings, "logging.max_size_mb is 0; lumberjack's default of 100 MB applies")
	}
	return warnings
}
