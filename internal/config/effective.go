package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig layers raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Hotkey != nil {
		cfg.Hotkey = strings.TrimSpace(*raw.Hotkey)
	}
	if raw.AnimationDurationMS != nil {
		cfg.AnimationDurationMS = *raw.AnimationDurationMS
	}
	if raw.Easing != nil {
		cfg.Easing = *raw.Easing
	}
	if raw.FrameRate != nil {
		cfg.FrameRate = *raw.FrameRate
	}
	if raw.BorderMargin != nil {
		cfg.BorderMargin = *raw.BorderMargin
	}
	if raw.SolverMaxIterations != nil {
		cfg.SolverMaxIterations = *raw.SolverMaxIterations
	}
	if m := raw.DesktopMargins; m != nil {
		cfg.DesktopMargins.Top = derefInt(m.Top, cfg.DesktopMargins.Top)
		cfg.DesktopMargins.Bottom = derefInt(m.Bottom, cfg.DesktopMargins.Bottom)
		cfg.DesktopMargins.Left = derefInt(m.Left, cfg.DesktopMargins.Left)
		cfg.DesktopMargins.Right = derefInt(m.Right, cfg.DesktopMargins.Right)
	}
	if th := raw.Thumbnail; th != nil {
		cfg.Thumbnail.HeightPercent = derefInt(th.HeightPercent, cfg.Thumbnail.HeightPercent)
		cfg.Thumbnail.Spacing = derefInt(th.Spacing, cfg.Thumbnail.Spacing)
		if th.PlusButton != nil {
			cfg.Thumbnail.PlusButton = *th.PlusButton
		}
	}
	if raw.MaxDesktops != nil {
		cfg.MaxDesktops = *raw.MaxDesktops
	}
	if raw.DragThreshold != nil {
		cfg.DragThreshold = *raw.DragThreshold
	}
	if raw.DimOpacity != nil {
		cfg.DimOpacity = *raw.DimOpacity
	}
	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.Format != nil {
			cfg.Logging.Format = *l.Format
		}
		if l.Sink != nil {
			cfg.Logging.Sink = *l.Sink
		}
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		cfg.Logging.MaxSizeMB = derefInt(l.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxBackups = derefInt(l.MaxBackups, cfg.Logging.MaxBackups)
		cfg.Logging.MaxAgeDays = derefInt(l.MaxAgeDays, cfg.Logging.MaxAgeDays)
		if l.Compress != nil {
			cfg.Logging.Compress = *l.Compress
		}
	}
	cfg.Logging = cfg.Logging.Normalize()

	return cfg, nil
}

func derefInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
