package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawMargins struct {
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

type RawThumbnail struct {
	HeightPercent *int  `yaml:"height_percent"`
	Spacing       *int  `yaml:"spacing"`
	PlusButton    *bool `yaml:"plus_button"`
}

type RawLogging struct {
	Level      *string `yaml:"level"`
	Format     *string `yaml:"format"`
	Sink       *string `yaml:"sink"`
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
	MaxAgeDays *int    `yaml:"max_age_days"`
	Compress   *bool   `yaml:"compress"`
}

// RawConfig is one config file as written. Unset keys stay nil so that
// includes and the including file can be layered.
type RawConfig struct {
	Include             IncludeList   `yaml:"include"`
	Display             *string       `yaml:"display"`
	Hotkey              *string       `yaml:"hotkey"`
	AnimationDurationMS *int          `yaml:"animation_duration_ms"`
	Easing              *string       `yaml:"easing"`
	FrameRate           *int          `yaml:"frame_rate"`
	BorderMargin        *int          `yaml:"border_margin"`
	SolverMaxIterations *int          `yaml:"solver_max_iterations"`
	DesktopMargins      *RawMargins   `yaml:"desktop_margins"`
	Thumbnail           *RawThumbnail `yaml:"thumbnail"`
	MaxDesktops         *int          `yaml:"max_desktops"`
	DragThreshold       *int          `yaml:"drag_threshold"`
	DimOpacity          *float64      `yaml:"dim_opacity"`
	Logging             *RawLogging   `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Hotkey != nil {
		out.Hotkey = overlay.Hotkey
	}
	if overlay.AnimationDurationMS != nil {
		out.AnimationDurationMS = overlay.AnimationDurationMS
	}
	if overlay.Easing != nil {
		out.Easing = overlay.Easing
	}
	if overlay.FrameRate != nil {
		out.FrameRate = overlay.FrameRate
	}
	if overlay.BorderMargin != nil {
		out.BorderMargin = overlay.BorderMargin
	}
	if overlay.SolverMaxIterations != nil {
		out.SolverMaxIterations = overlay.SolverMaxIterations
	}
	if overlay.DesktopMargins != nil {
		base := RawMargins{}
		if out.DesktopMargins != nil {
			base = *out.DesktopMargins
		}
		merged := mergeRawMargins(base, *overlay.DesktopMargins)
		out.DesktopMargins = &merged
	}
	if overlay.Thumbnail != nil {
		base := RawThumbnail{}
		if out.Thumbnail != nil {
			base = *out.Thumbnail
		}
		merged := mergeRawThumbnail(base, *overlay.Thumbnail)
		out.Thumbnail = &merged
	}
	if overlay.MaxDesktops != nil {
		out.MaxDesktops = overlay.MaxDesktops
	}
	if overlay.DragThreshold != nil {
		out.DragThreshold = overlay.DragThreshold
	}
	if overlay.DimOpacity != nil {
		out.DimOpacity = overlay.DimOpacity
	}
	if overlay.Logging != nil {
		base := RawLogging{}
		if out.Logging != nil {
			base = *out.Logging
		}
		merged := mergeRawLogging(base, *overlay.Logging)
		out.Logging = &merged
	}

	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}

func mergeRawThumbnail(base RawThumbnail, overlay RawThumbnail) RawThumbnail {
	out := base
	if overlay.HeightPercent != nil {
		out.HeightPercent = overlay.HeightPercent
	}
	if overlay.Spacing != nil {
		out.Spacing = overlay.Spacing
	}
	if overlay.PlusButton != nil {
		out.PlusButton = overlay.PlusButton
	}
	return out
}

func mergeRawLogging(base RawLogging, overlay RawLogging) RawLogging {
	out := base
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.Format != nil {
		out.Format = overlay.Format
	}
	if overlay.Sink != nil {
		out.Sink = overlay.Sink
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxBackups != nil {
		out.MaxBackups = overlay.MaxBackups
	}
	if overlay.MaxAgeDays != nil {
		out.MaxAgeDays = overlay.MaxAgeDays
	}
	if overlay.Compress != nil {
		out.Compress = overlay.Compress
	}
	return out
}
