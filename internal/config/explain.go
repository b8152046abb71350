package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	hotkey
//	animation_duration_ms
//	easing
//	frame_rate
//	border_margin
//	solver_max_iterations
//	desktop_margins
//	desktop_margins.top
//	thumbnail.height_percent
//	thumbnail.spacing
//	thumbnail.plus_button
//	max_desktops
//	drag_threshold
//	dim_opacity
//	logging.level
//	logging.sink
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("%s has no sub-keys", parts[0])
		}
		return v, nil
	}

	switch parts[0] {
	case "display":
		return leaf(cfg.Display)
	case "hotkey":
		return leaf(cfg.Hotkey)
	case "animation_duration_ms":
		return leaf(cfg.AnimationDurationMS)
	case "easing":
		return leaf(cfg.Easing)
	case "frame_rate":
		return leaf(cfg.FrameRate)
	case "border_margin":
		return leaf(cfg.BorderMargin)
	case "solver_max_iterations":
		return leaf(cfg.SolverMaxIterations)
	case "max_desktops":
		return leaf(cfg.MaxDesktops)
	case "drag_threshold":
		return leaf(cfg.DragThreshold)
	case "dim_opacity":
		return leaf(cfg.DimOpacity)
	case "desktop_margins":
		m := cfg.DesktopMargins
		if len(parts) == 1 {
			return m, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported path: %s", path)
		}
		switch parts[1] {
		case "top":
			return m.Top, nil
		case "bottom":
			return m.Bottom, nil
		case "left":
			return m.Left, nil
		case "right":
			return m.Right, nil
		}
	case "thumbnail":
		th := cfg.Thumbnail
		if len(parts) == 1 {
			return th, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported path: %s", path)
		}
		switch parts[1] {
		case "height_percent":
			return th.HeightPercent, nil
		case "spacing":
			return th.Spacing, nil
		case "plus_button":
			return th.PlusButton, nil
		}
	case "logging":
		l := cfg.Logging
		if len(parts) == 1 {
			return l, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported path: %s", path)
		}
		switch parts[1] {
		case "level":
			return l.Level, nil
		case "format":
			return l.Format, nil
		case "sink":
			return l.Sink, nil
		case "file":
			return l.File, nil
		case "max_size_mb":
			return l.MaxSizeMB, nil
		case "max_backups":
			return l.MaxBackups, nil
		case "max_age_days":
			return l.MaxAgeDays, nil
		case "compress":
			return l.Compress, nil
		}
	}
	return nil, fmt.Errorf("unsupported path: %s", path)
}
