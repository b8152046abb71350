package mcp

// ToggleOverviewInput is the input for the toggle_overview tool.
type ToggleOverviewInput struct{}

// SetOverviewActiveInput is the input for the set_overview_active tool.
type SetOverviewActiveInput struct {
	Active bool `json:"active" jsonschema:"required,true shows the overview, false hides it"`
}

// OverviewStateOutput answers the activation tools.
type OverviewStateOutput struct {
	Changed bool   `json:"changed"`
	Phase   string `json:"phase"`
}

// AppendDesktopInput is the input for the append_desktop tool.
type AppendDesktopInput struct{}

// DesktopIndexInput names a one-based desktop.
type DesktopIndexInput struct {
	Index int `json:"index" jsonschema:"required,One-based desktop index"`
}

// DesktopsOutput reports the desktop set after a desktop tool ran.
type DesktopsOutput struct {
	DesktopCount   int  `json:"desktop_count"`
	CurrentDesktop int  `json:"current_desktop"`
	Removed        bool `json:"removed,omitempty"`
}

// OverviewStatusInput is the input for the overview_status tool.
type OverviewStatusInput struct{}

// OverviewStatusOutput is the output for the overview_status tool.
type OverviewStatusOutput struct {
	Phase          string  `json:"phase"`
	Progress       float64 `json:"progress"`
	DesktopCount   int     `json:"desktop_count"`
	CurrentDesktop int     `json:"current_desktop"`
	TargetDesktop  int     `json:"target_desktop"`
	Windows        int     `json:"windows"`
	Displayed      int     `json:"displayed"`
	Highlighted    uint32  `json:"highlighted,omitempty"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
}

// PreviewPlacementInput is the input for the preview_placement tool.
type PreviewPlacementInput struct {
	Width         int       `json:"width" jsonschema:"required,Layout area width in pixels"`
	Height        int       `json:"height" jsonschema:"required,Layout area height in pixels"`
	Aspects       []float64 `json:"aspects" jsonschema:"required,Window aspect ratios (width/height), one per window"`
	BorderMargin  *int      `json:"border_margin,omitempty" jsonschema:"Gap between windows in pixels (default: configured border_margin)"`
	MaxIterations *int      `json:"max_iterations,omitempty" jsonschema:"Solver growth rounds (default: configured solver_max_iterations)"`
}

// LayoutRect is one placed window.
type LayoutRect struct {
	Index  int     `json:"index"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Aspect float64 `json:"aspect"`
}

// PreviewPlacementOutput is the output for the preview_placement tool.
type PreviewPlacementOutput struct {
	Rects    []LayoutRect `json:"rects"`
	Coverage float64      `json:"coverage"`
}
