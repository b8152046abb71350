package effect

import (
	"time"

	"github.com/1broseidon/multiview/internal/activation"
	"github.com/1broseidon/multiview/internal/desktop"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/motion"
)

// WindowID is the host's window handle.
type WindowID = desktop.WindowID

// Options tune the overview.
type Options struct {
	Duration           time.Duration
	Easing             motion.Easing
	BorderMargin       int
	MaxIterations      int
	DesktopMargins     geom.Margins
	ThumbHeightPercent int
	ThumbSpacing       int
	PlusButton         bool
	MaxDesktops        int
	DragThreshold      int
	DimOpacity         float64
}

// DefaultOptions returns the built-in overview tuning.
func DefaultOptions() Options {
	return Options{
		Duration:           300 * time.Millisecond,
		Easing:             motion.EaseOutCubic,
		BorderMargin:       10,
		MaxIterations:      600,
		DesktopMargins:     geom.Margins{Top: 150},
		ThumbHeightPercent: 70,
		ThumbSpacing:       24,
		PlusButton:         true,
		MaxDesktops:        4,
		DragThreshold:      8,
		DimOpacity:         0.85,
	}
}

// WindowInfo is one window as reported by the host.
type WindowInfo struct {
	ID      WindowID
	Rect    geom.Rect
	Desktop int
}

// Snapshot is the host's view of the screen for one frame.
type Snapshot struct {
	Screen         geom.Rect
	Windows        []WindowInfo
	DesktopCount   int
	CurrentDesktop int
}

// CommandKind identifies a request for the host.
type CommandKind int

const (
	// CmdActivateWindow raises and focuses Window.
	CmdActivateWindow CommandKind = iota + 1
	// CmdSetDesktopCount resizes the host's desktop set to Count.
	CmdSetDesktopCount
	// CmdSetCurrentDesktop switches the host to Desktop.
	CmdSetCurrentDesktop
	// CmdMoveWindowToDesktop assigns Window to Desktop.
	CmdMoveWindowToDesktop
	// CmdGrabInput routes pointer and keyboard input to the overview.
	CmdGrabInput
	// CmdReleaseInput returns input to the host.
	CmdReleaseInput
)

func (k CommandKind) String() string {
	switch k {
	case CmdActivateWindow:
		return "activate-window"
	case CmdSetDesktopCount:
		return "set-desktop-count"
	case CmdSetCurrentDesktop:
		return "set-current-desktop"
	case CmdMoveWindowToDesktop:
		return "move-window-to-desktop"
	case CmdGrabInput:
		return "grab-input"
	case CmdReleaseInput:
		return "release-input"
	default:
		return "unknown"
	}
}

// Command is a side effect the host must carry out.
type Command struct {
	Kind    CommandKind
	Window  WindowID
	Desktop int
	Count   int
}

// WindowPaint is the per-window render data for one frame.
type WindowPaint struct {
	ID          WindowID
	Rect        geom.Rect
	Opacity     float64
	Scale       float64
	Highlighted bool
}

// MiniWindow is a window preview inside a thumbnail.
type MiniWindow struct {
	ID   WindowID
	Rect geom.Rect
}

// ThumbnailPaint is one desktop thumbnail.
type ThumbnailPaint struct {
	Desktop int
	Rect    geom.Rect
	Current bool
	Target  bool
	Windows []MiniWindow
}

// Frame is everything the host needs to render one frame and the commands
// it must execute.
type Frame struct {
	Phase          activation.Phase
	Progress       float64
	Visibility     float64
	DesktopCount   int
	CurrentDesktop int
	TargetDesktop  int
	Windows        []WindowPaint
	Thumbnails     []ThumbnailPaint
	PlusButton     geom.Rect
	Animating      bool
	Commands       []Command
}

// Status summarises controller state for status queries.
type Status struct {
	Phase          string   `json:"phase"`
	Progress       float64  `json:"progress"`
	DesktopCount   int      `json:"desktop_count"`
	CurrentDesktop int      `json:"current_desktop"`
	TargetDesktop  int      `json:"target_desktop"`
	Windows        int      `json:"windows"`
	Displayed      int      `json:"displayed"`
	Highlighted    WindowID `json:"highlighted,omitempty"`
}

// PointerKind distinguishes pointer events.
type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerPress
	PointerRelease
)

// ButtonPrimary is the left mouse button.
const ButtonPrimary = 1

// PointerEvent is a pointer event in screen coordinates.
type PointerEvent struct {
	Kind   PointerKind
	Pos    geom.Point
	Button int
}

// Key is a keyboard action understood by the overview.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyReturn
	KeyEscape
)

// Handler is the surface hosts drive. Controller implements it.
type Handler interface {
	OnFrame(elapsed time.Duration, snap *Snapshot) Frame
	HandlePointer(ev PointerEvent) bool
	HandleKey(k Key) bool
	SetActive(active bool) bool
	ToggleActive() bool
	AppendDesktop() (int, error)
	RemoveDesktop(index int) bool
	ChangeCurrentDesktop(index int) int
	Status() Status
}
