// Package tui is a terminal host for the overview. It simulates a window
// manager and draws frames as box art, driven by bubbletea ticks.
package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/multiview/internal/activation"
	"github.com/1broseidon/multiview/internal/config"
	"github.com/1broseidon/multiview/internal/desktop"
	"github.com/1broseidon/multiview/internal/effect"
	"github.com/1broseidon/multiview/internal/geom"
)

// DefaultScreen is the virtual screen the simulator lays windows out on.
var DefaultScreen = geom.Rect{Width: 1920, Height: 1080}

// Options configure the simulator.
type Options struct {
	Config   *config.Config
	Windows  int
	Desktops int
	Seed     uint64
	Screen   geom.Rect
	// Logger receives controller logs. Nil discards them; anything written
	// to the terminal would corrupt the display.
	Logger *slog.Logger
}

type frameMsg time.Time

type model struct {
	ctrl     *effect.Controller
	host     *simHost
	keys     keyMap
	help     help.Model
	interval time.Duration
	last     time.Time
	frame    effect.Frame
	notice   string

	width  int
	height int
}

func newModel(opts Options) model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	screen := opts.Screen
	if screen.Empty() {
		screen = DefaultScreen
	}
	desktops := max(opts.Desktops, 1)
	if cfg.MaxDesktops > 0 {
		desktops = min(desktops, cfg.MaxDesktops)
	}

	host := newSimHost(screen, desktops, opts.Seed)
	for i := 0; i < opts.Windows; i++ {
		host.spawn(i%desktops + 1)
	}

	m := model{
		ctrl:     effect.New(cfg.Options(), logger),
		host:     host,
		keys:     defaultKeyMap(),
		help:     help.New(),
		interval: cfg.FrameInterval(),
	}
	snap := host.snapshot()
	m.frame = m.ctrl.OnFrame(0, &snap)
	return m
}

// Run starts the simulator in the alternate screen until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("sim requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick(m.interval)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.step(time.Time(msg))
		return m, tick(m.interval)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.handleKey(msg)
		m.flush()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		m.flush()
		return m, nil
	}
	return m, nil
}

// step advances one frame and lets the simulated host carry out commands.
func (m *model) step(now time.Time) {
	var elapsed time.Duration
	if !m.last.IsZero() {
		elapsed = now.Sub(m.last)
	}
	m.last = now

	snap := m.host.snapshot()
	m.frame = m.ctrl.OnFrame(elapsed, &snap)
	for _, cmd := range m.frame.Commands {
		m.host.execute(cmd)
	}
}

// flush hands commands raised by input to the host right away so the next
// snapshot already reflects them.
func (m *model) flush() {
	f := m.ctrl.OnFrame(0, nil)
	for _, cmd := range f.Commands {
		m.host.execute(cmd)
	}
	m.frame = f
}

func (m *model) active() bool {
	return m.ctrl.Phase() != activation.Closed
}

// workingDesktop is the displayed desktop while the overview is shown and
// the current one otherwise.
func (m *model) workingDesktop() int {
	if m.active() {
		return m.ctrl.TargetDesktop()
	}
	return m.host.current
}

func (m *model) handleKey(msg tea.KeyMsg) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.ToggleActive()

	case key.Matches(msg, m.keys.Left):
		if m.active() {
			m.ctrl.HandleKey(effect.KeyLeft)
		} else {
			m.ctrl.ChangeCurrentDesktop(m.host.current - 1)
		}

	case key.Matches(msg, m.keys.Right):
		if m.active() {
			m.ctrl.HandleKey(effect.KeyRight)
		} else {
			m.ctrl.ChangeCurrentDesktop(m.host.current + 1)
		}

	case key.Matches(msg, m.keys.Commit):
		m.ctrl.HandleKey(effect.KeyReturn)

	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.HandleKey(effect.KeyEscape)

	case key.Matches(msg, m.keys.Spawn):
		id := m.host.spawn(m.workingDesktop())
		m.notice = fmt.Sprintf("opened window %d", id)

	case key.Matches(msg, m.keys.Close):
		id := m.host.focused
		if st := m.ctrl.Status(); m.active() && st.Highlighted != 0 {
			id = st.Highlighted
		}
		if id == 0 || !m.host.close(id) {
			m.notice = "no window to close"
			return
		}
		m.notice = fmt.Sprintf("closed window %d", id)

	case key.Matches(msg, m.keys.Append):
		idx, err := m.ctrl.AppendDesktop()
		if err != nil {
			if errors.Is(err, desktop.ErrDesktopLimit) {
				m.notice = fmt.Sprintf("desktop limit reached (%d)", m.host.count)
			} else {
				m.notice = err.Error()
			}
			return
		}
		m.notice = fmt.Sprintf("added desktop %d", idx)

	case key.Matches(msg, m.keys.Remove):
		d := m.workingDesktop()
		if !m.ctrl.RemoveDesktop(d) {
			m.notice = "cannot remove the last desktop"
			return
		}
		m.notice = fmt.Sprintf("removed desktop %d", d)

	case key.Matches(msg, m.keys.Desktop):
		if len(msg.Runes) == 1 {
			m.ctrl.ChangeCurrentDesktop(int(msg.Runes[0] - '0'))
		}
	}
}

// canvasSize is the cell area between the status bar and the help line.
func (m *model) canvasSize() (int, int) {
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	return max(m.width, 1), max(m.height-1-helpHeight, 1)
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if !m.active() {
		return
	}
	w, h := m.canvasSize()
	row := msg.Y - 1
	if msg.X < 0 || msg.X >= w || row < 0 || row >= h {
		return
	}
	c := newCanvas(w, h, m.host.screen)
	ev := effect.PointerEvent{Pos: c.toScreen(msg.X, row), Button: effect.ButtonPrimary}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		ev.Kind = effect.PointerPress
	case tea.MouseActionRelease:
		ev.Kind = effect.PointerRelease
	case tea.MouseActionMotion:
		ev.Kind = effect.PointerMove
	default:
		return
	}
	m.ctrl.HandlePointer(ev)
}

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	phaseStyles = map[activation.Phase]lipgloss.Style{
		activation.Closed:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		activation.Opening: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		activation.Open:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		activation.Closing: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}

	helpBarStyle = lipgloss.NewStyle().Padding(0, 1)
)

func (m model) renderStatusBar() string {
	phase := m.frame.Phase
	dot := phaseStyles[phase].Render("●")
	parts := []string{
		fmt.Sprintf("%s %s", dot, phase),
		fmt.Sprintf("desktop %d/%d", m.host.current, m.host.count),
	}
	if phase != activation.Closed {
		parts = append(parts, fmt.Sprintf("showing %d", m.frame.TargetDesktop))
		if phase != activation.Open {
			parts = append(parts, fmt.Sprintf("%3.0f%%", m.frame.Progress*100))
		}
	}
	parts = append(parts, fmt.Sprintf("%d windows", len(m.host.windows)))
	if m.host.grabbed {
		parts = append(parts, "input grabbed")
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	return statusBarStyle.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderScene draws the current frame. While closed the host's own windows
// on the current desktop are shown.
func (m model) renderScene(width, height int) string {
	c := newCanvas(width, height, m.host.screen)

	if m.frame.Phase == activation.Closed {
		for _, w := range m.host.windowsOn(m.host.current) {
			style := boxLight
			if w.id == m.host.focused {
				style = boxHeavy
			}
			c.box(w.rect, style, fmt.Sprintf("%d", w.id))
		}
		return c.String()
	}

	for _, th := range m.frame.Thumbnails {
		style := boxLight
		if th.Target {
			style = boxDouble
		}
		c.box(th.Rect, style, "")
		for _, mini := range th.Windows {
			c.fill(mini.Rect, '▒')
		}
		label := fmt.Sprintf("%d", th.Desktop)
		if th.Current {
			label += "*"
		}
		c.label(th.Rect, label)
	}
	if !m.frame.PlusButton.Empty() {
		c.box(m.frame.PlusButton, boxLight, "+")
	}

	var highlighted *effect.WindowPaint
	for i := range m.frame.Windows {
		w := &m.frame.Windows[i]
		if w.Highlighted {
			highlighted = w
			continue
		}
		c.box(w.Rect, boxLight, fmt.Sprintf("%d", w.ID))
	}
	if highlighted != nil {
		c.box(highlighted.Rect, boxHeavy, fmt.Sprintf("%d", highlighted.ID))
	}
	return c.String()
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	w, h := m.canvasSize()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatusBar(),
		m.renderScene(w, h),
		helpBarStyle.Render(m.help.View(m.keys)),
	)
}
