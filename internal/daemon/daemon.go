// Package daemon runs the overview frame loop against a window system
// backend.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/multiview/internal/activation"
	"github.com/1broseidon/multiview/internal/config"
	"github.com/1broseidon/multiview/internal/desktop"
	"github.com/1broseidon/multiview/internal/effect"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/ipc"
	"github.com/1broseidon/multiview/internal/platform"
)

const (
	activeSnapshotInterval = 100 * time.Millisecond
	idleSnapshotInterval   = 250 * time.Millisecond
	// settleDelay holds off snapshots after the daemon changed host state,
	// so the window manager's lagging view is not read back as a change.
	settleDelay  = 150 * time.Millisecond
	maxFrameStep = 250 * time.Millisecond
	opQueueSize  = 256
	callTimeout  = 2 * time.Second
)

var (
	// ErrNotRunning is returned by calls made after Run has returned.
	ErrNotRunning = errors.New("daemon is not running")
	// ErrBusy is returned when the op queue stayed full for callTimeout.
	ErrBusy = errors.New("daemon did not respond in time")
)

// ConfigLoader re-reads the configuration on RELOAD.
type ConfigLoader func() (*config.Config, error)

// Options configure a Daemon.
type Options struct {
	Config     *config.Config
	LoadConfig ConfigLoader
	Logger     *slog.Logger
}

type applied struct {
	rect    geom.Rect
	opacity float64
}

// Daemon owns the overview controller and is the only goroutine touching
// it. IPC calls, hotkeys and grabbed input are queued onto the frame loop.
type Daemon struct {
	backend    platform.Backend
	ctrl       *effect.Controller
	cfg        *config.Config
	loadConfig ConfigLoader
	logger     *slog.Logger

	ops         chan func()
	stopped     chan struct{}
	reset       chan time.Duration
	callTimeout time.Duration

	applied       map[effect.WindowID]applied
	overlayShown  bool
	sinceSnapshot time.Duration
	settle        time.Duration
	refresh       bool
	hotkey        string
}

var _ ipc.Overview = (*Daemon)(nil)

// New creates a daemon driving backend.
func New(backend platform.Backend, opts Options) *Daemon {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		backend:     backend,
		ctrl:        effect.New(cfg.Options(), logger),
		cfg:         cfg,
		loadConfig:  opts.LoadConfig,
		logger:      logger.With("component", "daemon"),
		ops:         make(chan func(), opQueueSize),
		stopped:     make(chan struct{}),
		reset:       make(chan time.Duration, 1),
		callTimeout: callTimeout,
		applied:     make(map[effect.WindowID]applied),
		refresh:     true,
	}
}

// Run binds the hotkey, starts the backend event loop and drives frames
// until ctx is cancelled. On the way out an open overview is closed and
// windows are restored.
func (d *Daemon) Run(ctx context.Context) error {
	defer close(d.stopped)

	if err := d.bindHotkey(d.cfg.Hotkey); err != nil {
		d.logger.Warn("hotkey not bound", "hotkey", d.cfg.Hotkey, "error", err)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.backend.EventLoop()
	}()

	interval := d.cfg.FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("daemon started", "frame_interval", interval, "hotkey", d.hotkey)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			d.backend.Stop()
			<-loopDone
			d.logger.Info("daemon stopped")
			return nil
		case fn := <-d.ops:
			fn()
			d.flush()
		case next := <-d.reset:
			ticker.Reset(next)
			d.logger.Info("frame interval changed", "frame_interval", next)
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			d.step(elapsed)
		}
	}
}

// step runs one frame: refresh the host snapshot when due, advance the
// controller and carry out what it asks for.
func (d *Daemon) step(elapsed time.Duration) {
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("frame panic recovered", "error", err)
		}
	}()

	elapsed = min(max(elapsed, 0), maxFrameStep)
	d.sinceSnapshot += elapsed
	d.settle -= elapsed

	var snap *effect.Snapshot
	if d.snapshotDue() {
		s, err := d.backend.Snapshot()
		if err != nil {
			d.logger.Warn("snapshot failed", "error", err)
		} else {
			snap = &s
		}
		d.sinceSnapshot = 0
		d.refresh = false
	}

	d.apply(d.ctrl.OnFrame(elapsed, snap))
}

// flush carries out whatever an op asked for without advancing time, so
// the next snapshot already sees it.
func (d *Daemon) flush() {
	d.apply(d.ctrl.OnFrame(0, nil))
}

func (d *Daemon) snapshotDue() bool {
	if d.settle > 0 {
		return false
	}
	if d.refresh {
		return true
	}
	if d.ctrl.Phase() != activation.Closed {
		return d.sinceSnapshot >= activeSnapshotInterval
	}
	return d.sinceSnapshot >= idleSnapshotInterval
}

func (d *Daemon) apply(f effect.Frame) {
	for _, w := range f.Windows {
		prev, ok := d.applied[w.ID]
		if !ok || prev.rect != w.Rect {
			if err := d.backend.MoveResize(w.ID, w.Rect); err != nil {
				d.logger.Debug("move/resize failed", "window", w.ID, "error", err)
			}
		}
		if !ok || prev.opacity != w.Opacity {
			if err := d.backend.SetOpacity(w.ID, w.Opacity); err != nil {
				d.logger.Debug("set opacity failed", "window", w.ID, "error", err)
			}
		}
		d.applied[w.ID] = applied{rect: w.Rect, opacity: w.Opacity}
	}
	if f.Phase == activation.Closed && len(f.Windows) > 0 {
		clear(d.applied)
		d.settle = settleDelay
	}

	for _, cmd := range f.Commands {
		d.execute(cmd)
	}

	if f.Phase != activation.Closed {
		if err := d.backend.DrawOverlay(f); err != nil {
			d.logger.Warn("overlay draw failed", "error", err)
		}
		d.overlayShown = true
	} else if d.overlayShown {
		d.backend.HideOverlay()
		d.overlayShown = false
	}
}

func (d *Daemon) execute(cmd effect.Command) {
	var err error
	switch cmd.Kind {
	case effect.CmdActivateWindow:
		err = d.backend.Activate(cmd.Window)
	case effect.CmdSetDesktopCount:
		err = d.backend.SetDesktopCount(cmd.Count)
		d.settle = settleDelay
	case effect.CmdSetCurrentDesktop:
		err = d.backend.SetCurrentDesktop(cmd.Desktop)
		d.settle = settleDelay
	case effect.CmdMoveWindowToDesktop:
		err = d.backend.MoveToDesktop(cmd.Window, cmd.Desktop)
		d.settle = settleDelay
	case effect.CmdGrabInput:
		err = d.backend.GrabInput(inputQueue{d})
	case effect.CmdReleaseInput:
		d.backend.ReleaseInput()
	}
	if err != nil {
		d.logger.Warn("host command failed", "command", cmd.Kind.String(), "error", err)
		return
	}
	d.logger.Debug("host command", "command", cmd.Kind.String(), "window", cmd.Window, "desktop", cmd.Desktop, "count", cmd.Count)
}

// shutdown closes the overview at once so windows return to where they were.
func (d *Daemon) shutdown() {
	if d.ctrl.Phase() != activation.Closed {
		d.ctrl.SetActive(false)
		// Enough elapsed time to finish any closing animation in one frame.
		d.apply(d.ctrl.OnFrame(d.cfg.AnimationDuration()+time.Second, nil))
	}
	d.backend.ReleaseInput()
	d.backend.HideOverlay()
	d.backend.UnbindAll()
}

// enqueue posts fn to the frame loop without blocking. It is used from the
// backend's event goroutine.
func (d *Daemon) enqueue(fn func()) {
	select {
	case d.ops <- fn:
	default:
		d.logger.Debug("op queue full, dropping event")
	}
}

// call runs fn on the frame loop and waits for it. Only queueing can time
// out: once fn is queued it may still run and write to the caller's
// variables, so call waits until it has run or the loop has exited.
func (d *Daemon) call(fn func()) error {
	done := make(chan struct{})
	timeout := time.NewTimer(d.callTimeout)
	defer timeout.Stop()

	select {
	case d.ops <- func() { fn(); close(done) }:
	case <-d.stopped:
		return ErrNotRunning
	case <-timeout.C:
		return ErrBusy
	}

	select {
	case <-done:
		return nil
	case <-d.stopped:
		return ErrNotRunning
	}
}

type inputQueue struct{ d *Daemon }

func (q inputQueue) Pointer(ev effect.PointerEvent) {
	q.d.enqueue(func() { q.d.ctrl.HandlePointer(ev) })
}

func (q inputQueue) Key(k effect.Key) {
	q.d.enqueue(func() { q.d.ctrl.HandleKey(k) })
}

func (d *Daemon) bindHotkey(seq string) error {
	d.backend.UnbindAll()
	d.hotkey = ""
	if seq == "" {
		return nil
	}
	err := d.backend.BindToggle(seq, func() {
		d.enqueue(d.toggle)
	})
	if err != nil {
		return err
	}
	d.hotkey = seq
	return nil
}

// toggle refreshes the window list before opening so the first layout is
// computed from current geometry.
func (d *Daemon) toggle() {
	if d.ctrl.Phase() == activation.Closed {
		d.refresh = true
		d.settle = 0
		d.step(0)
	}
	d.ctrl.ToggleActive()
}

func (d *Daemon) activeData(changed bool) ipc.ActiveData {
	return ipc.ActiveData{Changed: changed, Phase: d.ctrl.Phase().String()}
}

func (d *Daemon) desktopData() ipc.DesktopData {
	st := d.ctrl.Status()
	return ipc.DesktopData{DesktopCount: st.DesktopCount, CurrentDesktop: st.CurrentDesktop}
}

// Toggle implements ipc.Overview.
func (d *Daemon) Toggle() (ipc.ActiveData, error) {
	var out ipc.ActiveData
	err := d.call(func() {
		before := d.ctrl.Phase()
		d.toggle()
		out = d.activeData(d.ctrl.Phase() != before)
	})
	return out, err
}

// SetActive implements ipc.Overview.
func (d *Daemon) SetActive(active bool) (ipc.ActiveData, error) {
	var out ipc.ActiveData
	err := d.call(func() {
		if active && d.ctrl.Phase() == activation.Closed {
			d.refresh = true
			d.settle = 0
			d.step(0)
		}
		out = d.activeData(d.ctrl.SetActive(active))
	})
	return out, err
}

// AppendDesktop implements ipc.Overview.
func (d *Daemon) AppendDesktop() (ipc.DesktopData, error) {
	var (
		out    ipc.DesktopData
		addErr error
	)
	err := d.call(func() {
		_, addErr = d.ctrl.AppendDesktop()
		out = d.desktopData()
	})
	if err != nil {
		return out, err
	}
	if errors.Is(addErr, desktop.ErrDesktopLimit) {
		return out, fmt.Errorf("desktop limit reached (%d desktops)", out.DesktopCount)
	}
	return out, addErr
}

// RemoveDesktop implements ipc.Overview.
func (d *Daemon) RemoveDesktop(index int) (ipc.DesktopData, error) {
	var out ipc.DesktopData
	err := d.call(func() {
		removed := d.ctrl.RemoveDesktop(index)
		out = d.desktopData()
		out.Removed = removed
	})
	return out, err
}

// ChangeCurrentDesktop implements ipc.Overview.
func (d *Daemon) ChangeCurrentDesktop(index int) (ipc.DesktopData, error) {
	var out ipc.DesktopData
	err := d.call(func() {
		d.ctrl.ChangeCurrentDesktop(index)
		out = d.desktopData()
	})
	return out, err
}

// Status implements ipc.Overview.
func (d *Daemon) Status() (effect.Status, error) {
	var out effect.Status
	err := d.call(func() { out = d.ctrl.Status() })
	return out, err
}

// Reload re-reads the configuration and applies it to the running loop.
// An invalid configuration leaves the current one in place.
func (d *Daemon) Reload() error {
	if d.loadConfig == nil {
		return fmt.Errorf("reload not supported")
	}
	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var bindErr error
	err = d.call(func() {
		prev := d.cfg
		d.cfg = cfg
		d.ctrl.SetOptions(cfg.Options())
		if cfg.FrameInterval() != prev.FrameInterval() {
			select {
			case d.reset <- cfg.FrameInterval():
			default:
			}
		}
		if cfg.Hotkey != d.hotkey {
			bindErr = d.bindHotkey(cfg.Hotkey)
		}
	})
	if err != nil {
		return err
	}
	if bindErr != nil {
		return fmt.Errorf("failed to bind hotkey %q: %w", cfg.Hotkey, bindErr)
	}
	return nil
}
