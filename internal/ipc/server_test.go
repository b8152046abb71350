package ipc

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/multiview/internal/effect"
)

type fakeOverview struct {
	mu      sync.Mutex
	active  bool
	count   int
	current int
	reloads int
	reload  error
}

func (f *fakeOverview) Toggle() (ActiveData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = !f.active
	return ActiveData{Changed: true, Phase: f.phase()}, nil
}

func (f *fakeOverview) SetActive(active bool) (ActiveData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.active != active
	f.active = active
	return ActiveData{Changed: changed, Phase: f.phase()}, nil
}

func (f *fakeOverview) phase() string {
	if f.active {
		return "opening"
	}
	return "closing"
}

func (f *fakeOverview) AppendDesktop() (DesktopData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count >= 4 {
		return DesktopData{DesktopCount: f.count, CurrentDesktop: f.current}, errors.New("desktop limit reached")
	}
	f.count++
	return DesktopData{DesktopCount: f.count, CurrentDesktop: f.current}, nil
}

func (f *fakeOverview) RemoveDesktop(index int) (DesktopData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 1 || index > f.count || f.count == 1 {
		return DesktopData{DesktopCount: f.count, CurrentDesktop: f.current}, nil
	}
	f.count--
	f.current = min(f.current, f.count)
	return DesktopData{DesktopCount: f.count, CurrentDesktop: f.current, Removed: true}, nil
}

func (f *fakeOverview) ChangeCurrentDesktop(index int) (DesktopData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = max(1, min(index, f.count))
	return DesktopData{DesktopCount: f.count, CurrentDesktop: f.current}, nil
}

func (f *fakeOverview) Status() (effect.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return effect.Status{Phase: f.phase(), DesktopCount: f.count, CurrentDesktop: f.current, Windows: 3}, nil
}

func (f *fakeOverview) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reload
}

// startServer uses a short temp dir; unix socket paths are length-limited.
func startServer(t *testing.T, ov Overview) (*Server, *Client) {
	t.Helper()
	dir, err := os.MkdirTemp("", "mv")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	sock := filepath.Join(dir, "s.sock")
	srv := NewServer(sock, ov, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, NewClientWithSocket(sock)
}

func TestToggleAndSetActive(t *testing.T) {
	_, c := startServer(t, &fakeOverview{count: 2, current: 1})

	res, err := c.Toggle()
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !res.Changed || res.Phase != "opening" {
		t.Fatalf("unexpected toggle result %+v", res)
	}

	res, err = c.SetActive(true)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if res.Changed {
		t.Fatalf("SetActive(true) while active should not change, got %+v", res)
	}
}

func TestDesktopCommands(t *testing.T) {
	_, c := startServer(t, &fakeOverview{count: 2, current: 2})

	d, err := c.AppendDesktop()
	if err != nil {
		t.Fatalf("AppendDesktop: %v", err)
	}
	if d.DesktopCount != 3 {
		t.Fatalf("expected 3 desktops, got %d", d.DesktopCount)
	}

	d, err = c.ChangeCurrentDesktop(9)
	if err != nil {
		t.Fatalf("ChangeCurrentDesktop: %v", err)
	}
	if d.CurrentDesktop != 3 {
		t.Fatalf("expected clamped desktop 3, got %d", d.CurrentDesktop)
	}

	d, err = c.RemoveDesktop(3)
	if err != nil {
		t.Fatalf("RemoveDesktop: %v", err)
	}
	if !d.Removed || d.DesktopCount != 2 || d.CurrentDesktop != 2 {
		t.Fatalf("unexpected remove result %+v", d)
	}

	d, err = c.RemoveDesktop(7)
	if err != nil {
		t.Fatalf("RemoveDesktop absent: %v", err)
	}
	if d.Removed {
		t.Fatalf("absent desktop should not be removed")
	}
}

func TestAppendLimitSurfacesAsError(t *testing.T) {
	_, c := startServer(t, &fakeOverview{count: 4, current: 1})

	_, err := c.AppendDesktop()
	if err == nil || !strings.Contains(err.Error(), "desktop limit") {
		t.Fatalf("expected desktop limit error, got %v", err)
	}
}

func TestStatusIncludesDaemonFields(t *testing.T) {
	_, c := startServer(t, &fakeOverview{count: 2, current: 1})

	st, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !st.DaemonRunning {
		t.Fatalf("daemon_running should be true")
	}
	if st.DesktopCount != 2 || st.Windows != 3 || st.Phase != "closing" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestReloadErrorIsReported(t *testing.T) {
	ov := &fakeOverview{count: 1, current: 1, reload: errors.New("frame_rate: out of range")}
	_, c := startServer(t, ov)

	err := c.Reload()
	if err == nil || !strings.Contains(err.Error(), "frame_rate") {
		t.Fatalf("expected reload error, got %v", err)
	}
	if ov.reloads != 1 {
		t.Fatalf("expected one reload, got %d", ov.reloads)
	}
}

func TestMissingPayloadRejected(t *testing.T) {
	srv := NewServer("", &fakeOverview{count: 1, current: 1}, nil)

	resp := srv.handleCommand(&Request{Command: CommandRemoveDesktop})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "missing payload") {
		t.Fatalf("expected missing payload error, got %+v", resp)
	}

	resp = srv.handleCommand(&Request{Command: "BOGUS"})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "Unknown command") {
		t.Fatalf("expected unknown command error, got %+v", resp)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientWithSocket(filepath.Join(t.TempDir(), "none.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
