// Package mcp exposes overview control to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/multiview/internal/config"
	"github.com/1broseidon/multiview/internal/ipc"
)

const (
	ServerName    = "multiview"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools need.
type Daemon interface {
	Toggle() (*ipc.ActiveData, error)
	SetActive(active bool) (*ipc.ActiveData, error)
	AppendDesktop() (*ipc.DesktopData, error)
	RemoveDesktop(index int) (*ipc.DesktopData, error)
	ChangeCurrentDesktop(index int) (*ipc.DesktopData, error)
	GetStatus() (*ipc.StatusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for multiview.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a server that forwards overview tools to daemon.
// preview_placement works without a running daemon.
func NewServer(cfg *config.Config, daemon Daemon, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		daemon: daemon,
		logger: logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_overview",
		Description: "Toggle the desktop overview. Shows it when hidden, hides it when shown, and reverses an animation already in flight.",
	}, s.handleToggleOverview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_overview_active",
		Description: "Show (active=true) or hide (active=false) the desktop overview. Redundant requests are no-ops and report changed=false.",
	}, s.handleSetOverviewActive)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "append_desktop",
		Description: "Add a virtual desktop at the end. Fails when the configured max_desktops is reached.",
	}, s.handleAppendDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_desktop",
		Description: "Remove a virtual desktop by one-based index. Its windows move to the desktop that takes its place. The last desktop cannot be removed; removed=false reports a no-op.",
	}, s.handleRemoveDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "change_current_desktop",
		Description: "Switch to a one-based desktop index. Out-of-range indices are clamped.",
	}, s.handleChangeCurrentDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overview_status",
		Description: "Report the overview phase, desktop count, current and displayed desktop, and window counts.",
	}, s.handleOverviewStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_placement",
		Description: "Compute the overview layout for windows with the given aspect ratios inside a width x height area without touching any windows. Rects are returned in input order.",
	}, s.handlePreviewPlacement)
}
