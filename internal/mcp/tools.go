package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/ipc"
	"github.com/1broseidon/multiview/internal/placement"
)

func (s *Server) requireDaemon(tool string) error {
	if s.daemon == nil {
		return fmt.Errorf("%s: no daemon connection", tool)
	}
	return nil
}

func stateOutput(d *ipc.ActiveData) OverviewStateOutput {
	return OverviewStateOutput{Changed: d.Changed, Phase: d.Phase}
}

func desktopsOutput(d *ipc.DesktopData) DesktopsOutput {
	return DesktopsOutput{
		DesktopCount:   d.DesktopCount,
		CurrentDesktop: d.CurrentDesktop,
		Removed:        d.Removed,
	}
}

func (s *Server) handleToggleOverview(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleOverviewInput) (*mcpsdk.CallToolResult, OverviewStateOutput, error) {
	if err := s.requireDaemon("toggle_overview"); err != nil {
		return nil, OverviewStateOutput{}, err
	}
	res, err := s.daemon.Toggle()
	if err != nil {
		return nil, OverviewStateOutput{}, fmt.Errorf("toggle_overview: %w", err)
	}
	s.logger.Debug("tool call", "tool", "toggle_overview", "phase", res.Phase)
	return nil, stateOutput(res), nil
}

func (s *Server) handleSetOverviewActive(_ context.Context, _ *mcpsdk.CallToolRequest, args SetOverviewActiveInput) (*mcpsdk.CallToolResult, OverviewStateOutput, error) {
	if err := s.requireDaemon("set_overview_active"); err != nil {
		return nil, OverviewStateOutput{}, err
	}
	res, err := s.daemon.SetActive(args.Active)
	if err != nil {
		return nil, OverviewStateOutput{}, fmt.Errorf("set_overview_active: %w", err)
	}
	s.logger.Debug("tool call", "tool", "set_overview_active", "active", args.Active, "changed", res.Changed)
	return nil, stateOutput(res), nil
}

func (s *Server) handleAppendDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, _ AppendDesktopInput) (*mcpsdk.CallToolResult, DesktopsOutput, error) {
	if err := s.requireDaemon("append_desktop"); err != nil {
		return nil, DesktopsOutput{}, err
	}
	res, err := s.daemon.AppendDesktop()
	if err != nil {
		return nil, DesktopsOutput{}, fmt.Errorf("append_desktop: %w", err)
	}
	return nil, desktopsOutput(res), nil
}

func (s *Server) handleRemoveDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args DesktopIndexInput) (*mcpsdk.CallToolResult, DesktopsOutput, error) {
	if err := s.requireDaemon("remove_desktop"); err != nil {
		return nil, DesktopsOutput{}, err
	}
	if args.Index < 1 {
		return nil, DesktopsOutput{}, fmt.Errorf("remove_desktop: index must be >= 1")
	}
	res, err := s.daemon.RemoveDesktop(args.Index)
	if err != nil {
		return nil, DesktopsOutput{}, fmt.Errorf("remove_desktop: %w", err)
	}
	return nil, desktopsOutput(res), nil
}

func (s *Server) handleChangeCurrentDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args DesktopIndexInput) (*mcpsdk.CallToolResult, DesktopsOutput, error) {
	if err := s.requireDaemon("change_current_desktop"); err != nil {
		return nil, DesktopsOutput{}, err
	}
	res, err := s.daemon.ChangeCurrentDesktop(args.Index)
	if err != nil {
		return nil, DesktopsOutput{}, fmt.Errorf("change_current_desktop: %w", err)
	}
	return nil, desktopsOutput(res), nil
}

func (s *Server) handleOverviewStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ OverviewStatusInput) (*mcpsdk.CallToolResult, OverviewStatusOutput, error) {
	if err := s.requireDaemon("overview_status"); err != nil {
		return nil, OverviewStatusOutput{}, err
	}
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, OverviewStatusOutput{}, fmt.Errorf("overview_status: %w", err)
	}
	return nil, OverviewStatusOutput{
		Phase:          st.Phase,
		Progress:       st.Progress,
		DesktopCount:   st.DesktopCount,
		CurrentDesktop: st.CurrentDesktop,
		TargetDesktop:  st.TargetDesktop,
		Windows:        st.Windows,
		Displayed:      st.Displayed,
		Highlighted:    uint32(st.Highlighted),
		UptimeSeconds:  st.UptimeSeconds,
	}, nil
}

func (s *Server) handlePreviewPlacement(_ context.Context, _ *mcpsdk.CallToolRequest, args PreviewPlacementInput) (*mcpsdk.CallToolResult, PreviewPlacementOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, PreviewPlacementOutput{}, fmt.Errorf("preview_placement: width and height must be > 0")
	}
	opts := placement.Options{
		BorderMargin:  s.config.BorderMargin,
		MaxIterations: s.config.SolverMaxIterations,
	}
	if args.BorderMargin != nil {
		if *args.BorderMargin < 0 {
			return nil, PreviewPlacementOutput{}, fmt.Errorf("preview_placement: border_margin must be >= 0")
		}
		opts.BorderMargin = *args.BorderMargin
	}
	if args.MaxIterations != nil {
		opts.MaxIterations = *args.MaxIterations
	}

	area := geom.Rect{Width: args.Width, Height: args.Height}
	rects, err := placement.SolveAspects(args.Aspects, area, opts)
	if err != nil {
		return nil, PreviewPlacementOutput{}, fmt.Errorf("preview_placement: %w", err)
	}

	out := PreviewPlacementOutput{Rects: make([]LayoutRect, 0, len(rects))}
	covered := 0
	for i, r := range rects {
		out.Rects = append(out.Rects, LayoutRect{
			Index:  i,
			X:      r.X,
			Y:      r.Y,
			Width:  r.Width,
			Height: r.Height,
			Aspect: args.Aspects[i],
		})
		covered += r.Area()
	}
	out.Coverage = float64(covered) / float64(area.Area())
	return nil, out, nil
}
