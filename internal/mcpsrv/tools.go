package mcpsrv

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/glwin"
)

func windowInfoFrom(w glwin.DesktopWindow) WindowInfo {
	return WindowInfo{
		ID:      w.ID,
		Title:   w.Title,
		X:       w.X,
		Y:       w.Y,
		Width:   w.Width,
		Height:  w.Height,
		Desktop: w.Desktop,
		Active:  w.Active,
		Ours:    w.Ours,
	}
}

func monitorInfoFrom(m glwin.Monitor) MonitorInfo {
	return MonitorInfo{
		Name:    m.Name,
		X:       m.X,
		Y:       m.Y,
		Width:   m.Width,
		Height:  m.Height,
		Primary: m.Primary,
	}
}

func parseSelection(s string) (primary bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clipboard":
		return false, nil
	case "primary":
		return true, nil
	default:
		return false, fmt.Errorf("unknown selection %q; use clipboard or primary", s)
	}
}

func selectionName(primary bool) string {
	if primary {
		return "primary"
	}
	return "clipboard"
}

func (s *Server) handleListWindows(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	var (
		windows []glwin.DesktopWindow
		err     error
	)
	if cerr := s.call(ctx, func() {
		windows, err = s.desktop.DesktopWindows()
	}); cerr != nil {
		return nil, ListWindowsOutput{}, cerr
	}
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		if args.OursOnly && !w.Ours {
			continue
		}
		out.Windows = append(out.Windows, windowInfoFrom(w))
	}
	out.Count = len(out.Windows)
	s.logger.Debug("listed windows", "count", out.Count, "ours_only", args.OursOnly)
	return nil, out, nil
}

func (s *Server) handleGetWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args GetWindowInput) (*mcpsdk.CallToolResult, GetWindowOutput, error) {
	selectors := 0
	if args.ID != 0 {
		selectors++
	}
	if args.Title != "" {
		selectors++
	}
	if args.Active {
		selectors++
	}
	if selectors != 1 {
		return nil, GetWindowOutput{}, fmt.Errorf("exactly one of id, title or active must be set")
	}

	var (
		window glwin.DesktopWindow
		err    error
	)
	if cerr := s.call(ctx, func() {
		switch {
		case args.Active:
			window, err = s.desktop.ActiveDesktopWindow()
		case args.Title != "":
			window, err = s.desktop.FindDesktopWindow(args.Title)
		default:
			window, err = s.findByID(args.ID)
		}
	}); cerr != nil {
		return nil, GetWindowOutput{}, cerr
	}
	if err != nil {
		return nil, GetWindowOutput{}, err
	}
	s.logger.Debug("looked up window", "id", window.ID, "title", window.Title)
	return nil, GetWindowOutput{Window: windowInfoFrom(window)}, nil
}

// findByID runs on the event loop goroutine, inside call.
func (s *Server) findByID(id uint32) (glwin.DesktopWindow, error) {
	windows, err := s.desktop.DesktopWindows()
	if err != nil {
		return glwin.DesktopWindow{}, err
	}
	for _, w := range windows {
		if w.ID == id {
			return w, nil
		}
	}
	return glwin.DesktopWindow{}, fmt.Errorf("no window with id %d", id)
}

func (s *Server) handleListMonitors(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	var (
		monitors []glwin.Monitor
		err      error
	)
	if cerr := s.call(ctx, func() {
		monitors, err = s.desktop.Monitors()
	}); cerr != nil {
		return nil, ListMonitorsOutput{}, cerr
	}
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	out := ListMonitorsOutput{Monitors: make([]MonitorInfo, len(monitors)), Count: len(monitors)}
	for i, m := range monitors {
		out.Monitors[i] = monitorInfoFrom(m)
	}
	s.logger.Debug("listed monitors", "count", out.Count)
	return nil, out, nil
}

func (s *Server) handleGetClipboard(ctx context.Context, _ *mcpsdk.CallToolRequest, args GetClipboardInput) (*mcpsdk.CallToolResult, GetClipboardOutput, error) {
	primary, perr := parseSelection(args.Selection)
	if perr != nil {
		return nil, GetClipboardOutput{}, perr
	}
	var (
		text string
		err  error
	)
	if cerr := s.call(ctx, func() {
		if primary {
			text, err = s.desktop.PrimaryString()
		} else {
			text, err = s.desktop.ClipboardString()
		}
	}); cerr != nil {
		return nil, GetClipboardOutput{}, cerr
	}
	if err != nil {
		return nil, GetClipboardOutput{}, err
	}
	s.logger.Debug("read selection", "selection", selectionName(primary), "length", len(text))
	return nil, GetClipboardOutput{Text: text}, nil
}

func (s *Server) handleSetClipboard(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetClipboardInput) (*mcpsdk.CallToolResult, SetClipboardOutput, error) {
	primary, perr := parseSelection(args.Selection)
	if perr != nil {
		return nil, SetClipboardOutput{}, perr
	}
	var err error
	if cerr := s.call(ctx, func() {
		if primary {
			err = s.desktop.SetPrimaryString(args.Text)
		} else {
			err = s.desktop.SetClipboardString(args.Text)
		}
	}); cerr != nil {
		return nil, SetClipboardOutput{}, cerr
	}
	if err != nil {
		return nil, SetClipboardOutput{}, err
	}
	s.logger.Debug("wrote selection", "selection", selectionName(primary), "length", len(args.Text))
	return nil, SetClipboardOutput{Length: len(args.Text)}, nil
}
