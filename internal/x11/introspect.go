package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/glwin/internal/werr"
)

// WindowInfo describes one top-level client window, for tooling and
// diagnostics rather than for window manipulation.
type WindowInfo struct {
	ID     uint32
	Title  string
	X      int
	Y      int
	Width  int
	Height int
	// Desktop is -1 for sticky windows visible on all desktops.
	Desktop int
	Active  bool
	// Ours marks windows created by this process.
	Ours bool
}

// ListWindows returns the window manager's client list, skipping
// docks and other non-normal windows.
func (c *Conn) ListWindows() ([]WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.xu)
	if err != nil {
		return nil, werr.Wrap(werr.PlatformError, err, "failed to get client list")
	}
	active, _ := ewmh.ActiveWindowGet(c.xu)

	infos := make([]WindowInfo, 0, len(clients))
	for _, id := range clients {
		if !c.isNormalWindow(id) {
			continue
		}
		info := WindowInfo{
			ID:      uint32(id),
			Title:   c.windowTitle(id),
			Desktop: c.windowDesktop(id),
			Active:  id == active,
		}
		if geom, err := xproto.GetGeometry(c.x, xproto.Drawable(id)).Reply(); err == nil {
			info.Width, info.Height = int(geom.Width), int(geom.Height)
		}
		if tr, err := xproto.TranslateCoordinates(c.x, id, c.root, 0, 0).Reply(); err == nil {
			info.X, info.Y = int(tr.DstX), int(tr.DstY)
		}
		_, info.Ours = c.windows[id]
		infos = append(infos, info)
	}
	return infos, nil
}

// FindWindowByTitle returns the first client window whose title
// contains the given substring, case-insensitively.
func (c *Conn) FindWindowByTitle(substr string) (*WindowInfo, error) {
	infos, err := c.ListWindows()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(substr)
	for i := range infos {
		if strings.Contains(strings.ToLower(infos[i].Title), needle) {
			return &infos[i], nil
		}
	}
	return nil, werr.New(werr.InvalidValue, "no window with title matching %q", substr)
}

// ActiveWindow returns the focused top-level window, zero when none.
func (c *Conn) ActiveWindow() (uint32, error) {
	active, err := ewmh.ActiveWindowGet(c.xu)
	if err != nil {
		return 0, werr.Wrap(werr.PlatformError, err, "failed to get active window")
	}
	return uint32(active), nil
}

// Desktops returns the desktop count and the current desktop index.
func (c *Conn) Desktops() (count, current int, err error) {
	n, err := ewmh.NumberOfDesktopsGet(c.xu)
	if err != nil {
		return 0, 0, werr.Wrap(werr.PlatformError, err, "failed to get desktop count")
	}
	cur, err := ewmh.CurrentDesktopGet(c.xu)
	if err != nil {
		return int(n), 0, werr.Wrap(werr.PlatformError, err, "failed to get current desktop")
	}
	return int(n), int(cur), nil
}

// windowTitle reads the EWMH title with an ICCCM fallback for older
// clients.
func (c *Conn) windowTitle(id xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.xu, id); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.xu, id); err == nil {
		return title
	}
	return ""
}

// windowDesktop maps the EWMH desktop property to an index, -1 for
// sticky windows.
func (c *Conn) windowDesktop(id xproto.Window) int {
	desktop, err := ewmh.WmDesktopGet(c.xu, id)
	if err != nil {
		return 0
	}
	if desktop == 0xFFFFFFFF {
		return -1
	}
	return int(desktop)
}

// isNormalWindow reports whether a window should appear in listings.
func (c *Conn) isNormalWindow(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.xu, id)
	if err != nil || len(types) == 0 {
		// No type set, assume normal.
		return true
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
	}
	return false
}
