package glwin

import (
	"github.com/1broseidon/glwin/internal/werr"
	"github.com/1broseidon/glwin/internal/x11"
)

// DesktopWindow describes one top-level window on the desktop,
// including windows owned by other processes.
type DesktopWindow struct {
	ID     uint32
	Title  string
	X, Y   int
	Width  int
	Height int
	// Desktop is the virtual desktop index, -1 for sticky windows
	// visible on all desktops.
	Desktop int
	// Active marks the window holding input focus.
	Active bool
	// Ours marks windows created through this Platform.
	Ours bool
}

func desktopWindowFrom(info x11.WindowInfo) DesktopWindow {
	return DesktopWindow{
		ID:      info.ID,
		Title:   info.Title,
		X:       info.X,
		Y:       info.Y,
		Width:   info.Width,
		Height:  info.Height,
		Desktop: info.Desktop,
		Active:  info.Active,
		Ours:    info.Ours,
	}
}

// DesktopWindows lists the window manager's client windows. X11 only.
func (p *Platform) DesktopWindows() ([]DesktopWindow, error) {
	if p.x == nil {
		return nil, reportError(errNotX11("desktop introspection"))
	}
	infos, err := p.x.ListWindows()
	if err != nil {
		return nil, reportError(err)
	}
	windows := make([]DesktopWindow, len(infos))
	for i, info := range infos {
		windows[i] = desktopWindowFrom(info)
	}
	return windows, nil
}

// FindDesktopWindow returns the first desktop window whose title
// contains the given substring, case-insensitively. X11 only.
func (p *Platform) FindDesktopWindow(title string) (DesktopWindow, error) {
	if p.x == nil {
		return DesktopWindow{}, reportError(errNotX11("desktop introspection"))
	}
	info, err := p.x.FindWindowByTitle(title)
	if err != nil {
		return DesktopWindow{}, reportError(err)
	}
	return desktopWindowFrom(*info), nil
}

// ActiveDesktopWindow returns the window holding input focus. X11
// only.
func (p *Platform) ActiveDesktopWindow() (DesktopWindow, error) {
	if p.x == nil {
		return DesktopWindow{}, reportError(errNotX11("desktop introspection"))
	}
	id, err := p.x.ActiveWindow()
	if err != nil {
		return DesktopWindow{}, reportError(err)
	}
	if id == 0 {
		return DesktopWindow{}, reportError(werr.New(werr.InvalidValue, "no window holds input focus"))
	}
	windows, err := p.DesktopWindows()
	if err != nil {
		return DesktopWindow{}, err
	}
	for _, w := range windows {
		if w.ID == id {
			return w, nil
		}
	}
	return DesktopWindow{}, reportError(werr.New(werr.PlatformError, "active window %d is not in the client list", id))
}

// Desktops returns the virtual desktop count and the index of the
// current desktop. X11 only.
func (p *Platform) Desktops() (count, current int, err error) {
	if p.x == nil {
		return 0, 0, reportError(errNotX11("desktop introspection"))
	}
	count, current, err = p.x.Desktops()
	if err != nil {
		return 0, 0, reportError(err)
	}
	return count, current, nil
}
