package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

// Monitors enumerates active monitors through RandR, primary first.
// Without RandR the whole screen is reported as one monitor.
func (c *Conn) Monitors() ([]platform.Monitor, error) {
	if !c.hasRandR {
		return []platform.Monitor{c.screenMonitor()}, nil
	}
	resources, err := randr.GetScreenResources(c.x, c.root).Reply()
	if err != nil {
		return nil, werr.Wrap(werr.PlatformError, err, "failed to get screen resources")
	}

	var primaryOutput randr.Output
	if primary, err := randr.GetOutputPrimary(c.x, c.root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	var monitors []platform.Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.x, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		output := info.Outputs[0]
		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.x, output, resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		m := platform.Monitor{
			Name:    name,
			X:       int(info.X),
			Y:       int(info.Y),
			Width:   int(info.Width),
			Height:  int(info.Height),
			Primary: primaryOutput != 0 && output == primaryOutput,
			Output:  uint32(output),
		}
		if m.Primary && len(monitors) > 0 {
			monitors = append([]platform.Monitor{m}, monitors...)
		} else {
			monitors = append(monitors, m)
		}
	}
	if len(monitors) == 0 {
		return []platform.Monitor{c.screenMonitor()}, nil
	}
	return monitors, nil
}

func (c *Conn) screenMonitor() platform.Monitor {
	return platform.Monitor{
		Name:    "default",
		Width:   int(c.screen.WidthInPixels),
		Height:  int(c.screen.HeightInPixels),
		Primary: true,
	}
}

// PrimaryMonitor returns the primary monitor, falling back to the
// first one when the server marks no output as primary.
func (c *Conn) PrimaryMonitor() (platform.Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return platform.Monitor{}, err
	}
	for _, m := range monitors {
		if m.Primary {
			return m, nil
		}
	}
	return monitors[0], nil
}

// Workarea returns the monitor rectangle shrunk by panel and dock
// struts. When no client advertises struts the desktop workarea is
// intersected instead.
func (c *Conn) Workarea(m platform.Monitor) platform.Monitor {
	if c.applyDockStruts(&m) {
		return m
	}

	workArea, err := ewmh.WorkareaGet(c.xu)
	if err != nil || len(workArea) == 0 {
		return m
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.xu); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]

	x1 := max(m.X, int(wa.X))
	y1 := max(m.Y, int(wa.Y))
	x2 := min(m.X+m.Width, int(wa.X)+int(wa.Width))
	y2 := min(m.Y+m.Height, int(wa.Y)+int(wa.Height))
	if x2 > x1 && y2 > y1 {
		m.X, m.Y = x1, y1
		m.Width, m.Height = x2-x1, y2-y1
	}
	return m
}

type strutInsets struct {
	left, right, top, bottom int
}

// applyDockStruts shrinks the monitor by every dock strut overlapping
// it. Reports whether any strut applied.
func (c *Conn) applyDockStruts(m *platform.Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.x, xproto.Drawable(c.root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.xu)
	if err != nil {
		return false
	}

	var insets strutInsets
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.xu, windowID)
		if err != nil {
			continue
		}
		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.xu, windowID); err == nil {
			accumulateStruts(*m, rootWidth, rootHeight, sp, &insets)
			continue
		}
		// Some docks only set _NET_WM_STRUT without partial ranges.
		if s, err := ewmh.WmStrutGet(c.xu, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftStartY: 0, LeftEndY: uint(rootHeight - 1),
				RightStartY: 0, RightEndY: uint(rootHeight - 1),
				TopStartX: 0, TopEndX: uint(rootWidth - 1),
				BottomStartX: 0, BottomEndX: uint(rootWidth - 1),
			}
			accumulateStruts(*m, rootWidth, rootHeight, sp, &insets)
		}
	}

	if insets == (strutInsets{}) {
		return false
	}

	m.X += insets.left
	m.Y += insets.top
	m.Width -= insets.left + insets.right
	m.Height -= insets.top + insets.bottom
	if m.Width < 1 {
		m.Width = 1
	}
	if m.Height < 1 {
		m.Height = 1
	}
	return true
}

// accumulateStruts folds one client's strut reservation into the
// insets, counting only the part overlapping the monitor.
func accumulateStruts(m platform.Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *strutInsets) {
	monX1, monY1 := m.X, m.Y
	monX2, monY2 := m.X+m.Width, m.Y+m.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		x1, x2 := int(sp.TopStartX), int(sp.TopEndX)+1
		y1, y2 := 0, int(sp.Top)
		if w, h := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); w > 0 && h > 0 {
			acc.top = max(acc.top, h)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		x1, x2 := int(sp.BottomStartX), int(sp.BottomEndX)+1
		y1, y2 := rootHeight-int(sp.Bottom), rootHeight
		if w, h := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); w > 0 && h > 0 {
			acc.bottom = max(acc.bottom, h)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		x1, x2 := 0, int(sp.Left)
		y1, y2 := int(sp.LeftStartY), int(sp.LeftEndY)+1
		if w, h := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); w > 0 && h > 0 {
			acc.left = max(acc.left, w)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		x1, x2 := rootWidth-int(sp.Right), rootWidth
		y1, y2 := int(sp.RightStartY), int(sp.RightEndY)+1
		if w, h := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); w > 0 && h > 0 {
			acc.right = max(acc.right, w)
		}
	}
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) (w, h int) {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)
	if x2 <= x1 || y2 <= y1 {
		return 0, 0
	}
	return x2 - x1, y2 - y1
}

// ContainingMonitor returns the monitor holding the center of the
// given window, or nil when it is offscreen.
func (c *Conn) ContainingMonitor(monitors []platform.Monitor, windowID xproto.Window) *platform.Monitor {
	geom, err := xproto.GetGeometry(c.x, xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil
	}
	translate, err := xproto.TranslateCoordinates(c.x, windowID, c.root, 0, 0).Reply()
	if err != nil {
		return nil
	}
	centerX := int(translate.DstX) + int(geom.Width)/2
	centerY := int(translate.DstY) + int(geom.Height)/2
	return monitorAt(monitors, centerX, centerY)
}

// PointerMonitor returns the monitor under the pointer.
func (c *Conn) PointerMonitor(monitors []platform.Monitor) *platform.Monitor {
	pointer, err := xproto.QueryPointer(c.x, c.root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func monitorAt(monitors []platform.Monitor, x, y int) *platform.Monitor {
	for i := range monitors {
		m := &monitors[i]
		if x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height {
			return m
		}
	}
	return nil
}
