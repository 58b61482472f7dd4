package x11

import (
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

const (
	netWMStateRemove = 0
	netWMStateAdd    = 1

	// Source indication for client messages sent on behalf of the
	// application, as opposed to a pager.
	sourceApplication = 1

	iconicState = 3

	mapTimeout          = 500 * time.Millisecond
	frameExtentsTimeout = 500 * time.Millisecond
)

// Show maps the window and waits briefly for the map to land, so
// operations issued right after creation act on a viewable window.
func (w *Window) Show() error {
	if w.visible {
		return nil
	}
	if err := xproto.MapWindowChecked(w.c.x, w.id).Check(); err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to map window")
	}
	w.c.waitFor(mapTimeout, func(ev xgb.Event) bool {
		mn, ok := ev.(xproto.MapNotifyEvent)
		return ok && mn.Window == w.id
	})
	w.visible = true
	return nil
}

// Hide unmaps the window.
func (w *Window) Hide() error {
	if err := xproto.UnmapWindowChecked(w.c.x, w.id).Check(); err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to unmap window")
	}
	w.visible = false
	return nil
}

// Iconify asks the window manager to minimize the window.
func (w *Window) Iconify() error {
	if err := w.c.sendRootMessage(w.id, w.c.atoms.WMChangeState, [5]uint32{iconicState}); err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to iconify window")
	}
	return nil
}

// Restore deiconifies an iconified window and reverts a maximized one.
func (w *Window) Restore() error {
	if w.iconified {
		if err := xproto.MapWindowChecked(w.c.x, w.id).Check(); err != nil {
			return werr.Wrap(werr.PlatformError, err, "failed to restore window")
		}
		return nil
	}
	if w.maximized {
		return w.sendWMState(netWMStateRemove,
			w.c.atoms.NetWMStateMaximizedHorz, w.c.atoms.NetWMStateMaximizedVert)
	}
	return nil
}

// Maximize asks the window manager to maximize the window in both
// dimensions. Unmapped windows get the state written directly so it
// takes effect on map.
func (w *Window) Maximize() error {
	if !w.visible {
		w.maximized = true
		w.writeWMState()
		return nil
	}
	return w.sendWMState(netWMStateAdd,
		w.c.atoms.NetWMStateMaximizedHorz, w.c.atoms.NetWMStateMaximizedVert)
}

// Focus asks the window manager to activate the window, raising it as
// a fallback for window managers without _NET_ACTIVE_WINDOW support.
func (w *Window) Focus() error {
	err := w.c.sendRootMessage(w.id, w.c.atoms.NetActiveWindow,
		[5]uint32{sourceApplication, uint32(xproto.TimeCurrentTime)})
	if err == nil {
		return nil
	}
	if err := xproto.SetInputFocusChecked(w.c.x,
		xproto.InputFocusParent, w.id, xproto.TimeCurrentTime).Check(); err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to focus window")
	}
	xproto.ConfigureWindow(w.c.x, w.id, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove})
	return nil
}

// RequestAttention marks the window as demanding attention.
func (w *Window) RequestAttention() error {
	return w.sendWMState(netWMStateAdd, w.c.atoms.NetWMStateDemandsAttn, 0)
}

// Visible reports whether the window is mapped.
func (w *Window) Visible() bool { return w.visible }

// Iconified reports whether the window is minimized.
func (w *Window) Iconified() bool { return w.iconified }

// Maximized reports whether the window is maximized.
func (w *Window) Maximized() bool { return w.maximized }

// Focused reports whether the window has input focus.
func (w *Window) Focused() bool { return w.focused }

// SetResizable toggles user resizing through WM_NORMAL_HINTS.
func (w *Window) SetResizable(resizable bool) error {
	w.resizable = resizable
	w.updateNormalHints(w.width, w.height)
	return nil
}

// SetDecorated toggles window manager decorations.
func (w *Window) SetDecorated(decorated bool) error {
	w.decorated = decorated
	w.applyDecorations(decorated)
	return nil
}

// SetFloating keeps the window above normal windows when enabled.
func (w *Window) SetFloating(floating bool) error {
	w.floating = floating
	if !w.visible {
		w.writeWMState()
		return nil
	}
	action := uint32(netWMStateRemove)
	if floating {
		action = netWMStateAdd
	}
	return w.sendWMState(action, w.c.atoms.NetWMStateAbove, 0)
}

// applyDecorations publishes Motif WM hints. All mainstream window
// managers honor the decorations member.
func (w *Window) applyDecorations(decorated bool) {
	const mwmHintsDecorations = 1 << 1
	var decor uint32
	if decorated {
		decor = 1
	}
	w.c.changeProperty32(w.id, w.c.atoms.MotifWMHints, w.c.atoms.MotifWMHints,
		mwmHintsDecorations, 0, decor, 0, 0)
}

// SetOpacity sets whole-window opacity. Full opacity removes the
// property instead of writing the maximum.
func (w *Window) SetOpacity(opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return werr.New(werr.InvalidValue, "invalid window opacity %f", opacity)
	}
	if opacity == 1 {
		xproto.DeleteProperty(w.c.x, w.id, w.c.atoms.NetWMWindowOpacity)
		return nil
	}
	w.c.changeProperty32(w.id, w.c.atoms.NetWMWindowOpacity, xproto.AtomCardinal,
		uint32(opacity*0xffffffff))
	return nil
}

// Opacity returns the whole-window opacity, 1.0 when unset.
func (w *Window) Opacity() float64 {
	reply, err := xproto.GetProperty(w.c.x, false, w.id, w.c.atoms.NetWMWindowOpacity,
		xproto.AtomCardinal, 0, 1).Reply()
	if err != nil || reply.Format != 32 || len(reply.Value) < 4 {
		return 1
	}
	return float64(xgb.Get32(reply.Value)) / 0xffffffff
}

// SetMousePassthrough makes the window transparent to pointer input by
// emptying its input shape.
func (w *Window) SetMousePassthrough(enabled bool) error {
	if !w.c.hasShape {
		return werr.New(werr.PlatformError, "the Shape extension is not available")
	}
	var err error
	if enabled {
		err = shape.RectanglesChecked(w.c.x, shape.SoSet, shape.SkInput,
			xproto.ClipOrderingUnsorted, w.id, 0, 0, nil).Check()
	} else {
		err = shape.MaskChecked(w.c.x, shape.SoSet, shape.SkInput,
			w.id, 0, 0, xproto.PixmapNone).Check()
	}
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to update input shape")
	}
	return nil
}

// Monitor returns the monitor the window is fullscreen on, or nil.
func (w *Window) Monitor() *platform.Monitor { return w.monitor }

// SetMonitor switches between fullscreen and windowed mode. Entering
// fullscreen disables the screensaver; leaving restores it and the
// windowed geometry.
func (w *Window) SetMonitor(m *platform.Monitor) error {
	if m == nil {
		if w.monitor == nil {
			return nil
		}
		w.monitor = nil
		w.c.idle.release()
		if err := w.sendWMState(netWMStateRemove, w.c.atoms.NetWMStateFullscreen, 0); err != nil {
			return err
		}
		w.SetPos(w.windowedX, w.windowedY)
		return w.SetSize(w.windowedW, w.windowedH)
	}

	if w.monitor == nil {
		w.windowedX, w.windowedY = w.Pos()
		w.windowedW, w.windowedH = w.width, w.height
		w.c.idle.disable()
	}
	w.monitor = m
	if !w.visible {
		if err := w.Show(); err != nil {
			return err
		}
	}
	if err := w.sendWMState(netWMStateAdd, w.c.atoms.NetWMStateFullscreen, 0); err != nil {
		return err
	}
	err := xproto.ConfigureWindowChecked(w.c.x, w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(m.X)), uint32(int32(m.Y)), uint32(m.Width), uint32(m.Height)}).Check()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to set fullscreen geometry")
	}
	return nil
}

// sendWMState sends a _NET_WM_STATE client message. Up to two state
// atoms can change in a single message.
func (w *Window) sendWMState(action uint32, first, second xproto.Atom) error {
	err := w.c.sendRootMessage(w.id, w.c.atoms.NetWMState,
		[5]uint32{action, uint32(first), uint32(second), sourceApplication})
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to send state message")
	}
	return nil
}

// writeWMState writes the _NET_WM_STATE property directly. Only valid
// before the window is mapped; window managers take over afterwards.
func (w *Window) writeWMState() {
	var atoms []uint32
	if w.floating {
		atoms = append(atoms, uint32(w.c.atoms.NetWMStateAbove))
	}
	if w.maximized {
		atoms = append(atoms,
			uint32(w.c.atoms.NetWMStateMaximizedHorz),
			uint32(w.c.atoms.NetWMStateMaximizedVert))
	}
	if w.monitor != nil {
		atoms = append(atoms, uint32(w.c.atoms.NetWMStateFullscreen))
	}
	if len(atoms) == 0 {
		xproto.DeleteProperty(w.c.x, w.id, w.c.atoms.NetWMState)
		return
	}
	w.c.changeProperty32(w.id, w.c.atoms.NetWMState, xproto.AtomAtom, atoms...)
}

// updateIconified folds repeated WM_STATE updates into a single
// transition notification.
func (w *Window) updateIconified(iconified bool) {
	if w.iconified == iconified {
		return
	}
	w.iconified = iconified
	w.handlers.EmitIconify(iconified)
}

// updateMaximized folds repeated _NET_WM_STATE updates into a single
// transition notification.
func (w *Window) updateMaximized(maximized bool) {
	if w.maximized == maximized {
		return
	}
	w.maximized = maximized
	w.handlers.EmitMaximize(maximized)
}
