package nullwin

import (
	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

const sizeDontCare = -1

// Window is one headless window: pure state, with the backend acting
// as the window manager. Mutations report their effects through the
// handlers synchronously.
type Window struct {
	b        *Backend
	handle   uintptr
	handlers platform.Handlers
	context  platform.Context

	title string

	x, y          int
	width, height int

	visible   bool
	iconified bool
	maximized bool
	focused   bool

	resizable   bool
	decorated   bool
	floating    bool
	autoIconify bool

	minWidth, minHeight int
	maxWidth, maxHeight int
	aspectNumer         int
	aspectDenom         int

	opacity     float64
	passthrough bool

	monitor *platform.Monitor

	// Geometry to restore when leaving fullscreen.
	windowedX, windowedY int
	windowedW, windowedH int

	cursorMode       event.CursorMode
	cursorShape      event.StandardCursor
	cursorX, cursorY float64

	destroyed bool
}

func newWindow(b *Backend, cfg platform.WindowConfig, handlers platform.Handlers) *Window {
	b.nextHandle++
	w := &Window{
		b:           b,
		handle:      b.nextHandle,
		handlers:    handlers,
		title:       cfg.Title,
		width:       cfg.Width,
		height:      cfg.Height,
		maximized:   cfg.Maximized,
		resizable:   cfg.Resizable,
		decorated:   cfg.Decorated,
		floating:    cfg.Floating,
		autoIconify: cfg.AutoIconify,
		minWidth:    sizeDontCare,
		minHeight:   sizeDontCare,
		maxWidth:    sizeDontCare,
		maxHeight:   sizeDontCare,
		aspectNumer: sizeDontCare,
		aspectDenom: sizeDontCare,
		opacity:     1,
		cursorMode:  event.CursorNormal,
	}
	b.windows = append(b.windows, w)
	return w
}

// Handle returns a process-unique identifier standing in for a native
// window handle.
func (w *Window) Handle() uintptr { return w.handle }

// Context returns the window's rendering context, or nil when created
// without a client API.
func (w *Window) Context() platform.Context { return w.context }

// EGLWindowValue and EGLWindowPointer satisfy the surface interface.
// Headless contexts always render to pbuffers, so neither is ever
// consulted.
func (w *Window) EGLWindowValue() uintptr   { return 0 }
func (w *Window) EGLWindowPointer() uintptr { return 0 }

// SetTitle updates the window title.
func (w *Window) SetTitle(title string) error {
	w.title = title
	return nil
}

// Title returns the last title set.
func (w *Window) Title() string { return w.title }

// Pos returns the window position.
func (w *Window) Pos() (int, int) { return w.x, w.y }

// SetPos moves the window. Fullscreen geometry belongs to the monitor.
func (w *Window) SetPos(x, y int) error {
	if w.monitor != nil {
		return nil
	}
	w.moveTo(x, y)
	return nil
}

// Size returns the client area size.
func (w *Window) Size() (int, int) { return w.width, w.height }

// SetSize resizes the client area, subject to the size limits.
func (w *Window) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return werr.New(werr.InvalidValue, "invalid window size %dx%d", width, height)
	}
	if w.monitor != nil {
		// Fullscreen geometry belongs to the monitor.
		return nil
	}
	width, height = w.applySizeLimits(width, height)
	w.resizeTo(width, height)
	return nil
}

// FramebufferSize equals the client area size.
func (w *Window) FramebufferSize() (int, int) { return w.width, w.height }

// FrameExtents reports a synthetic frame with a caption bar for
// decorated windows. Fullscreen and undecorated windows have none.
func (w *Window) FrameExtents() (left, top, right, bottom int, err error) {
	if w.decorated && w.monitor == nil {
		return 1, 10, 1, 1, nil
	}
	return 0, 0, 0, 0, nil
}

// SetSizeLimits constrains the client area size. The backend plays
// window manager, so the new limits apply to the current size
// immediately.
func (w *Window) SetSizeLimits(minW, minH, maxW, maxH int) error {
	if minW != sizeDontCare && maxW != sizeDontCare && maxW < minW {
		return werr.New(werr.InvalidValue, "maximum width %d below minimum %d", maxW, minW)
	}
	if minH != sizeDontCare && maxH != sizeDontCare && maxH < minH {
		return werr.New(werr.InvalidValue, "maximum height %d below minimum %d", maxH, minH)
	}
	w.minWidth, w.minHeight = minW, minH
	w.maxWidth, w.maxHeight = maxW, maxH
	if w.monitor == nil {
		width, height := w.applySizeLimits(w.width, w.height)
		w.resizeTo(width, height)
	}
	return nil
}

// SetAspectRatio constrains the client area aspect and applies it to
// the current size immediately.
func (w *Window) SetAspectRatio(numer, denom int) error {
	if numer != sizeDontCare && numer <= 0 || denom != sizeDontCare && denom <= 0 {
		return werr.New(werr.InvalidValue, "invalid aspect ratio %d:%d", numer, denom)
	}
	w.aspectNumer, w.aspectDenom = numer, denom
	if w.monitor == nil {
		width, height := w.applySizeLimits(w.width, w.height)
		w.resizeTo(width, height)
	}
	return nil
}

// applySizeLimits clamps a candidate size to the configured aspect
// ratio and size limits, the way a window manager would.
func (w *Window) applySizeLimits(width, height int) (int, int) {
	if w.aspectNumer != sizeDontCare && w.aspectDenom != sizeDontCare {
		height = width * w.aspectDenom / w.aspectNumer
	}
	if w.minWidth != sizeDontCare && width < w.minWidth {
		width = w.minWidth
	} else if w.maxWidth != sizeDontCare && width > w.maxWidth {
		width = w.maxWidth
	}
	if w.minHeight != sizeDontCare && height < w.minHeight {
		height = w.minHeight
	} else if w.maxHeight != sizeDontCare && height > w.maxHeight {
		height = w.maxHeight
	}
	return width, height
}

// moveTo updates the position and reports the change.
func (w *Window) moveTo(x, y int) {
	if w.x == x && w.y == y {
		return
	}
	w.x, w.y = x, y
	w.handlers.EmitPos(x, y)
}

// resizeTo updates the size and reports the change. The framebuffer
// tracks the client area exactly.
func (w *Window) resizeTo(width, height int) {
	if w.width == width && w.height == height {
		return
	}
	w.width, w.height = width, height
	w.handlers.EmitSize(width, height)
	w.handlers.EmitFramebufferSize(width, height)
}

// updateIconified records the iconified state and reports the change.
func (w *Window) updateIconified(iconified bool) {
	if w.iconified == iconified {
		return
	}
	w.iconified = iconified
	w.handlers.EmitIconify(iconified)
}

// updateMaximized records the maximized state and reports the change.
func (w *Window) updateMaximized(maximized bool) {
	if w.maximized == maximized {
		return
	}
	w.maximized = maximized
	w.handlers.EmitMaximize(maximized)
}

// Show makes the window visible.
func (w *Window) Show() error {
	w.visible = true
	return nil
}

// Hide makes the window invisible, dropping its focus first.
func (w *Window) Hide() error {
	w.dropFocus()
	w.visible = false
	return nil
}

// Iconify minimizes the window, dropping its focus first.
func (w *Window) Iconify() error {
	w.dropFocus()
	w.updateIconified(true)
	return nil
}

// Restore deiconifies an iconified window and reverts a maximized one.
func (w *Window) Restore() error {
	if w.iconified {
		w.updateIconified(false)
		return nil
	}
	if w.maximized {
		w.updateMaximized(false)
	}
	return nil
}

// Maximize marks the window maximized. Headless windows have no frame
// to grow into, so the geometry stays put.
func (w *Window) Maximize() error {
	w.updateMaximized(true)
	return nil
}

// Focus gives the window input focus, taking it from the previous
// holder. Hidden windows cannot take focus.
func (w *Window) Focus() error {
	if w.b.focused == w || !w.visible {
		return nil
	}
	if prev := w.b.focused; prev != nil {
		w.b.focused = nil
		prev.focused = false
		prev.handlers.EmitFocus(false)
		if prev.monitor != nil && prev.autoIconify {
			prev.Iconify()
		}
	}
	w.b.focused = w
	w.focused = true
	w.updateIconified(false)
	w.handlers.EmitFocus(true)
	return nil
}

// RequestAttention is a no-op: there is no user to get the attention
// of.
func (w *Window) RequestAttention() error { return nil }

// dropFocus takes focus away from the window if it holds it.
func (w *Window) dropFocus() {
	if w.b.focused != w {
		return
	}
	w.b.focused = nil
	w.focused = false
	w.handlers.EmitFocus(false)
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool { return w.visible }

// Iconified reports whether the window is minimized.
func (w *Window) Iconified() bool { return w.iconified }

// Maximized reports whether the window is maximized.
func (w *Window) Maximized() bool { return w.maximized }

// Focused reports whether the window has input focus.
func (w *Window) Focused() bool { return w.focused }

// SetResizable toggles user resizing. Programmatic resizes are always
// allowed, so only the flag changes.
func (w *Window) SetResizable(resizable bool) error {
	w.resizable = resizable
	return nil
}

// SetDecorated toggles the synthetic frame.
func (w *Window) SetDecorated(decorated bool) error {
	w.decorated = decorated
	return nil
}

// SetFloating records the always-on-top preference.
func (w *Window) SetFloating(floating bool) error {
	w.floating = floating
	return nil
}

// SetOpacity sets whole-window opacity.
func (w *Window) SetOpacity(opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return werr.New(werr.InvalidValue, "invalid window opacity %f", opacity)
	}
	w.opacity = opacity
	return nil
}

// Opacity returns the whole-window opacity, 1.0 when unset.
func (w *Window) Opacity() float64 { return w.opacity }

// SetMousePassthrough records the passthrough preference.
func (w *Window) SetMousePassthrough(enabled bool) error {
	w.passthrough = enabled
	return nil
}

// SetCursorMode switches cursor modes. There is no pointer to grab or
// hide, so only the reported mode changes.
func (w *Window) SetCursorMode(mode event.CursorMode) error {
	switch mode {
	case event.CursorNormal, event.CursorHidden, event.CursorDisabled:
	default:
		return werr.New(werr.InvalidValue, "invalid cursor mode %d", int(mode))
	}
	w.cursorMode = mode
	return nil
}

// CursorMode returns the active cursor mode.
func (w *Window) CursorMode() event.CursorMode { return w.cursorMode }

// SetCursorShape selects the cursor shown in normal mode. Every
// standard shape is accepted.
func (w *Window) SetCursorShape(shape event.StandardCursor) error {
	if shape < event.ArrowCursor || shape > event.VResizeCursor {
		return werr.New(werr.CursorUnavailable, "standard cursor shape %d is not available", int(shape))
	}
	w.cursorShape = shape
	return nil
}

// CursorPos returns the virtual cursor position.
func (w *Window) CursorPos() (float64, float64) { return w.cursorX, w.cursorY }

// SetCursorPos moves the virtual cursor.
func (w *Window) SetCursorPos(x, y float64) error {
	w.cursorX, w.cursorY = x, y
	return nil
}

// Monitor returns the monitor the window is fullscreen on, or nil.
func (w *Window) Monitor() *platform.Monitor { return w.monitor }

// SetMonitor switches between fullscreen and windowed mode, restoring
// the windowed geometry on the way out. Geometry changes report
// through the handlers like any other resize.
func (w *Window) SetMonitor(m *platform.Monitor) error {
	if m == nil {
		if w.monitor == nil {
			return nil
		}
		w.monitor = nil
		w.moveTo(w.windowedX, w.windowedY)
		w.resizeTo(w.windowedW, w.windowedH)
		return nil
	}

	if w.monitor == nil {
		w.windowedX, w.windowedY = w.x, w.y
		w.windowedW, w.windowedH = w.width, w.height
	}
	w.monitor = m
	if !w.visible {
		w.Show()
	}
	w.moveTo(m.X, m.Y)
	w.resizeTo(m.Width, m.Height)
	return nil
}

// Destroy tears the window down, context first. Safe to call twice.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.dropFocus()
	if w.context != nil {
		w.context.Destroy()
		w.context = nil
	}
	w.b.removeWindow(w)
}
