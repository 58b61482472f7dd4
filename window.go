package glwin

import (
	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
	"github.com/1broseidon/glwin/internal/x11"
)

type (
	// KeyCallback receives physical key transitions.
	KeyCallback func(w *Window, key event.Key, scancode int, action event.Action, mods event.Mods)
	// CharCallback receives translated text input, one code point at a
	// time. Control and alt chords are filtered out.
	CharCallback func(w *Window, r rune)
	// CharModsCallback receives every translated code point together
	// with the modifiers held at the time, chords included.
	CharModsCallback func(w *Window, r rune, mods event.Mods)
	// MouseButtonCallback receives button transitions.
	MouseButtonCallback func(w *Window, button event.Button, action event.Action, mods event.Mods)
	// ScrollCallback receives scroll offsets.
	ScrollCallback func(w *Window, dx, dy float64)
	// CursorPosCallback receives the cursor position in window
	// coordinates, or deltas accumulated virtually while the cursor is
	// disabled.
	CursorPosCallback func(w *Window, x, y float64)
	// CursorEnterCallback reports the cursor crossing the window edge.
	CursorEnterCallback func(w *Window, entered bool)
	// PosCallback receives the window position.
	PosCallback func(w *Window, x, y int)
	// SizeCallback receives a window or framebuffer size.
	SizeCallback func(w *Window, width, height int)
	// CloseCallback fires after the user requests the window close.
	CloseCallback func(w *Window)
	// FocusCallback reports input focus changes.
	FocusCallback func(w *Window, focused bool)
	// IconifyCallback reports iconification changes.
	IconifyCallback func(w *Window, iconified bool)
	// MaximizeCallback reports maximization changes.
	MaximizeCallback func(w *Window, maximized bool)
	// RefreshCallback fires when the window contents are damaged and
	// need redrawing.
	RefreshCallback func(w *Window)
	// DropCallback receives paths dropped onto the window.
	DropCallback func(w *Window, paths []string)
)

// Window is one native window and, unless created with NoAPI, its
// rendering context. Like the Platform it belongs to, a window must be
// used from the event goroutine.
type Window struct {
	p *Platform
	w platform.Window
	x *x11.Window

	shouldClose bool

	keyCB             KeyCallback
	charCB            CharCallback
	charModsCB        CharModsCallback
	mouseButtonCB     MouseButtonCallback
	scrollCB          ScrollCallback
	cursorPosCB       CursorPosCallback
	cursorEnterCB     CursorEnterCallback
	posCB             PosCallback
	sizeCB            SizeCallback
	framebufferSizeCB SizeCallback
	closeCB           CloseCallback
	focusCB           FocusCallback
	iconifyCB         IconifyCallback
	maximizeCB        MaximizeCallback
	refreshCB         RefreshCallback
	dropCB            DropCallback
}

// CreateWindow creates a window and, unless NoAPI was requested, a
// rendering context for it.
func (p *Platform) CreateWindow(cfg WindowConfig) (*Window, error) {
	ctxconfig, err := cfg.Context.toPlatform()
	if err != nil {
		return nil, reportError(err)
	}

	w := &Window{p: p}
	pw, err := p.backend.CreateWindow(cfg.toPlatform(), ctxconfig, cfg.Framebuffer.toInternal(), w.handlers())
	if err != nil {
		return nil, reportError(err)
	}
	w.w = pw
	if xw, ok := pw.(*x11.Window); ok {
		w.x = xw
	}
	return w, nil
}

// handlers adapts the backend's uniform event sink to the window's
// callbacks. The backend holds these closures for the window's
// lifetime; replacing a callback only swaps the field they read.
func (w *Window) handlers() platform.Handlers {
	return platform.Handlers{
		Key: func(key event.Key, scancode int, action event.Action, mods event.Mods) {
			if w.keyCB != nil {
				w.keyCB(w, key, scancode, action, mods)
			}
		},
		Char: func(r rune, mods event.Mods, plain bool) {
			if plain && w.charCB != nil {
				w.charCB(w, r)
			}
			if w.charModsCB != nil {
				w.charModsCB(w, r, mods)
			}
		},
		MouseButton: func(button event.Button, action event.Action, mods event.Mods) {
			if w.mouseButtonCB != nil {
				w.mouseButtonCB(w, button, action, mods)
			}
		},
		Scroll: func(dx, dy float64) {
			if w.scrollCB != nil {
				w.scrollCB(w, dx, dy)
			}
		},
		CursorPos: func(x, y float64) {
			if w.cursorPosCB != nil {
				w.cursorPosCB(w, x, y)
			}
		},
		CursorEnter: func(entered bool) {
			if w.cursorEnterCB != nil {
				w.cursorEnterCB(w, entered)
			}
		},
		Pos: func(x, y int) {
			if w.posCB != nil {
				w.posCB(w, x, y)
			}
		},
		Size: func(width, height int) {
			if w.sizeCB != nil {
				w.sizeCB(w, width, height)
			}
		},
		FramebufferSize: func(width, height int) {
			if w.framebufferSizeCB != nil {
				w.framebufferSizeCB(w, width, height)
			}
		},
		CloseRequest: func() {
			w.shouldClose = true
			if w.closeCB != nil {
				w.closeCB(w)
			}
		},
		Focus: func(focused bool) {
			if w.focusCB != nil {
				w.focusCB(w, focused)
			}
		},
		Iconify: func(iconified bool) {
			if w.iconifyCB != nil {
				w.iconifyCB(w, iconified)
			}
		},
		Maximize: func(maximized bool) {
			if w.maximizeCB != nil {
				w.maximizeCB(w, maximized)
			}
		},
		Damage: func() {
			if w.refreshCB != nil {
				w.refreshCB(w)
			}
		},
		Drop: func(paths []string) {
			if w.dropCB != nil {
				w.dropCB(w, paths)
			}
		},
	}
}

// SetKeyCallback installs fn for key events, returning the previous
// callback.
func (w *Window) SetKeyCallback(fn KeyCallback) KeyCallback {
	prev := w.keyCB
	w.keyCB = fn
	return prev
}

// SetCharCallback installs fn for plain text input, returning the
// previous callback.
func (w *Window) SetCharCallback(fn CharCallback) CharCallback {
	prev := w.charCB
	w.charCB = fn
	return prev
}

// SetCharModsCallback installs fn for all text input including chords,
// returning the previous callback.
func (w *Window) SetCharModsCallback(fn CharModsCallback) CharModsCallback {
	prev := w.charModsCB
	w.charModsCB = fn
	return prev
}

// SetMouseButtonCallback installs fn for button events, returning the
// previous callback.
func (w *Window) SetMouseButtonCallback(fn MouseButtonCallback) MouseButtonCallback {
	prev := w.mouseButtonCB
	w.mouseButtonCB = fn
	return prev
}

// SetScrollCallback installs fn for scroll events, returning the
// previous callback.
func (w *Window) SetScrollCallback(fn ScrollCallback) ScrollCallback {
	prev := w.scrollCB
	w.scrollCB = fn
	return prev
}

// SetCursorPosCallback installs fn for cursor motion, returning the
// previous callback.
func (w *Window) SetCursorPosCallback(fn CursorPosCallback) CursorPosCallback {
	prev := w.cursorPosCB
	w.cursorPosCB = fn
	return prev
}

// SetCursorEnterCallback installs fn for enter and leave events,
// returning the previous callback.
func (w *Window) SetCursorEnterCallback(fn CursorEnterCallback) CursorEnterCallback {
	prev := w.cursorEnterCB
	w.cursorEnterCB = fn
	return prev
}

// SetPosCallback installs fn for window moves, returning the previous
// callback.
func (w *Window) SetPosCallback(fn PosCallback) PosCallback {
	prev := w.posCB
	w.posCB = fn
	return prev
}

// SetSizeCallback installs fn for window resizes, returning the
// previous callback.
func (w *Window) SetSizeCallback(fn SizeCallback) SizeCallback {
	prev := w.sizeCB
	w.sizeCB = fn
	return prev
}

// SetFramebufferSizeCallback installs fn for framebuffer resizes,
// returning the previous callback.
func (w *Window) SetFramebufferSizeCallback(fn SizeCallback) SizeCallback {
	prev := w.framebufferSizeCB
	w.framebufferSizeCB = fn
	return prev
}

// SetCloseCallback installs fn for close requests, returning the
// previous callback.
func (w *Window) SetCloseCallback(fn CloseCallback) CloseCallback {
	prev := w.closeCB
	w.closeCB = fn
	return prev
}

// SetFocusCallback installs fn for focus changes, returning the
// previous callback.
func (w *Window) SetFocusCallback(fn FocusCallback) FocusCallback {
	prev := w.focusCB
	w.focusCB = fn
	return prev
}

// SetIconifyCallback installs fn for iconification changes, returning
// the previous callback.
func (w *Window) SetIconifyCallback(fn IconifyCallback) IconifyCallback {
	prev := w.iconifyCB
	w.iconifyCB = fn
	return prev
}

// SetMaximizeCallback installs fn for maximization changes, returning
// the previous callback.
func (w *Window) SetMaximizeCallback(fn MaximizeCallback) MaximizeCallback {
	prev := w.maximizeCB
	w.maximizeCB = fn
	return prev
}

// SetRefreshCallback installs fn for damage events, returning the
// previous callback.
func (w *Window) SetRefreshCallback(fn RefreshCallback) RefreshCallback {
	prev := w.refreshCB
	w.refreshCB = fn
	return prev
}

// SetDropCallback installs fn for dropped paths, returning the
// previous callback.
func (w *Window) SetDropCallback(fn DropCallback) DropCallback {
	prev := w.dropCB
	w.dropCB = fn
	return prev
}

// ShouldClose reports whether the user has requested the window close.
func (w *Window) ShouldClose() bool { return w.shouldClose }

// SetShouldClose overrides the close request flag.
func (w *Window) SetShouldClose(value bool) { w.shouldClose = value }

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) error {
	return reportError(w.w.SetTitle(title))
}

// Pos returns the position of the window's client area.
func (w *Window) Pos() (x, y int) { return w.w.Pos() }

// SetPos moves the window. Ignored while fullscreen.
func (w *Window) SetPos(x, y int) error {
	return reportError(w.w.SetPos(x, y))
}

// Size returns the client area size.
func (w *Window) Size() (width, height int) { return w.w.Size() }

// SetSize resizes the client area. Ignored while fullscreen.
func (w *Window) SetSize(width, height int) error {
	return reportError(w.w.SetSize(width, height))
}

// FramebufferSize returns the framebuffer size in pixels.
func (w *Window) FramebufferSize() (width, height int) {
	return w.w.FramebufferSize()
}

// FrameExtents returns the size of each edge of the window manager
// decoration around the client area.
func (w *Window) FrameExtents() (left, top, right, bottom int, err error) {
	left, top, right, bottom, err = w.w.FrameExtents()
	return left, top, right, bottom, reportError(err)
}

// SetSizeLimits constrains the client area size; DontCare lifts a
// bound.
func (w *Window) SetSizeLimits(minW, minH, maxW, maxH int) error {
	return reportError(w.w.SetSizeLimits(minW, minH, maxW, maxH))
}

// SetAspectRatio constrains the client area proportions; DontCare for
// both lifts the constraint.
func (w *Window) SetAspectRatio(numer, denom int) error {
	return reportError(w.w.SetAspectRatio(numer, denom))
}

// Show makes the window visible.
func (w *Window) Show() error { return reportError(w.w.Show()) }

// Hide makes the window invisible.
func (w *Window) Hide() error { return reportError(w.w.Hide()) }

// Iconify minimizes the window.
func (w *Window) Iconify() error { return reportError(w.w.Iconify()) }

// Restore returns the window from iconified or maximized state.
func (w *Window) Restore() error { return reportError(w.w.Restore()) }

// Maximize maximizes the window.
func (w *Window) Maximize() error { return reportError(w.w.Maximize()) }

// Focus gives the window input focus.
func (w *Window) Focus() error { return reportError(w.w.Focus()) }

// RequestAttention asks for the user's attention without stealing
// focus.
func (w *Window) RequestAttention() error {
	return reportError(w.w.RequestAttention())
}

// Visible reports whether the window is visible.
func (w *Window) Visible() bool { return w.w.Visible() }

// Iconified reports whether the window is iconified.
func (w *Window) Iconified() bool { return w.w.Iconified() }

// Maximized reports whether the window is maximized.
func (w *Window) Maximized() bool { return w.w.Maximized() }

// Focused reports whether the window has input focus.
func (w *Window) Focused() bool { return w.w.Focused() }

// SetResizable toggles user resizing of the windowed mode window.
func (w *Window) SetResizable(resizable bool) error {
	return reportError(w.w.SetResizable(resizable))
}

// SetDecorated toggles the window manager decorations.
func (w *Window) SetDecorated(decorated bool) error {
	return reportError(w.w.SetDecorated(decorated))
}

// SetFloating toggles keeping the window above regular windows.
func (w *Window) SetFloating(floating bool) error {
	return reportError(w.w.SetFloating(floating))
}

// SetOpacity sets the whole-window opacity between 0 and 1.
func (w *Window) SetOpacity(opacity float64) error {
	return reportError(w.w.SetOpacity(opacity))
}

// Opacity returns the whole-window opacity.
func (w *Window) Opacity() float64 { return w.w.Opacity() }

// SetMousePassthrough makes the window transparent to mouse input.
func (w *Window) SetMousePassthrough(enabled bool) error {
	return reportError(w.w.SetMousePassthrough(enabled))
}

// SetCursorMode selects how the cursor behaves over the window.
func (w *Window) SetCursorMode(mode event.CursorMode) error {
	return reportError(w.w.SetCursorMode(mode))
}

// CursorMode returns the current cursor mode.
func (w *Window) CursorMode() event.CursorMode { return w.w.CursorMode() }

// SetCursorShape selects a standard cursor image for the window.
func (w *Window) SetCursorShape(shape event.StandardCursor) error {
	return reportError(w.w.SetCursorShape(shape))
}

// CursorPos returns the cursor position in client coordinates.
func (w *Window) CursorPos() (x, y float64) { return w.w.CursorPos() }

// SetCursorPos warps the cursor to client coordinates.
func (w *Window) SetCursorPos(x, y float64) error {
	return reportError(w.w.SetCursorPos(x, y))
}

// Monitor returns the monitor the window is fullscreen on, or nil in
// windowed mode.
func (w *Window) Monitor() *Monitor {
	m := w.w.Monitor()
	if m == nil {
		return nil
	}
	public := monitorFromPlatform(*m)
	return &public
}

// SetMonitor moves the window to fullscreen on m, or back to windowed
// mode when m is nil.
func (w *Window) SetMonitor(m *Monitor) error {
	return reportError(w.w.SetMonitor(m.toPlatform()))
}

// Destroy closes the window and destroys its context. Safe to call
// more than once.
func (w *Window) Destroy() { w.w.Destroy() }

// NativeHandle returns the backend's window handle: the XID on X11, a
// synthetic id on the headless backend.
func (w *Window) NativeHandle() uintptr { return w.w.Handle() }

// X11Window returns the window's XID. X11 only.
func (w *Window) X11Window() (uint32, error) {
	if w.x == nil {
		return 0, reportError(errNotX11("the X11 window id"))
	}
	return w.x.ID(), nil
}

// context returns the window's rendering context or a no-context
// error.
func (w *Window) context() (platform.Context, error) {
	ctx := w.w.Context()
	if ctx == nil {
		return nil, werr.New(werr.NoWindowContext, "the window was created without a rendering context")
	}
	return ctx, nil
}

// MakeContextCurrent binds the window's context on the calling
// goroutine, pinning the goroutine to its OS thread while bound.
func (w *Window) MakeContextCurrent() error {
	ctx, err := w.context()
	if err != nil {
		return reportError(err)
	}
	return reportError(ctx.MakeCurrent())
}

// DetachCurrentContext unbinds the window's context and releases the
// OS thread pin.
func (w *Window) DetachCurrentContext() error {
	ctx, err := w.context()
	if err != nil {
		return reportError(err)
	}
	return reportError(ctx.DetachCurrent())
}

// SwapBuffers presents the back buffer. The context must be current on
// the calling goroutine.
func (w *Window) SwapBuffers() error {
	ctx, err := w.context()
	if err != nil {
		return reportError(err)
	}
	return reportError(ctx.SwapBuffers())
}

// SwapInterval sets how many vertical blanks SwapBuffers waits for.
// The context must be current on the calling goroutine.
func (w *Window) SwapInterval(interval int) error {
	ctx, err := w.context()
	if err != nil {
		return reportError(err)
	}
	return reportError(ctx.SwapInterval(interval))
}

// ExtensionSupported reports whether the context's display supports
// the named client API extension.
func (w *Window) ExtensionSupported(name string) (bool, error) {
	ctx, err := w.context()
	if err != nil {
		return false, reportError(err)
	}
	return ctx.ExtensionSupported(name), nil
}

// GetProcAddress resolves a client API entry point through the
// window's context, falling back to the client library itself.
func (w *Window) GetProcAddress(name string) (uintptr, error) {
	ctx, err := w.context()
	if err != nil {
		return 0, reportError(err)
	}
	return ctx.ProcAddress(name), nil
}
