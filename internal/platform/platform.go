// Package platform defines the backend-neutral contract between the
// public glwin surface and the window-system backends. Everything an
// application can observe or mutate flows through these interfaces, so
// the X11 backend, the headless backend and test fakes are
// interchangeable.
package platform

import (
	"time"

	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/fbconfig"
)

// ClientAPI selects the rendering API a window's context speaks.
type ClientAPI int

const (
	// NoAPI creates a bare window without a rendering context.
	NoAPI ClientAPI = iota
	// OpenGL requests a desktop OpenGL context.
	OpenGL
	// OpenGLES requests an OpenGL ES context.
	OpenGLES
)

// Profile selects the desktop OpenGL profile.
type Profile int

const (
	AnyProfile Profile = iota
	CoreProfile
	CompatProfile
)

// Robustness selects the context robustness strategy.
type Robustness int

const (
	NoRobustness Robustness = iota
	NoResetNotification
	LoseContextOnReset
)

// ReleaseBehavior selects the context flush behavior on release.
type ReleaseBehavior int

const (
	AnyReleaseBehavior ReleaseBehavior = iota
	ReleaseBehaviorFlush
	ReleaseBehaviorNone
)

// ContextConfig declares the rendering context a window wants.
type ContextConfig struct {
	API   ClientAPI
	Major int
	Minor int

	Profile    Profile
	Forward    bool
	Debug      bool
	NoError    bool
	Robustness Robustness
	Release    ReleaseBehavior

	// Share is the native handle of a context to share objects with,
	// or zero.
	Share uintptr
}

// WindowConfig declares a window creation request.
type WindowConfig struct {
	Title  string
	Width  int
	Height int

	Visible     bool
	Focused     bool
	Resizable   bool
	Decorated   bool
	Floating    bool
	Maximized   bool
	AutoIconify bool

	// ClassName/InstanceName override the window class resolution
	// order; empty values fall back to the environment and title.
	ClassName    string
	InstanceName string

	// Monitor attaches the window to a monitor in fullscreen mode.
	Monitor *Monitor

	// CenterCursor moves the pointer to the window center after a
	// fullscreen placement.
	CenterCursor bool
}

// Monitor describes a connected display output.
type Monitor struct {
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	Primary bool

	// Output is the backend-internal identifier for the monitor.
	Output uint32
}

// Handlers is the uniform event sink a backend delivers into. Any field
// may be nil; use the Emit helpers to deliver events safely.
type Handlers struct {
	Key             func(key event.Key, scancode int, action event.Action, mods event.Mods)
	Char            func(r rune, mods event.Mods, plain bool)
	MouseButton     func(button event.Button, action event.Action, mods event.Mods)
	Scroll          func(dx, dy float64)
	CursorPos       func(x, y float64)
	CursorEnter     func(entered bool)
	Pos             func(x, y int)
	Size            func(width, height int)
	FramebufferSize func(width, height int)
	CloseRequest    func()
	Focus           func(focused bool)
	Iconify         func(iconified bool)
	Maximize        func(maximized bool)
	Damage          func()
	Drop            func(paths []string)
}

// EmitKey delivers a key event if a handler is installed.
func (h *Handlers) EmitKey(key event.Key, scancode int, action event.Action, mods event.Mods) {
	if h.Key != nil {
		h.Key(key, scancode, action, mods)
	}
}

// EmitChar delivers a character event if a handler is installed.
func (h *Handlers) EmitChar(r rune, mods event.Mods, plain bool) {
	if h.Char != nil {
		h.Char(r, mods, plain)
	}
}

// EmitMouseButton delivers a button event if a handler is installed.
func (h *Handlers) EmitMouseButton(button event.Button, action event.Action, mods event.Mods) {
	if h.MouseButton != nil {
		h.MouseButton(button, action, mods)
	}
}

// EmitScroll delivers a scroll event if a handler is installed.
func (h *Handlers) EmitScroll(dx, dy float64) {
	if h.Scroll != nil {
		h.Scroll(dx, dy)
	}
}

// EmitCursorPos delivers a cursor position if a handler is installed.
func (h *Handlers) EmitCursorPos(x, y float64) {
	if h.CursorPos != nil {
		h.CursorPos(x, y)
	}
}

// EmitCursorEnter delivers an enter/leave change if a handler is installed.
func (h *Handlers) EmitCursorEnter(entered bool) {
	if h.CursorEnter != nil {
		h.CursorEnter(entered)
	}
}

// EmitPos delivers a window move if a handler is installed.
func (h *Handlers) EmitPos(x, y int) {
	if h.Pos != nil {
		h.Pos(x, y)
	}
}

// EmitSize delivers a window resize if a handler is installed.
func (h *Handlers) EmitSize(width, height int) {
	if h.Size != nil {
		h.Size(width, height)
	}
}

// EmitFramebufferSize delivers a framebuffer resize if a handler is installed.
func (h *Handlers) EmitFramebufferSize(width, height int) {
	if h.FramebufferSize != nil {
		h.FramebufferSize(width, height)
	}
}

// EmitCloseRequest delivers a close request if a handler is installed.
func (h *Handlers) EmitCloseRequest() {
	if h.CloseRequest != nil {
		h.CloseRequest()
	}
}

// EmitFocus delivers a focus change if a handler is installed.
func (h *Handlers) EmitFocus(focused bool) {
	if h.Focus != nil {
		h.Focus(focused)
	}
}

// EmitIconify delivers an iconify change if a handler is installed.
func (h *Handlers) EmitIconify(iconified bool) {
	if h.Iconify != nil {
		h.Iconify(iconified)
	}
}

// EmitMaximize delivers a maximize change if a handler is installed.
func (h *Handlers) EmitMaximize(maximized bool) {
	if h.Maximize != nil {
		h.Maximize(maximized)
	}
}

// EmitDamage delivers a damage notification if a handler is installed.
func (h *Handlers) EmitDamage() {
	if h.Damage != nil {
		h.Damage()
	}
}

// EmitDrop delivers dropped paths if a handler is installed.
func (h *Handlers) EmitDrop(paths []string) {
	if h.Drop != nil {
		h.Drop(paths)
	}
}

// Context is the per-window rendering context vtable.
type Context interface {
	MakeCurrent() error
	DetachCurrent() error
	SwapBuffers() error
	SwapInterval(interval int) error
	ExtensionSupported(name string) bool
	ProcAddress(name string) uintptr
	NativeHandle() uintptr
	Destroy()
}

// Window abstracts one native top-level window.
type Window interface {
	Handle() uintptr
	SetTitle(title string) error
	Pos() (x, y int)
	SetPos(x, y int) error
	Size() (width, height int)
	SetSize(width, height int) error
	FramebufferSize() (width, height int)
	FrameExtents() (left, top, right, bottom int, err error)
	SetSizeLimits(minW, minH, maxW, maxH int) error
	SetAspectRatio(numer, denom int) error

	Show() error
	Hide() error
	Iconify() error
	Restore() error
	Maximize() error
	Focus() error
	RequestAttention() error

	Visible() bool
	Iconified() bool
	Maximized() bool
	Focused() bool

	SetResizable(resizable bool) error
	SetDecorated(decorated bool) error
	SetFloating(floating bool) error
	SetOpacity(opacity float64) error
	Opacity() float64
	SetMousePassthrough(enabled bool) error

	SetCursorMode(mode event.CursorMode) error
	CursorMode() event.CursorMode
	SetCursorShape(shape event.StandardCursor) error
	CursorPos() (x, y float64)
	SetCursorPos(x, y float64) error

	Monitor() *Monitor
	SetMonitor(m *Monitor) error

	Context() Context
	Destroy()
}

// Backend abstracts window-system operations across backends.
type Backend interface {
	CreateWindow(cfg WindowConfig, ctx ContextConfig, fb fbconfig.Config, h Handlers) (Window, error)

	PollEvents() error
	WaitEvents() error
	WaitEventsTimeout(timeout time.Duration) error
	PostEmptyEvent()
	// PostDeviceEvent wakes the event loop for an input device node
	// change. Safe to call from any goroutine.
	PostDeviceEvent(path string)

	Monitors() ([]Monitor, error)
	PrimaryMonitor() (Monitor, error)
	// SetMonitorsChangedHandler installs a callback fired when the
	// monitor configuration changes. Pass nil to remove it.
	SetMonitorsChangedHandler(fn func())

	Clipboard() (string, error)
	SetClipboard(text string) error

	Terminate()
}
