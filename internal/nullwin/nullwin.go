// Package nullwin is the headless backend: windows are plain state
// with no display server behind them, rendering contexts are
// pbuffer-backed through the shared EGL manager, and the clipboard
// lives in process memory. It exists for machines without an X server
// and for exercising the backend-neutral surface in tests.
package nullwin

import (
	"log/slog"
	"time"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/egl"
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

// Backend implements the window-system contract without a window
// system. Everything except PostEmptyEvent and PostDeviceEvent must be
// called from the event goroutine.
type Backend struct {
	logger *slog.Logger
	loader *dylib.Loader

	wake    chan struct{}
	devices chan string

	windows    []*Window
	focused    *Window
	monitor    platform.Monitor
	nextHandle uintptr

	clipboard string

	eglManager      *egl.Manager
	monitorsChanged func()
	closed          bool
}

var _ platform.Backend = (*Backend)(nil)

// Options configures a headless backend.
type Options struct {
	Logger *slog.Logger

	// Loader overrides how the EGL and client libraries are opened.
	Loader *dylib.Loader
}

// Connect builds a headless backend with one synthetic monitor.
func Connect(opts Options) (*Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = dylib.System()
	}
	b := &Backend{
		logger:  logger,
		loader:  loader,
		wake:    make(chan struct{}, 1),
		devices: make(chan string, 8),
		monitor: platform.Monitor{
			Name:    "Headless",
			Width:   1920,
			Height:  1080,
			Primary: true,
		},
	}
	logger.Debug("headless backend ready")
	return b, nil
}

// PollEvents returns immediately; nothing generates events here except
// the window mutations themselves, which deliver synchronously.
func (b *Backend) PollEvents() error {
	return b.checkAlive()
}

// WaitEvents blocks until a posted wake or device notification.
func (b *Backend) WaitEvents() error {
	b.waitAny(-1)
	return b.checkAlive()
}

// WaitEventsTimeout is WaitEvents with an upper bound on the block.
func (b *Backend) WaitEventsTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return werr.New(werr.InvalidValue, "invalid wait timeout %v", timeout)
	}
	b.waitAny(timeout)
	return b.checkAlive()
}

// waitAny blocks until a wake, a device notification or the timeout.
// timeout < 0 waits forever.
func (b *Backend) waitAny(timeout time.Duration) {
	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-b.wake:
	case path := <-b.devices:
		b.logger.Debug("input device change", "path", path)
	case <-expired:
	}
}

// PostEmptyEvent wakes the event loop from any goroutine. Multiple
// posts before the loop runs coalesce into one wake.
func (b *Backend) PostEmptyEvent() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// PostDeviceEvent wakes the loop for an input device change.
func (b *Backend) PostDeviceEvent(path string) {
	select {
	case b.devices <- path:
	default:
	}
}

func (b *Backend) checkAlive() error {
	if b.closed {
		return werr.New(werr.PlatformError, "the backend has been terminated")
	}
	return nil
}

// Monitors returns the synthetic monitor.
func (b *Backend) Monitors() ([]platform.Monitor, error) {
	return []platform.Monitor{b.monitor}, nil
}

// PrimaryMonitor returns the synthetic monitor.
func (b *Backend) PrimaryMonitor() (platform.Monitor, error) {
	return b.monitor, nil
}

// SetMonitorsChangedHandler installs the monitor hotplug callback. The
// synthetic monitor never changes, so it never fires.
func (b *Backend) SetMonitorsChangedHandler(fn func()) {
	b.monitorsChanged = fn
}

// Clipboard returns the in-memory clipboard text.
func (b *Backend) Clipboard() (string, error) {
	if b.clipboard == "" {
		return "", werr.New(werr.FormatUnavailable, "the clipboard is empty")
	}
	return b.clipboard, nil
}

// SetClipboard replaces the in-memory clipboard text.
func (b *Backend) SetClipboard(text string) error {
	b.clipboard = text
	return nil
}

// EGL returns the lazily initialized EGL manager. Config selection
// filters on pbuffer support and surfaces are pbuffers sized to the
// window's framebuffer.
func (b *Backend) EGL() (*egl.Manager, error) {
	if b.eglManager == nil {
		b.eglManager = egl.New(egl.Options{
			Loader: b.loader,
			Native: &eglNative{},
			Logger: b.logger,
		})
	}
	if err := b.eglManager.Init(); err != nil {
		return nil, err
	}
	return b.eglManager, nil
}

// CreateWindow builds an in-memory window, attaches a pbuffer-backed
// context when one is requested, and applies the initial visibility
// and placement in the same order as the X11 backend.
func (b *Backend) CreateWindow(cfg platform.WindowConfig, ctxconfig platform.ContextConfig, fb fbconfig.Config, handlers platform.Handlers) (platform.Window, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, werr.New(werr.InvalidValue, "invalid window size %dx%d", cfg.Width, cfg.Height)
	}

	w := newWindow(b, cfg, handlers)

	if ctxconfig.API != platform.NoAPI {
		mgr, err := b.EGL()
		if err != nil {
			w.Destroy()
			return nil, err
		}
		ctx, err := mgr.CreateContext(ctxconfig, fb, w)
		if err != nil {
			w.Destroy()
			return nil, err
		}
		w.context = ctx
	}

	if cfg.Monitor != nil {
		if err := w.SetMonitor(cfg.Monitor); err != nil {
			w.Destroy()
			return nil, err
		}
		if cfg.CenterCursor {
			w.SetCursorPos(float64(w.width)/2, float64(w.height)/2)
		}
	} else if cfg.Visible {
		w.Show()
		if cfg.Focused {
			w.Focus()
		}
	}
	return w, nil
}

// Terminate destroys the remaining windows, then the EGL display, then
// unloads the libraries. The same order as the X11 backend, minus the
// connection in the middle.
func (b *Backend) Terminate() {
	if b.closed {
		return
	}
	for _, w := range append([]*Window(nil), b.windows...) {
		w.Destroy()
	}
	if b.eglManager != nil {
		b.eglManager.TerminateDisplay()
		b.eglManager.Unload()
		b.eglManager = nil
	}
	b.closed = true
	b.logger.Debug("headless backend terminated")
}

func (b *Backend) removeWindow(w *Window) {
	for i, other := range b.windows {
		if other == w {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			break
		}
	}
	if b.focused == w {
		b.focused = nil
	}
}

// eglNative describes the missing window system to the EGL manager.
type eglNative struct{}

// EGLPlatform declines a platform display, sending the manager to the
// legacy default display call.
func (n *eglNative) EGLPlatform() (uint32, uintptr, []int32, bool) { return 0, 0, nil, false }

// HasNativeVisuals reports that configs carry no native visual IDs.
func (n *eglNative) HasNativeVisuals() bool { return false }

// VisualTransparent is never consulted without native visuals.
func (n *eglNative) VisualTransparent(visual uint32) bool { return false }

// WantsWindowSurfaces selects pbuffers over window surfaces.
func (n *eglNative) WantsWindowSurfaces() bool { return false }

// ConnectionAlive reports that no display connection exists, so client
// libraries unload immediately instead of being deferred.
func (n *eglNative) ConnectionAlive() bool { return false }
