// Package glwin creates native windows with OpenGL and OpenGL ES
// rendering contexts and delivers input to typed callbacks. Windows
// are backed by an X11 connection speaking the wire protocol directly,
// with contexts created through EGL; a headless backend renders into
// pbuffers for machines without a display server.
//
// The library is not goroutine safe: initialize a Platform, create
// windows and run the event loop all on one goroutine. PostEmptyEvent
// and PostDeviceEvent are the only calls safe from anywhere.
package glwin

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/hotplug"
	"github.com/1broseidon/glwin/internal/nullwin"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
	"github.com/1broseidon/glwin/internal/x11"
)

// Backend selects the window system implementation.
type Backend int

const (
	// AnyBackend picks the native window system.
	AnyBackend Backend = iota
	// X11Backend connects to an X display.
	X11Backend
	// HeadlessBackend runs without a display server. Never picked
	// automatically; rendering lands in pbuffers nobody sees.
	HeadlessBackend
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case AnyBackend:
		return "any"
	case X11Backend:
		return "x11"
	case HeadlessBackend:
		return "headless"
	}
	return "unknown"
}

// Config configures Init. The zero value connects to the native window
// system with silent logging.
type Config struct {
	// Backend selects the window system; AnyBackend uses X11.
	Backend Backend
	// Display selects the X display; empty uses $DISPLAY.
	Display string
	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
	// WatchDevices wakes the event loop whenever an input device node
	// under /dev/input appears, changes or disappears.
	WatchDevices bool
}

// Platform is an initialized windowing backend. Apart from
// PostEmptyEvent, its methods must run on the event goroutine.
type Platform struct {
	backend platform.Backend
	chosen  Backend
	x       *x11.Conn
	logger  *slog.Logger
	loader  *dylib.Loader
	watcher *hotplug.Watcher
	vk      vulkan

	monitorsCB func()
	terminated bool
}

// Init connects the selected backend and returns the platform handle.
func Init(cfg Config) (*Platform, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Platform{logger: logger, loader: currentLoader()}

	switch cfg.Backend {
	case AnyBackend, X11Backend:
		conn, err := x11.Connect(x11.Options{
			Display: cfg.Display,
			Logger:  logger,
			Loader:  p.loader,
		})
		if err != nil {
			return nil, reportError(err)
		}
		p.backend = conn
		p.x = conn
		p.chosen = X11Backend
	case HeadlessBackend:
		b, err := nullwin.Connect(nullwin.Options{Logger: logger, Loader: p.loader})
		if err != nil {
			return nil, reportError(err)
		}
		p.backend = b
		p.chosen = HeadlessBackend
	default:
		return nil, reportError(werr.New(werr.InvalidValue, "invalid backend %d", int(cfg.Backend)))
	}

	if cfg.WatchDevices {
		w, err := hotplug.Watch(hotplug.Options{
			Notify: p.backend.PostDeviceEvent,
			Logger: logger,
		})
		if err != nil {
			// Not fatal: a missing /dev/input only costs wakeups.
			logger.Debug("device watch unavailable", "error", err)
		} else {
			p.watcher = w
		}
	}
	return p, nil
}

// Terminate destroys every remaining window, releases the backend and
// unloads the libraries it loaded. The platform must not be used
// afterwards. Safe to call more than once.
func (p *Platform) Terminate() {
	if p.terminated {
		return
	}
	p.terminated = true
	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}
	p.backend.Terminate()
	p.vk.unload(p.loader)
}

// Backend reports which backend Init selected.
func (p *Platform) Backend() Backend {
	return p.chosen
}

// PollEvents processes the events already pending and returns.
func (p *Platform) PollEvents() error {
	return reportError(p.backend.PollEvents())
}

// WaitEvents blocks until at least one event arrives, then processes
// the whole pending batch.
func (p *Platform) WaitEvents() error {
	return reportError(p.backend.WaitEvents())
}

// WaitEventsTimeout is WaitEvents with an upper bound on the wait.
func (p *Platform) WaitEventsTimeout(timeout time.Duration) error {
	return reportError(p.backend.WaitEventsTimeout(timeout))
}

// PostEmptyEvent wakes the event loop. Safe from any goroutine.
func (p *Platform) PostEmptyEvent() {
	p.backend.PostEmptyEvent()
}

// Monitors returns the connected monitors, primary first.
func (p *Platform) Monitors() ([]Monitor, error) {
	list, err := p.backend.Monitors()
	if err != nil {
		return nil, reportError(err)
	}
	monitors := make([]Monitor, len(list))
	for i, m := range list {
		monitors[i] = monitorFromPlatform(m)
	}
	return monitors, nil
}

// PrimaryMonitor returns the primary monitor.
func (p *Platform) PrimaryMonitor() (Monitor, error) {
	m, err := p.backend.PrimaryMonitor()
	if err != nil {
		return Monitor{}, reportError(err)
	}
	return monitorFromPlatform(m), nil
}

// SetMonitorsChangedCallback installs fn to run when monitors are
// connected, disconnected or reconfigured, returning the previous
// callback. Pass nil to remove it.
func (p *Platform) SetMonitorsChangedCallback(fn func()) func() {
	prev := p.monitorsCB
	p.monitorsCB = fn
	p.backend.SetMonitorsChangedHandler(fn)
	return prev
}

// SetClipboardString places text on the clipboard.
func (p *Platform) SetClipboardString(text string) error {
	return reportError(p.backend.SetClipboard(text))
}

// ClipboardString returns the clipboard text.
func (p *Platform) ClipboardString() (string, error) {
	text, err := p.backend.Clipboard()
	if err != nil {
		return "", reportError(err)
	}
	return text, nil
}

// SetPrimaryString places text on the PRIMARY selection. X11 only.
func (p *Platform) SetPrimaryString(text string) error {
	if p.x == nil {
		return reportError(errNotX11("the PRIMARY selection"))
	}
	return reportError(p.x.SetPrimary(text))
}

// PrimaryString returns the PRIMARY selection text. X11 only.
func (p *Platform) PrimaryString() (string, error) {
	if p.x == nil {
		return "", reportError(errNotX11("the PRIMARY selection"))
	}
	text, err := p.x.Primary()
	if err != nil {
		return "", reportError(err)
	}
	return text, nil
}

// XCBConnection returns the xcb_connection_t pointer for foreign API
// interop. X11 only; zero when libxcb could not be loaded.
func (p *Platform) XCBConnection() (uintptr, error) {
	if p.x == nil {
		return 0, reportError(errNotX11("the XCB connection"))
	}
	return p.x.XCBConnection(), nil
}

// X11Extensions reports which optional X extensions the connection
// negotiated. X11 only.
func (p *Platform) X11Extensions() (randr, render, shape bool, err error) {
	if p.x == nil {
		return false, false, false, reportError(errNotX11("extension capabilities"))
	}
	randr, render, shape = p.x.Extensions()
	return randr, render, shape, nil
}

func errNotX11(what string) error {
	return werr.New(werr.PlatformUnavailable, "%s requires the X11 backend", what)
}

// Module is an opaque handle to a shared library opened by a custom
// module loader.
type Module uintptr

var (
	loaderMu     sync.Mutex
	moduleLoader = dylib.System()
)

// SetModuleLoader replaces how shared libraries are opened, closed and
// resolved by platforms initialized afterwards. All three functions
// must be given together; passing all nil restores the system dynamic
// linker. A partial triplet is rejected and leaves the previous loader
// installed.
func SetModuleLoader(open func(name string) (Module, error), close func(m Module), resolve func(m Module, symbol string) (uintptr, error)) error {
	var (
		o dylib.OpenFunc
		c dylib.CloseFunc
		r dylib.ResolveFunc
	)
	if open != nil {
		o = func(name string) (dylib.Module, error) {
			m, err := open(name)
			return dylib.Module(m), err
		}
	}
	if close != nil {
		c = func(m dylib.Module) { close(Module(m)) }
	}
	if resolve != nil {
		r = func(m dylib.Module, symbol string) (uintptr, error) {
			return resolve(Module(m), symbol)
		}
	}
	loader, err := dylib.Custom(o, c, r)
	if err != nil {
		return reportError(err)
	}
	loaderMu.Lock()
	moduleLoader = loader
	loaderMu.Unlock()
	return nil
}

func currentLoader() *dylib.Loader {
	loaderMu.Lock()
	defer loaderMu.Unlock()
	return moduleLoader
}
