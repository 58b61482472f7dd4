// Package x11 is the X11 window backend: native windows, event
// translation into backend-neutral callbacks, monitor enumeration over
// RandR, selection transfer and drag-and-drop. Rendering contexts come
// from the EGL manager, which the connection feeds with an XCB handle
// for platform display acquisition.
package x11

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/egl"
	"github.com/1broseidon/glwin/internal/werr"
)

// Conn manages the X11 connection, core resources and the event loop
// state shared by every window. All window operations and event
// dispatch run on the goroutine that owns the loop; only the pump
// goroutine and PostEmptyEvent touch the channels from outside.
type Conn struct {
	x       *xgb.Conn
	xu      *xgbutil.XUtil
	logger  *slog.Logger
	loader  *dylib.Loader
	display string

	screen *xproto.ScreenInfo
	root   xproto.Window
	atoms  Atoms

	// helper is a hidden 1x1 window owning selections and receiving
	// INCR property notifications.
	helper xproto.Window

	hasRandR  bool
	hasRender bool
	hasShape  bool

	alphaVisuals map[xproto.Visualid]bool
	visualDepths map[xproto.Visualid]byte

	events  chan xgb.Event
	wake    chan struct{}
	devices chan string
	dead    chan struct{}
	pending []xgb.Event

	windows map[xproto.Window]*Window
	keymap  keymap

	cursors      map[uint16]xproto.Cursor
	hiddenCursor xproto.Cursor

	eglManager *egl.Manager
	interop    *xcbInterop

	clipboardString string
	primaryString   string

	dnd  dndSession
	idle saver

	disabledWindow *Window

	monitorsChanged func()

	newIC  func(*Window) InputContext
	closed bool
}

// Options configures Connect.
type Options struct {
	// Display selects the X display; empty uses $DISPLAY.
	Display string
	Logger  *slog.Logger
	// Loader resolves dynamic libraries for EGL and the XCB interop
	// handle; nil uses the system loader.
	Loader *dylib.Loader
	// NewInputContext builds an input method context for each window;
	// nil windows compose characters straight from keysyms.
	NewInputContext func(*Window) InputContext
}

// Connect establishes the X11 connection, interns the atom table,
// probes extensions and starts the event pump.
func Connect(opts Options) (*Conn, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = dylib.System()
	}

	xu, err := xgbutil.NewConnDisplay(opts.Display)
	if err != nil {
		return nil, werr.Wrap(werr.PlatformUnavailable, err, "failed to connect to the X server")
	}

	c := &Conn{
		x:       xu.Conn(),
		xu:      xu,
		logger:  logger,
		loader:  loader,
		display: opts.Display,
		screen:  xu.Screen(),
		root:    xu.RootWin(),
		events:  make(chan xgb.Event, 64),
		wake:    make(chan struct{}, 1),
		devices: make(chan string, 4),
		dead:    make(chan struct{}),
		windows: make(map[xproto.Window]*Window),
		cursors: make(map[uint16]xproto.Cursor),
		newIC:   opts.NewInputContext,
	}

	c.atoms, err = internAtoms(c.x)
	if err != nil {
		c.x.Close()
		return nil, werr.Wrap(werr.PlatformError, err, "failed to intern atoms")
	}

	c.initExtensions()
	c.visualDepths = collectVisualDepths(c.screen)
	if c.hasRender {
		if reply, err := render.QueryPictFormats(c.x).Reply(); err == nil {
			c.alphaVisuals = collectAlphaVisuals(reply)
		}
	}

	if err := c.createHelperWindow(); err != nil {
		c.x.Close()
		return nil, err
	}

	if km, err := buildKeymap(c.x); err != nil {
		c.logger.Warn("keyboard mapping unavailable", "error", err)
	} else {
		c.keymap = km
	}

	c.idle = newSaver(c.x)

	go c.pump()
	return c, nil
}

// initExtensions probes the optional extensions. A missing extension
// downgrades features instead of failing the connection.
func (c *Conn) initExtensions() {
	if err := randr.Init(c.x); err == nil {
		if _, err := randr.QueryVersion(c.x, 1, 3).Reply(); err == nil {
			c.hasRandR = true
			mask := randr.NotifyMaskScreenChange | randr.NotifyMaskOutputChange | randr.NotifyMaskCrtcChange
			if err := randr.SelectInputChecked(c.x, c.root, uint16(mask)).Check(); err != nil {
				c.logger.Debug("randr select input failed", "error", err)
			}
		}
	}
	if err := render.Init(c.x); err == nil {
		c.hasRender = true
	}
	if err := shape.Init(c.x); err == nil {
		c.hasShape = true
	}
	c.logger.Debug("x11 extensions",
		"randr", c.hasRandR, "render", c.hasRender, "shape", c.hasShape)
}

// Extensions reports which optional extensions the server offers.
func (c *Conn) Extensions() (randr, render, shape bool) {
	return c.hasRandR, c.hasRender, c.hasShape
}

func collectVisualDepths(screen *xproto.ScreenInfo) map[xproto.Visualid]byte {
	depths := make(map[xproto.Visualid]byte)
	for _, d := range screen.AllowedDepths {
		for _, v := range d.Visuals {
			depths[v.VisualId] = d.Depth
		}
	}
	return depths
}

// collectAlphaVisuals maps visuals to whether their picture format
// carries an alpha channel, which is what makes a window transparent.
func collectAlphaVisuals(reply *render.QueryPictFormatsReply) map[xproto.Visualid]bool {
	alphaFormats := make(map[render.Pictformat]bool)
	for _, f := range reply.Formats {
		if f.Type == render.PictTypeDirect && f.Direct.AlphaMask != 0 {
			alphaFormats[f.Id] = true
		}
	}
	visuals := make(map[xproto.Visualid]bool)
	for _, s := range reply.Screens {
		for _, d := range s.Depths {
			for _, v := range d.Visuals {
				if alphaFormats[v.Format] {
					visuals[v.Visual] = true
				}
			}
		}
	}
	return visuals
}

func (c *Conn) createHelperWindow() error {
	id, err := xproto.NewWindowId(c.x)
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to allocate helper window id")
	}
	err = xproto.CreateWindowChecked(c.x, c.screen.RootDepth, id, c.root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, c.screen.RootVisual,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to create helper window")
	}
	c.helper = id
	return nil
}

// pump moves events from the blocking xgb read onto the loop channel.
// It exits when the connection dies.
func (c *Conn) pump() {
	for {
		ev, xerr := c.x.WaitForEvent()
		if ev == nil && xerr == nil {
			close(c.dead)
			return
		}
		if xerr != nil {
			c.logger.Debug("x11 protocol error", "error", xerr.Error())
			continue
		}
		select {
		case c.events <- ev:
		case <-c.dead:
			return
		}
	}
}

func (c *Conn) takePending() []xgb.Event {
	p := c.pending
	c.pending = nil
	return p
}

// drainChannel empties the event channel without blocking.
func (c *Conn) drainChannel(into []xgb.Event) []xgb.Event {
	for {
		select {
		case ev := <-c.events:
			into = append(into, ev)
		default:
			return into
		}
	}
}

// waitAny is the one blocking primitive every wait in the backend goes
// through: it returns once an X event, a posted wake, a device
// notification or the timeout arrives. timeout < 0 waits forever. The
// returned batch holds everything readable without further blocking.
func (c *Conn) waitAny(timeout time.Duration) []xgb.Event {
	batch := c.takePending()
	batch = c.drainChannel(batch)
	if len(batch) > 0 {
		return batch
	}

	var timer *time.Timer
	var expired <-chan time.Time
	if timeout >= 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case ev := <-c.events:
		batch = append(batch, ev)
		batch = c.drainChannel(batch)
	case <-c.wake:
	case path := <-c.devices:
		c.logger.Debug("input device change", "path", path)
	case <-expired:
	case <-c.dead:
	}
	return batch
}

// waitFor pumps events until match accepts one or the timeout passes,
// setting aside everything else for normal dispatch afterwards. It
// returns nil on timeout.
func (c *Conn) waitFor(timeout time.Duration, match func(xgb.Event) bool) xgb.Event {
	var setAside []xgb.Event
	defer func() {
		c.pending = append(setAside, c.pending...)
	}()

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		batch := c.waitAny(remaining)
		for i, ev := range batch {
			if match(ev) {
				setAside = append(setAside, batch[i+1:]...)
				return ev
			}
			setAside = append(setAside, ev)
		}
		select {
		case <-c.dead:
			return nil
		default:
		}
	}
}

// PollEvents dispatches everything already readable and returns.
func (c *Conn) PollEvents() error {
	batch := c.takePending()
	batch = c.drainChannel(batch)
	c.dispatch(batch)
	return c.checkAlive()
}

// WaitEvents blocks until at least one event or wake arrives, then
// dispatches the batch.
func (c *Conn) WaitEvents() error {
	c.dispatch(c.waitAny(-1))
	return c.checkAlive()
}

// WaitEventsTimeout is WaitEvents with an upper bound on the block.
func (c *Conn) WaitEventsTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return werr.New(werr.InvalidValue, "invalid wait timeout %v", timeout)
	}
	c.dispatch(c.waitAny(timeout))
	return c.checkAlive()
}

// PostEmptyEvent wakes the event loop from any goroutine. Multiple
// posts before the loop runs coalesce into one wake.
func (c *Conn) PostEmptyEvent() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// PostDeviceEvent wakes the loop for an input device change.
func (c *Conn) PostDeviceEvent(path string) {
	select {
	case c.devices <- path:
	default:
	}
}

func (c *Conn) checkAlive() error {
	select {
	case <-c.dead:
		return werr.New(werr.PlatformError, "the X connection was lost")
	default:
		return nil
	}
}

// SetMonitorsChangedHandler installs the monitor hotplug callback.
func (c *Conn) SetMonitorsChangedHandler(fn func()) {
	c.monitorsChanged = fn
}

// EGL returns the lazily initialized EGL manager bound to this
// connection.
func (c *Conn) EGL() (*egl.Manager, error) {
	if c.eglManager == nil {
		c.eglManager = egl.New(egl.Options{
			Loader: c.loader,
			Native: &eglNative{conn: c},
			Logger: c.logger,
		})
	}
	if err := c.eglManager.Init(); err != nil {
		return nil, err
	}
	return c.eglManager, nil
}

// TerminateEGL releases the EGL display if a manager exists. The
// library unload itself happens in UnloadEGL after Close.
func (c *Conn) TerminateEGL() {
	if c.eglManager != nil {
		c.eglManager.TerminateDisplay()
	}
}

// UnloadEGL unloads EGL and deferred client libraries. Only valid
// after Close.
func (c *Conn) UnloadEGL() {
	if c.eglManager != nil {
		c.eglManager.Unload()
		c.eglManager = nil
	}
}

// Close hands the clipboard to the manager, destroys remaining windows
// and disconnects. EGL teardown is split around it: the display goes
// first, the libraries after, so no library is unloaded while the
// connection still needs its symbols.
func (c *Conn) Close() {
	if c.closed {
		return
	}

	// Contexts destroyed here still see the connection as alive, so
	// their client libraries land on the deferred list instead of
	// being unloaded under the open connection.
	for _, w := range c.windows {
		w.Destroy()
	}

	c.pushClipboardToManager()
	c.idle.restore()

	if c.helper != 0 {
		xproto.DestroyWindow(c.x, c.helper)
		c.helper = 0
	}

	if c.interop != nil {
		c.interop.close()
		c.interop = nil
	}

	c.x.Close()
	c.closed = true
}

// Handle exposes the raw connection for the native access surface.
func (c *Conn) Handle() *xgb.Conn { return c.x }

// Root returns the root window of the default screen.
func (c *Conn) Root() uint32 { return uint32(c.root) }

// pid is what goes into _NET_WM_PID.
func pid() uint32 { return uint32(os.Getpid()) }

func atomName(c *Conn, atom xproto.Atom) string {
	reply, err := xproto.GetAtomName(c.x, atom).Reply()
	if err != nil {
		return fmt.Sprintf("atom#%d", atom)
	}
	return reply.Name
}
