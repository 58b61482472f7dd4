package x11

import (
	"os"
	"unsafe"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/egl"
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

const sizeDontCare = -1

// Window is one native top-level window plus the backend state event
// translation needs: cached geometry, input dedup bookkeeping and the
// cursor mode machinery.
type Window struct {
	c        *Conn
	id       xproto.Window
	parent   xproto.Window
	colormap xproto.Colormap
	visual   xproto.Visualid

	handlers platform.Handlers
	context  *egl.Context
	ic       InputContext

	// eglID is stable storage for the platform surface entry point,
	// which receives a pointer to the native handle.
	eglID uint32

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
	transparent bool

	minWidth, minHeight int
	maxWidth, maxHeight int
	aspectNumer         int
	aspectDenom         int

	monitor *platform.Monitor

	// Geometry to restore when leaving fullscreen.
	windowedX, windowedY int
	windowedW, windowedH int

	cursorMode  event.CursorMode
	cursorShape event.StandardCursor

	// Disabled cursor mode bookkeeping. warpX/warpY record the last
	// warp target so the echoed motion event can be swallowed.
	restoreCursorX, restoreCursorY float64
	virtualX, virtualY             float64
	lastCursorX, lastCursorY       int
	warpX, warpY                   int

	keys        [256]event.Action
	lastKeyCode xproto.Keycode
	lastKeyTime xproto.Timestamp
}

// createNativeWindow creates the native window and applies its
// properties. When ctxconfig requests a client API the EGL manager
// picks the visual, so the window is guaranteed to match the config
// the context is created from later.
func (c *Conn) createNativeWindow(cfg platform.WindowConfig, ctxconfig platform.ContextConfig, fb fbconfig.Config, handlers platform.Handlers) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, werr.New(werr.InvalidValue, "invalid window size %dx%d", cfg.Width, cfg.Height)
	}

	visual := c.screen.RootVisual
	depth := c.screen.RootDepth
	switch {
	case ctxconfig.API != platform.NoAPI:
		mgr, err := c.EGL()
		if err != nil {
			return nil, err
		}
		id, err := mgr.ChooseVisual(ctxconfig, fb)
		if err != nil {
			return nil, err
		}
		visual = xproto.Visualid(id)
		if d, ok := c.visualDepths[visual]; ok {
			depth = d
		}
	case fb.Transparent:
		if v, ok := c.findAlphaVisual(); ok {
			visual = v
			depth = c.visualDepths[v]
		}
	}

	id, err := xproto.NewWindowId(c.x)
	if err != nil {
		return nil, werr.Wrap(werr.PlatformError, err, "failed to allocate window id")
	}
	cmid, err := xproto.NewColormapId(c.x)
	if err != nil {
		return nil, werr.Wrap(werr.PlatformError, err, "failed to allocate colormap id")
	}
	if err := xproto.CreateColormapChecked(c.x, xproto.ColormapAllocNone, cmid, c.root, visual).Check(); err != nil {
		return nil, werr.Wrap(werr.PlatformError, err, "failed to create colormap")
	}

	eventMask := uint32(xproto.EventMaskStructureNotify |
		xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease |
		xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
		xproto.EventMaskEnterWindow | xproto.EventMaskLeaveWindow |
		xproto.EventMaskPointerMotion | xproto.EventMaskExposure |
		xproto.EventMaskFocusChange | xproto.EventMaskVisibilityChange |
		xproto.EventMaskPropertyChange)

	err = xproto.CreateWindowChecked(c.x, depth, id, c.root,
		0, 0, uint16(cfg.Width), uint16(cfg.Height), 0,
		xproto.WindowClassInputOutput, visual,
		xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap,
		[]uint32{0, eventMask, uint32(cmid)}).Check()
	if err != nil {
		xproto.FreeColormap(c.x, cmid)
		return nil, werr.Wrap(werr.PlatformError, err, "failed to create window")
	}

	w := &Window{
		c:           c,
		id:          id,
		parent:      c.root,
		colormap:    cmid,
		visual:      visual,
		handlers:    handlers,
		eglID:       uint32(id),
		title:       cfg.Title,
		width:       cfg.Width,
		height:      cfg.Height,
		resizable:   cfg.Resizable,
		decorated:   cfg.Decorated,
		floating:    cfg.Floating,
		autoIconify: cfg.AutoIconify,
		transparent: fb.Transparent && c.alphaVisuals[visual],
		minWidth:    sizeDontCare,
		minHeight:   sizeDontCare,
		maxWidth:    sizeDontCare,
		maxHeight:   sizeDontCare,
		aspectNumer: sizeDontCare,
		aspectDenom: sizeDontCare,
		cursorMode:  event.CursorNormal,
	}
	c.windows[id] = w

	c.changeProperty32(id, c.atoms.WMProtocols, xproto.AtomAtom,
		uint32(c.atoms.WMDeleteWindow), uint32(c.atoms.NetWMPing))
	c.changeProperty32(id, c.atoms.NetWMPid, xproto.AtomCardinal, pid())
	c.changeProperty32(id, c.atoms.NetWMWindowType, xproto.AtomAtom, uint32(c.atoms.NetWMWindowTypeNormal))

	// Xdnd target protocol version announcement.
	c.changeProperty32(id, c.atoms.XdndAware, xproto.AtomAtom, dndVersion)

	instance, class := resolveClassHint(cfg)
	icccm.WmClassSet(c.xu, id, &icccm.WmClass{Instance: instance, Class: class})
	icccm.WmHintsSet(c.xu, id, &icccm.Hints{
		Flags: icccm.HintInput | icccm.HintState,
		Input: 1,
		// Iconic initial state is requested through WM_CHANGE_STATE
		// instead, so windows always start in the normal state.
		InitialState: icccm.StateNormal,
	})

	if err := w.SetTitle(cfg.Title); err != nil {
		c.logger.Debug("failed to set initial title", "error", err)
	}
	w.updateNormalHints(cfg.Width, cfg.Height)

	if !cfg.Decorated {
		w.applyDecorations(false)
	}
	if cfg.Floating {
		w.writeWMState()
	}
	if cfg.Maximized {
		w.maximized = true
		w.writeWMState()
	}

	if c.newIC != nil {
		w.ic = c.newIC(w)
	}
	return w, nil
}

// findAlphaVisual returns a visual whose picture format has an alpha
// channel, preferring 32-bit depth.
func (c *Conn) findAlphaVisual() (xproto.Visualid, bool) {
	for v := range c.alphaVisuals {
		if c.visualDepths[v] == 32 {
			return v, true
		}
	}
	for v := range c.alphaVisuals {
		return v, true
	}
	return 0, false
}

// resolveClassHint picks the WM_CLASS pair: explicit configuration
// first, then the environment, then the title.
func resolveClassHint(cfg platform.WindowConfig) (instance, class string) {
	instance = cfg.InstanceName
	if instance == "" {
		instance = os.Getenv("RESOURCE_NAME")
	}
	if instance == "" {
		instance = cfg.Title
	}
	if instance == "" {
		instance = "glwin"
	}
	class = cfg.ClassName
	if class == "" {
		class = cfg.Title
	}
	if class == "" {
		class = "glwin"
	}
	return instance, class
}

// Handle returns the window's XID.
func (w *Window) Handle() uintptr { return uintptr(w.id) }

// ID returns the XID as a protocol window.
func (w *Window) ID() uint32 { return uint32(w.id) }

// Context returns the window's rendering context, or nil when created
// without a client API.
func (w *Window) Context() platform.Context {
	if w.context == nil {
		return nil
	}
	return w.context
}

func (w *Window) setContext(ctx *egl.Context) { w.context = ctx }

// EGLWindowValue hands the XID to the legacy surface entry point.
func (w *Window) EGLWindowValue() uintptr { return uintptr(w.id) }

// EGLWindowPointer hands a pointer to the XID storage to the platform
// surface entry point.
func (w *Window) EGLWindowPointer() uintptr { return uintptr(unsafe.Pointer(&w.eglID)) }

// SetTitle updates the UTF-8 window and icon titles.
func (w *Window) SetTitle(title string) error {
	w.title = title
	if err := ewmh.WmNameSet(w.c.xu, w.id, title); err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to set window title")
	}
	w.c.changeProperty8(w.id, w.c.atoms.NetWMIconName, w.c.atoms.UTF8String, []byte(title))
	return nil
}

// Title returns the last title set.
func (w *Window) Title() string { return w.title }

// Pos returns the root-relative position of the client area.
func (w *Window) Pos() (int, int) {
	reply, err := xproto.TranslateCoordinates(w.c.x, w.id, w.c.root, 0, 0).Reply()
	if err != nil {
		return w.x, w.y
	}
	return int(reply.DstX), int(reply.DstY)
}

// SetPos moves the client area to root-relative coordinates.
func (w *Window) SetPos(x, y int) error {
	err := xproto.ConfigureWindowChecked(w.c.x, w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))}).Check()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to move window")
	}
	if !w.visible {
		w.x, w.y = x, y
	}
	return nil
}

// Size returns the client area size.
func (w *Window) Size() (int, int) { return w.width, w.height }

// SetSize resizes the client area.
func (w *Window) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return werr.New(werr.InvalidValue, "invalid window size %dx%d", width, height)
	}
	if w.monitor != nil {
		// Fullscreen geometry belongs to the monitor.
		return nil
	}
	if !w.resizable {
		w.updateNormalHints(width, height)
	}
	err := xproto.ConfigureWindowChecked(w.c.x, w.id,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)}).Check()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to resize window")
	}
	return nil
}

// FramebufferSize equals the client area size on X11.
func (w *Window) FramebufferSize() (int, int) { return w.width, w.height }

// SetSizeLimits constrains the client area size through WM_NORMAL_HINTS.
func (w *Window) SetSizeLimits(minW, minH, maxW, maxH int) error {
	if minW != sizeDontCare && maxW != sizeDontCare && maxW < minW {
		return werr.New(werr.InvalidValue, "maximum width %d below minimum %d", maxW, minW)
	}
	if minH != sizeDontCare && maxH != sizeDontCare && maxH < minH {
		return werr.New(werr.InvalidValue, "maximum height %d below minimum %d", maxH, minH)
	}
	w.minWidth, w.minHeight = minW, minH
	w.maxWidth, w.maxHeight = maxW, maxH
	w.updateNormalHints(w.width, w.height)
	return nil
}

// SetAspectRatio constrains the client area aspect through
// WM_NORMAL_HINTS.
func (w *Window) SetAspectRatio(numer, denom int) error {
	if numer != sizeDontCare && numer <= 0 || denom != sizeDontCare && denom <= 0 {
		return werr.New(werr.InvalidValue, "invalid aspect ratio %d:%d", numer, denom)
	}
	w.aspectNumer, w.aspectDenom = numer, denom
	w.updateNormalHints(w.width, w.height)
	return nil
}

// updateNormalHints publishes size constraints. A non-resizable window
// pins min and max to the current size.
func (w *Window) updateNormalHints(width, height int) {
	hints := icccm.NormalHints{}
	if !w.resizable {
		hints.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		hints.MinWidth, hints.MinHeight = uint(width), uint(height)
		hints.MaxWidth, hints.MaxHeight = uint(width), uint(height)
	} else {
		if w.minWidth != sizeDontCare && w.minHeight != sizeDontCare {
			hints.Flags |= icccm.SizeHintPMinSize
			hints.MinWidth, hints.MinHeight = uint(w.minWidth), uint(w.minHeight)
		}
		if w.maxWidth != sizeDontCare && w.maxHeight != sizeDontCare {
			hints.Flags |= icccm.SizeHintPMaxSize
			hints.MaxWidth, hints.MaxHeight = uint(w.maxWidth), uint(w.maxHeight)
		}
		if w.aspectNumer != sizeDontCare && w.aspectDenom != sizeDontCare {
			hints.Flags |= icccm.SizeHintPAspect
			hints.MinAspectNum, hints.MinAspectDen = uint(w.aspectNumer), uint(w.aspectDenom)
			hints.MaxAspectNum, hints.MaxAspectDen = uint(w.aspectNumer), uint(w.aspectDenom)
		}
	}
	if err := icccm.WmNormalHintsSet(w.c.xu, w.id, &hints); err != nil {
		w.c.logger.Debug("failed to set normal hints", "error", err)
	}
}

// FrameExtents returns decoration sizes. For unmapped windows the
// window manager is asked to estimate them, bounded by a short wait.
func (w *Window) FrameExtents() (left, top, right, bottom int, err error) {
	if !w.visible && w.c.supportsFrameExtentsRequest() {
		w.c.sendRootMessage(w.id, w.c.atoms.NetRequestFrameExtents, [5]uint32{})
		w.c.waitFor(frameExtentsTimeout, func(ev xgb.Event) bool {
			pn, ok := ev.(xproto.PropertyNotifyEvent)
			return ok && pn.Window == w.id && pn.Atom == w.c.atoms.NetFrameExtents
		})
	}
	extents, gerr := ewmh.FrameExtentsGet(w.c.xu, w.id)
	if gerr != nil {
		// No extents property; undecorated and reparenting-free
		// windows legitimately have none.
		return 0, 0, 0, 0, nil
	}
	return extents.Left, extents.Top, extents.Right, extents.Bottom, nil
}

// Destroy tears the window down: context first, then the native window
// and colormap. Safe to call twice.
func (w *Window) Destroy() {
	if w.id == 0 {
		return
	}
	if w.c.disabledWindow == w {
		w.releaseCursor()
		w.c.disabledWindow = nil
	}
	if w.ic != nil {
		w.ic.Destroy()
		w.ic = nil
	}
	if w.context != nil {
		w.context.Destroy()
		w.context = nil
	}
	if w.monitor != nil {
		w.c.idle.release()
		w.monitor = nil
	}
	delete(w.c.windows, w.id)
	xproto.DestroyWindow(w.c.x, w.id)
	if w.colormap != 0 {
		xproto.FreeColormap(w.c.x, w.colormap)
		w.colormap = 0
	}
	w.id = 0
}

// changeProperty32 replaces a 32-bit property on a window.
func (c *Conn) changeProperty32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		xgb.Put32(buf[i*4:], v)
	}
	xproto.ChangeProperty(c.x, xproto.PropModeReplace, win, prop, typ, 32, uint32(len(values)), buf)
}

// changeProperty8 replaces an 8-bit property on a window.
func (c *Conn) changeProperty8(win xproto.Window, prop, typ xproto.Atom, data []byte) {
	xproto.ChangeProperty(c.x, xproto.PropModeReplace, win, prop, typ, 8, uint32(len(data)), data)
}

// sendRootMessage delivers a 32-bit client message about win to the
// window manager via the root window.
func (c *Conn) sendRootMessage(win xproto.Window, typ xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	return xproto.SendEventChecked(c.x, false, c.root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes())).Check()
}

// sendMessage delivers a 32-bit client message directly to a window
// with an empty event mask, as the Xdnd protocol requires.
func (c *Conn) sendMessage(win xproto.Window, typ xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	return xproto.SendEventChecked(c.x, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

func (c *Conn) supportsFrameExtentsRequest() bool {
	return c.atoms.NetRequestFrameExtents != 0
}
