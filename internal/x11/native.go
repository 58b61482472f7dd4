package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/ebitengine/purego"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/egl"
)

// xcbInterop opens a second, minimal display connection through the
// XCB client library. The wire protocol connection is pure Go and has
// no C handle, but EGL platform binding and Vulkan surface creation
// both need an xcb_connection_t, so one is kept alongside.
type xcbInterop struct {
	loader *dylib.Loader
	lib    dylib.Module
	conn   uintptr
	screen int32

	disconnect func(conn uintptr)
}

var xcbLibraryNames = []string{"libxcb.so.1", "libxcb.so"}

// openXCBInterop connects to the same display through libxcb. The
// returned value is never nil; a failed open leaves conn zero so
// callers degrade to the legacy EGL path.
func openXCBInterop(loader *dylib.Loader, display string, logger *slog.Logger) *xcbInterop {
	i := &xcbInterop{loader: loader}

	lib, name, err := loader.Open(xcbLibraryNames...)
	if err != nil {
		logger.Debug("xcb interop unavailable", "error", err)
		return i
	}

	var (
		connect  func(display *byte, screen *int32) uintptr
		hasError func(conn uintptr) int32
	)
	ok := true
	for _, entry := range []struct {
		name string
		fn   any
	}{
		{"xcb_connect", &connect},
		{"xcb_disconnect", &i.disconnect},
		{"xcb_connection_has_error", &hasError},
	} {
		addr, err := loader.Resolve(lib, entry.name)
		if err != nil || addr == 0 {
			logger.Debug("xcb interop missing entry point", "symbol", entry.name)
			ok = false
			break
		}
		purego.RegisterFunc(entry.fn, addr)
	}
	if !ok {
		loader.Close(lib)
		return i
	}

	var displayArg *byte
	if display != "" {
		buf := append([]byte(display), 0)
		displayArg = &buf[0]
	}
	conn := connect(displayArg, &i.screen)
	if conn == 0 || hasError(conn) != 0 {
		if conn != 0 {
			i.disconnect(conn)
		}
		loader.Close(lib)
		logger.Debug("xcb interop connection failed")
		return i
	}

	i.lib = lib
	i.conn = conn
	logger.Debug("xcb interop connected", "library", name, "screen", i.screen)
	return i
}

func (i *xcbInterop) close() {
	if i == nil {
		return
	}
	if i.conn != 0 {
		i.disconnect(i.conn)
		i.conn = 0
	}
	if i.lib != 0 {
		i.loader.Close(i.lib)
		i.lib = 0
	}
}

// xcbHandle returns the interop connection and screen number, opening
// the interop on first use. Zero when libxcb cannot serve.
func (c *Conn) xcbHandle() (uintptr, int32) {
	if c.interop == nil {
		c.interop = openXCBInterop(c.loader, c.display, c.logger)
	}
	return c.interop.conn, c.interop.screen
}

// XCBConnection exposes the interop connection handle for Vulkan
// surface creation. Zero when unavailable.
func (c *Conn) XCBConnection() uintptr {
	h, _ := c.xcbHandle()
	return h
}

// eglNative adapts the connection to what the EGL manager needs to
// know about its windowing platform.
type eglNative struct {
	conn *Conn
}

// EGLPlatform offers the XCB platform when the interop connection is
// available, directing the manager to the platform display entry
// point. Otherwise the manager falls back to the legacy display call.
func (n *eglNative) EGLPlatform() (uint32, uintptr, []int32, bool) {
	handle, screen := n.conn.xcbHandle()
	if handle == 0 {
		return 0, 0, nil, false
	}
	return egl.PlatformXCB, handle, []int32{egl.PlatformXCBScreenExt, screen}, true
}

// HasNativeVisuals reports that configs carry X visual IDs worth
// filtering on.
func (n *eglNative) HasNativeVisuals() bool { return true }

// VisualTransparent reports whether a visual has an alpha channel.
func (n *eglNative) VisualTransparent(visual uint32) bool {
	return n.conn.alphaVisuals[xproto.Visualid(visual)]
}

// WantsWindowSurfaces selects window surfaces over pbuffers.
func (n *eglNative) WantsWindowSurfaces() bool { return true }

// ConnectionAlive gates client library unloading: while the display
// connection is up, unloading is deferred.
func (n *eglNative) ConnectionAlive() bool { return !n.conn.closed }
