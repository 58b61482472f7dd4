package egl

import (
	"runtime"
	"strings"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

// NativeWindow is the window half of surface creation. The platform
// surface entry point takes a pointer to the native handle while the
// legacy one takes the handle itself, so both forms are exposed.
type NativeWindow interface {
	EGLWindowValue() uintptr
	EGLWindowPointer() uintptr
	FramebufferSize() (int, int)
}

// Context is a client API context paired with its surface and, when
// EGL_KHR_get_all_proc_addresses is missing, the client library its
// symbols come from.
type Context struct {
	m          *Manager
	handle     uintptr
	surface    uintptr
	config     fbconfig.Config
	client     dylib.Module
	clientName string
	api        platform.ClientAPI
}

var (
	gles1Names = []string{"libGLESv1_CM.so.1", "libGLES_CM.so.1"}
	gles2Names = []string{"libGLESv2.so.2", "libGLESv2.so"}
	glNames    = []string{"libOpenGL.so.0", "libGL.so.1", "libGL.so"}
)

func setAttrib(attribs []int32, name, value int32) []int32 {
	return append(attribs, name, value)
}

// CreateContext selects a config, creates a context and surface for
// window, and loads the client library when the display cannot resolve
// client symbols through eglGetProcAddress.
func (m *Manager) CreateContext(ctxconfig platform.ContextConfig, desired fbconfig.Config, window NativeWindow) (*Context, error) {
	if err := m.requireInit(); err != nil {
		return nil, err
	}
	if ctxconfig.API == platform.NoAPI {
		return nil, werr.New(werr.InvalidValue, "cannot create a context without a client API")
	}

	config, err := m.chooseConfig(ctxconfig, desired)
	if err != nil {
		return nil, err
	}

	if ctxconfig.API == platform.OpenGLES {
		if m.a.bindAPI(eglOpenGLESAPI) != eglTrue {
			return nil, werr.New(werr.ApiUnavailable, "failed to bind OpenGL ES: %s", errorString(m.a.getError()))
		}
	} else {
		if m.a.bindAPI(eglOpenGLAPI) != eglTrue {
			return nil, werr.New(werr.ApiUnavailable, "failed to bind OpenGL: %s", errorString(m.a.getError()))
		}
	}

	attribs := m.contextAttribs(ctxconfig)
	handle := m.a.createContext(m.display, config.Handle, ctxconfig.Share, &attribs[0])
	if handle == 0 {
		return nil, werr.New(werr.VersionUnavailable, "failed to create context: %s", errorString(m.a.getError()))
	}

	surface, err := m.createSurface(config, desired, window)
	if err != nil {
		m.a.destroyContext(m.display, handle)
		return nil, err
	}

	c := &Context{m: m, handle: handle, surface: surface, config: config, api: ctxconfig.API}

	// When the display cannot hand out core client symbols, the client
	// library has to be loaded directly.
	if !m.khrGetAllProcAddresses {
		var names []string
		switch {
		case ctxconfig.API == platform.OpenGLES && ctxconfig.Major == 1:
			names = gles1Names
		case ctxconfig.API == platform.OpenGLES:
			names = gles2Names
		default:
			names = glNames
		}
		lib, name, err := m.loader.Open(matchLibraryPrefix(names, m.libName)...)
		if err != nil {
			m.a.destroySurface(m.display, surface)
			m.a.destroyContext(m.display, handle)
			return nil, werr.Wrap(werr.ApiUnavailable, err, "failed to load client library")
		}
		c.client = lib
		c.clientName = name
	}

	return c, nil
}

// matchLibraryPrefix keeps client library candidates whose naming
// matches the EGL library's: implementations shipping an unprefixed
// EGL library pair it with unprefixed client libraries.
func matchLibraryPrefix(names []string, eglName string) []string {
	if strings.HasPrefix(eglName, "lib") {
		return names
	}
	stripped := make([]string, len(names))
	for i, name := range names {
		stripped[i] = strings.TrimPrefix(name, "lib")
	}
	return stripped
}

func (m *Manager) contextAttribs(ctxconfig platform.ContextConfig) []int32 {
	attribs := make([]int32, 0, 16)

	if m.khrCreateContext {
		var mask, flags int32

		if ctxconfig.API == platform.OpenGL {
			if ctxconfig.Forward {
				flags |= eglContextOpenGLForwardCompatBitKHR
			}
			switch ctxconfig.Profile {
			case platform.CoreProfile:
				mask |= eglContextOpenGLCoreProfileBitKHR
			case platform.CompatProfile:
				mask |= eglContextOpenGLCompatProfileBitKHR
			}
		}
		if ctxconfig.Debug {
			flags |= eglContextOpenGLDebugBitKHR
		}
		if ctxconfig.Robustness != platform.NoRobustness {
			strategy := int32(eglNoResetNotificationKHR)
			if ctxconfig.Robustness == platform.LoseContextOnReset {
				strategy = eglLoseContextOnResetKHR
			}
			attribs = setAttrib(attribs, eglContextResetNotificationStrategyKHR, strategy)
			flags |= eglContextOpenGLRobustAccessBitKHR
		}
		if ctxconfig.NoError && m.khrCreateContextNoError {
			attribs = setAttrib(attribs, eglContextOpenGLNoErrorKHR, eglTrue)
		}
		if ctxconfig.Major != 1 || ctxconfig.Minor != 0 {
			attribs = setAttrib(attribs, eglContextMajorVersionKHR, int32(ctxconfig.Major))
			attribs = setAttrib(attribs, eglContextMinorVersionKHR, int32(ctxconfig.Minor))
		}
		if mask != 0 {
			attribs = setAttrib(attribs, eglContextOpenGLProfileMaskKHR, mask)
		}
		if flags != 0 {
			attribs = setAttrib(attribs, eglContextFlagsKHR, flags)
		}
	} else if ctxconfig.API == platform.OpenGLES {
		attribs = setAttrib(attribs, eglContextClientVersion, int32(ctxconfig.Major))
	}

	if m.khrContextFlushControl {
		switch ctxconfig.Release {
		case platform.ReleaseBehaviorNone:
			attribs = setAttrib(attribs, eglContextReleaseBehaviorKHR, eglContextReleaseBehaviorNoneKHR)
		case platform.ReleaseBehaviorFlush:
			attribs = setAttrib(attribs, eglContextReleaseBehaviorKHR, eglContextReleaseBehaviorFlushKHR)
		}
	}

	return append(attribs, eglNone)
}

func (m *Manager) createSurface(config, desired fbconfig.Config, window NativeWindow) (uintptr, error) {
	attribs := make([]int32, 0, 8)
	if desired.SRGB && m.khrGLColorspace {
		attribs = setAttrib(attribs, eglGLColorspaceKHR, eglGLColorspaceSRGBKHR)
	}
	if !desired.DoubleBuffer {
		attribs = setAttrib(attribs, eglRenderBuffer, eglSingleBuffer)
	}

	if m.native != nil && !m.native.WantsWindowSurfaces() {
		width, height := window.FramebufferSize()
		attribs = setAttrib(attribs, eglWidth, int32(width))
		attribs = setAttrib(attribs, eglHeight, int32(height))
		attribs = append(attribs, eglNone)
		surface := m.a.createPbufferSurface(m.display, config.Handle, &attribs[0])
		if surface == 0 {
			return 0, werr.New(werr.PlatformError, "failed to create pbuffer surface: %s", errorString(m.a.getError()))
		}
		return surface, nil
	}

	attribs = append(attribs, eglNone)
	var surface uintptr
	if m.platformExt && m.a.createPlatformWindowSurfaceEXT != nil {
		surface = m.a.createPlatformWindowSurfaceEXT(m.display, config.Handle, window.EGLWindowPointer(), &attribs[0])
	} else {
		surface = m.a.createWindowSurface(m.display, config.Handle, window.EGLWindowValue(), &attribs[0])
	}
	if surface == 0 {
		return 0, werr.New(werr.PlatformError, "failed to create window surface: %s", errorString(m.a.getError()))
	}
	return surface, nil
}

// bindCurrent is the single spot that calls eglMakeCurrent. The OS
// thread is locked while any context is bound so the goroutine cannot
// migrate away from the thread holding the binding.
func (m *Manager) bindCurrent(c *Context) error {
	if c != nil {
		wasBound := m.current != nil
		if !wasBound {
			runtime.LockOSThread()
		}
		if m.a.makeCurrent(m.display, c.surface, c.surface, c.handle) != eglTrue {
			if !wasBound {
				runtime.UnlockOSThread()
			}
			return werr.New(werr.PlatformError, "failed to make context current: %s", errorString(m.a.getError()))
		}
		m.current = c
		return nil
	}
	if m.a.makeCurrent(m.display, 0, 0, 0) != eglTrue {
		return werr.New(werr.PlatformError, "failed to release current context: %s", errorString(m.a.getError()))
	}
	if m.current != nil {
		m.current = nil
		runtime.UnlockOSThread()
	}
	return nil
}

// Current returns the context most recently made current, or nil.
func (m *Manager) Current() *Context { return m.current }

// MakeCurrent binds the context and its surface on the calling
// goroutine, pinning it to the OS thread for as long as it stays bound.
func (c *Context) MakeCurrent() error { return c.m.bindCurrent(c) }

// DetachCurrent releases the current binding.
func (c *Context) DetachCurrent() error { return c.m.bindCurrent(nil) }

// SwapBuffers presents the back buffer. The context must be current.
func (c *Context) SwapBuffers() error {
	if c.m.current != c {
		return werr.New(werr.PlatformError, "the context must be current when swapping buffers")
	}
	if c.m.a.swapBuffers(c.m.display, c.surface) != eglTrue {
		return werr.New(werr.PlatformError, "failed to swap buffers: %s", errorString(c.m.a.getError()))
	}
	return nil
}

// SwapInterval sets the presentation interval for the context's
// surface. The context must be current.
func (c *Context) SwapInterval(interval int) error {
	if c.m.current != c {
		return werr.New(werr.PlatformError, "the context must be current when setting the swap interval")
	}
	if c.m.a.swapInterval(c.m.display, int32(interval)) != eglTrue {
		return werr.New(werr.PlatformError, "failed to set swap interval: %s", errorString(c.m.a.getError()))
	}
	return nil
}

// ExtensionSupported reports whether the display extension string
// contains name.
func (c *Context) ExtensionSupported(name string) bool {
	return stringInExtensions(name, c.m.extensions)
}

// ProcAddress resolves a client API symbol, preferring the loaded
// client library and falling back to eglGetProcAddress.
func (c *Context) ProcAddress(name string) uintptr {
	if c.client != 0 {
		if addr, err := c.m.loader.Resolve(c.client, name); err == nil && addr != 0 {
			return addr
		}
	}
	return c.m.a.getProcAddress(name)
}

// NativeHandle returns the EGLContext handle.
func (c *Context) NativeHandle() uintptr { return c.handle }

// Surface returns the EGLSurface handle.
func (c *Context) Surface() uintptr { return c.surface }

// Config returns the framebuffer config the context was created with.
func (c *Context) Config() fbconfig.Config { return c.config }

// ClientLibrary returns the name of the loaded client library, or the
// empty string when all symbols come from EGL itself.
func (c *Context) ClientLibrary() string { return c.clientName }

// Destroy releases the surface and context. If the native connection is
// still open, unloading the client library is deferred to
// Manager.Unload: the connection may hold symbols from it, and closing
// the library first would tear those out from under the connection.
func (c *Context) Destroy() {
	if c.m.current == c {
		c.m.bindCurrent(nil)
	}
	if c.surface != 0 {
		c.m.a.destroySurface(c.m.display, c.surface)
		c.surface = 0
	}
	if c.handle != 0 {
		c.m.a.destroyContext(c.m.display, c.handle)
		c.handle = 0
	}
	if c.client != 0 {
		if c.m.native != nil && c.m.native.ConnectionAlive() {
			c.m.deferredLibs = append(c.m.deferredLibs, c.client)
			c.m.logger.Debug("deferring client library unload", "library", c.clientName)
		} else {
			c.m.loader.Close(c.client)
		}
		c.client = 0
	}
}
