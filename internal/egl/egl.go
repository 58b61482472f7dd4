// Package egl drives EGL through a dynamically loaded client library:
// display acquisition, closest-match config selection, and context and
// surface lifecycle for the window backends. All entry points are
// resolved by name into a typed capability table at initialization, so
// a missing symbol is an initialization error rather than a call-time
// crash.
package egl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/werr"
)

const (
	eglSuccess           = 0x3000
	eglNotInitialized    = 0x3001
	eglBadAccess         = 0x3002
	eglBadAlloc          = 0x3003
	eglBadAttribute      = 0x3004
	eglBadConfig         = 0x3005
	eglBadContext        = 0x3006
	eglBadCurrentSurface = 0x3007
	eglBadDisplay        = 0x3008
	eglBadMatch          = 0x3009
	eglBadNativePixmap   = 0x300a
	eglBadNativeWindow   = 0x300b
	eglBadParameter      = 0x300c
	eglBadSurface        = 0x300d
	eglContextLost       = 0x300e

	eglAlphaSize       = 0x3021
	eglBlueSize        = 0x3022
	eglGreenSize       = 0x3023
	eglRedSize         = 0x3024
	eglDepthSize       = 0x3025
	eglStencilSize     = 0x3026
	eglSamples         = 0x3031
	eglSurfaceType     = 0x3033
	eglNone            = 0x3038
	eglColorBufferType = 0x303f
	eglRenderableType  = 0x3040
	eglNativeVisualID  = 0x302e
	eglVendor          = 0x3053
	eglVersion         = 0x3054
	eglExtensions      = 0x3055
	eglHeight          = 0x3056
	eglWidth           = 0x3057
	eglRenderBuffer    = 0x3086
	eglSingleBuffer    = 0x3085
	eglRGBBuffer       = 0x308e

	eglPbufferBit = 0x0001
	eglWindowBit  = 0x0004

	eglOpenGLESBit  = 0x0001
	eglOpenGLES2Bit = 0x0004
	eglOpenGLBit    = 0x0008

	eglOpenGLESAPI = 0x30a0
	eglOpenGLAPI   = 0x30a2

	eglContextClientVersion = 0x3098

	eglContextMajorVersionKHR              = 0x3098
	eglContextMinorVersionKHR              = 0x30fb
	eglContextFlagsKHR                     = 0x30fc
	eglContextOpenGLProfileMaskKHR         = 0x30fd
	eglContextOpenGLCoreProfileBitKHR      = 0x0001
	eglContextOpenGLCompatProfileBitKHR    = 0x0002
	eglContextOpenGLDebugBitKHR            = 0x0001
	eglContextOpenGLForwardCompatBitKHR    = 0x0002
	eglContextOpenGLRobustAccessBitKHR     = 0x0004
	eglContextResetNotificationStrategyKHR = 0x31bd
	eglNoResetNotificationKHR              = 0x31be
	eglLoseContextOnResetKHR               = 0x31bf
	eglContextOpenGLNoErrorKHR             = 0x31b3
	eglContextReleaseBehaviorKHR           = 0x2097
	eglContextReleaseBehaviorNoneKHR       = 0
	eglContextReleaseBehaviorFlushKHR      = 0x2098

	eglGLColorspaceKHR     = 0x309d
	eglGLColorspaceSRGBKHR = 0x3089

	eglTrue  = 1
	eglFalse = 0
)

// PlatformXCB is the EGL_EXT_platform_xcb platform enum, with its
// screen-selection attribute. The X11 backend hands these to Init.
const (
	PlatformXCB          = 0x31dc
	PlatformXCBScreenExt = 0x31de
)

var errorStrings = map[int32]string{
	eglSuccess:           "Success",
	eglNotInitialized:    "EGL is not or could not be initialized",
	eglBadAccess:         "EGL cannot access a requested resource",
	eglBadAlloc:          "EGL failed to allocate resources for the requested operation",
	eglBadAttribute:      "An unrecognized attribute or attribute value was passed in the attribute list",
	eglBadContext:        "An EGLContext argument does not name a valid EGL rendering context",
	eglBadConfig:         "An EGLConfig argument does not name a valid EGL frame buffer configuration",
	eglBadCurrentSurface: "The current surface of the calling thread is a window, pixel buffer or pixmap that is no longer valid",
	eglBadDisplay:        "An EGLDisplay argument does not name a valid EGL display connection",
	eglBadSurface:        "An EGLSurface argument does not name a valid surface configured for GL rendering",
	eglBadMatch:          "Arguments are inconsistent",
	eglBadParameter:      "One or more argument values are invalid",
	eglBadNativePixmap:   "A NativePixmapType argument does not refer to a valid native pixmap",
	eglBadNativeWindow:   "A NativeWindowType argument does not refer to a valid native window",
	eglContextLost:       "The application must destroy all contexts and reinitialize",
}

// errorString maps an EGL error code to a human-readable description,
// with a catch-all for codes this table does not know.
func errorString(code int32) string {
	if s, ok := errorStrings[code]; ok {
		return s
	}
	return "ERROR: UNKNOWN EGL ERROR"
}

// Native is what a window backend offers the EGL manager: an optional
// platform display, visual knowledge for config selection, the surface
// kind it needs, and whether its connection still depends on loaded
// client libraries.
type Native interface {
	// EGLPlatform returns the platform enum, native display handle and
	// platform attribute list when the backend can provide a platform
	// display; ok is false to request the legacy display path.
	EGLPlatform() (platform uint32, display uintptr, attribs []int32, ok bool)
	// HasNativeVisuals reports whether configs must carry a native
	// visual to be usable on this backend.
	HasNativeVisuals() bool
	// VisualTransparent reports whether the given native visual has an
	// alpha channel.
	VisualTransparent(visual uint32) bool
	// WantsWindowSurfaces selects window surfaces; false selects
	// pbuffer surfaces for headless operation.
	WantsWindowSurfaces() bool
	// ConnectionAlive reports whether the native connection is still
	// open, which defers client library unloading.
	ConnectionAlive() bool
}

// Manager owns the EGL library, its capability table and the display,
// and creates contexts for windows.
type Manager struct {
	loader *dylib.Loader
	native Native
	logger *slog.Logger

	lib     dylib.Module
	libName string
	a       *api

	display uintptr
	major   int32
	minor   int32

	// Display extension availability, probed once after Initialize.
	khrCreateContext        bool
	khrCreateContextNoError bool
	khrGLColorspace         bool
	khrGetAllProcAddresses  bool
	khrContextFlushControl  bool
	extPresentOpaque        bool

	extensions  string
	platformExt bool

	current      *Context
	deferredLibs []dylib.Module
	initialized  bool
}

// Options configures a Manager.
type Options struct {
	Loader *dylib.Loader
	Native Native
	Logger *slog.Logger
}

// New returns an uninitialized Manager; call Init before creating
// contexts.
func New(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = dylib.System()
	}
	return &Manager{loader: loader, native: opts.Native, logger: logger}
}

// SetLoader replaces the module loader used for EGL and client
// libraries. Only allowed before Init.
func (m *Manager) SetLoader(l *dylib.Loader) error {
	if m.initialized {
		return werr.New(werr.InvalidValue, "module loader cannot change while EGL is initialized")
	}
	m.loader = l
	return nil
}

// Initialized reports whether Init has completed successfully.
func (m *Manager) Initialized() bool { return m.initialized }

// Version returns the major/minor version reported by eglInitialize.
func (m *Manager) Version() (int, int) { return int(m.major), int(m.minor) }

// Extensions returns the display extension string, for diagnostics.
func (m *Manager) Extensions() string { return m.extensions }

var libraryNames = []string{"libEGL.so.1", "libEGL.so"}

// Init loads the EGL library, resolves the capability table, acquires
// and initializes a display, and probes extensions. It is idempotent.
func (m *Manager) Init() error {
	if m.initialized {
		return nil
	}

	lib, name, err := m.loader.Open(libraryNames...)
	if err != nil {
		return werr.Wrap(werr.ApiUnavailable, err, "EGL library not found")
	}
	m.lib = lib
	m.libName = name

	a, missing, err := loadAPI(m.loader, lib)
	if err != nil {
		m.rollback()
		return werr.Wrap(werr.PlatformError, err, "failed to resolve EGL entry point %q", missing)
	}
	m.a = a

	return m.setup()
}

// setup runs the display half of initialization against the installed
// capability table: platform detection, display acquisition,
// eglInitialize and extension probing.
func (m *Manager) setup() error {
	a := m.a

	// Pre-1.5 implementations may not support querying extensions
	// without a display; treat an empty result as no client extensions.
	clientExtensions := a.queryString(0, eglExtensions)
	if stringInExtensions("EGL_EXT_platform_base", clientExtensions) {
		a.resolvePlatformEntryPoints()
	}

	if platform, nativeDisplay, attribs, ok := m.nativePlatform(); ok && a.getPlatformDisplayEXT != nil {
		attribs = append(attribs, eglNone)
		m.display = a.getPlatformDisplayEXT(platform, nativeDisplay, &attribs[0])
		m.platformExt = m.display != 0
	}
	if m.display == 0 {
		m.display = a.getDisplay(0)
	}
	if m.display == 0 {
		m.rollback()
		return werr.New(werr.ApiUnavailable, "failed to get EGL display: %s", errorString(a.getError()))
	}

	if a.initialize(m.display, &m.major, &m.minor) != eglTrue {
		code := a.getError()
		m.display = 0
		m.rollback()
		return werr.New(werr.ApiUnavailable, "failed to initialize EGL: %s", errorString(code))
	}

	m.extensions = a.queryString(m.display, eglExtensions)
	m.khrCreateContext = stringInExtensions("EGL_KHR_create_context", m.extensions)
	m.khrCreateContextNoError = stringInExtensions("EGL_KHR_create_context_no_error", m.extensions)
	m.khrGLColorspace = stringInExtensions("EGL_KHR_gl_colorspace", m.extensions)
	m.khrGetAllProcAddresses = stringInExtensions("EGL_KHR_get_all_proc_addresses", m.extensions)
	m.khrContextFlushControl = stringInExtensions("EGL_KHR_context_flush_control", m.extensions)
	m.extPresentOpaque = stringInExtensions("EGL_EXT_present_opaque", m.extensions)

	m.initialized = true
	m.logger.Debug("EGL initialized",
		"library", m.libName,
		"version", fmt.Sprintf("%d.%d", m.major, m.minor),
		"platform_display", m.platformExt)
	return nil
}

func (m *Manager) nativePlatform() (uint32, uintptr, []int32, bool) {
	if m.native == nil {
		return 0, 0, nil, false
	}
	return m.native.EGLPlatform()
}

func (m *Manager) rollback() {
	if m.lib != 0 {
		m.loader.Close(m.lib)
		m.lib = 0
	}
	m.libName = ""
	m.a = nil
}

// TerminateDisplay releases the EGL display. The library itself and any
// deferred client libraries stay loaded until Unload, which must run
// only after the native connection is torn down.
func (m *Manager) TerminateDisplay() {
	if m.display != 0 && m.a != nil {
		m.a.terminate(m.display)
		m.display = 0
	}
	m.initialized = false
}

// Unload closes deferred client libraries and the EGL library. Call
// after the native connection is closed; see TerminateDisplay.
func (m *Manager) Unload() {
	for _, lib := range m.deferredLibs {
		m.loader.Close(lib)
	}
	m.deferredLibs = nil
	m.rollback()
}

func (m *Manager) requireInit() error {
	if !m.initialized || m.a == nil {
		return werr.New(werr.ApiUnavailable, "EGL has not been initialized")
	}
	if m.display == 0 {
		return werr.New(werr.ApiUnavailable, "EGL display has not been acquired")
	}
	return nil
}

// stringInExtensions reports whether the space-separated extension list
// contains name as a full word.
func stringInExtensions(name, extensions string) bool {
	for _, ext := range strings.Fields(extensions) {
		if ext == name {
			return true
		}
	}
	return false
}
