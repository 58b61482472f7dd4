package egl

import (
	"errors"

	"github.com/ebitengine/purego"

	"github.com/1broseidon/glwin/internal/dylib"
)

// api is the typed EGL entry point table. Every field is resolved once
// at load time; tests install plain Go functions instead.
type api struct {
	bindAPI                func(api uint32) uint32
	createContext          func(display, config, share uintptr, attribs *int32) uintptr
	createPbufferSurface   func(display, config uintptr, attribs *int32) uintptr
	createWindowSurface    func(display, config, window uintptr, attribs *int32) uintptr
	destroyContext         func(display, context uintptr) uint32
	destroySurface         func(display, surface uintptr) uint32
	getConfigAttrib        func(display, config uintptr, attrib int32, value *int32) uint32
	getConfigs             func(display uintptr, configs *uintptr, size int32, count *int32) uint32
	getDisplay             func(nativeDisplay uintptr) uintptr
	getError               func() int32
	getProcAddress         func(name string) uintptr
	initialize             func(display uintptr, major, minor *int32) uint32
	makeCurrent            func(display, draw, read, context uintptr) uint32
	queryString            func(display uintptr, name int32) string
	swapBuffers            func(display, surface uintptr) uint32
	swapInterval           func(display uintptr, interval int32) uint32
	terminate              func(display uintptr) uint32

	// EGL_EXT_platform_base, resolved through eglGetProcAddress.
	getPlatformDisplayEXT          func(platform uint32, nativeDisplay uintptr, attribs *int32) uintptr
	createPlatformWindowSurfaceEXT func(display, config, nativeWindow uintptr, attribs *int32) uintptr
}

// loadAPI resolves the required entry points from lib. On failure it
// returns the name of the symbol that could not be resolved so the
// caller can report it; the optional platform entry points are resolved
// separately through eglGetProcAddress once the client extension string
// confirms EGL_EXT_platform_base.
func loadAPI(loader *dylib.Loader, lib dylib.Module) (*api, string, error) {
	a := &api{}
	required := []struct {
		name string
		fn   any
	}{
		{"eglBindAPI", &a.bindAPI},
		{"eglCreateContext", &a.createContext},
		{"eglCreatePbufferSurface", &a.createPbufferSurface},
		{"eglCreateWindowSurface", &a.createWindowSurface},
		{"eglDestroyContext", &a.destroyContext},
		{"eglDestroySurface", &a.destroySurface},
		{"eglGetConfigAttrib", &a.getConfigAttrib},
		{"eglGetConfigs", &a.getConfigs},
		{"eglGetDisplay", &a.getDisplay},
		{"eglGetError", &a.getError},
		{"eglGetProcAddress", &a.getProcAddress},
		{"eglInitialize", &a.initialize},
		{"eglMakeCurrent", &a.makeCurrent},
		{"eglQueryString", &a.queryString},
		{"eglSwapBuffers", &a.swapBuffers},
		{"eglSwapInterval", &a.swapInterval},
		{"eglTerminate", &a.terminate},
	}
	for _, entry := range required {
		addr, err := loader.Resolve(lib, entry.name)
		if err != nil {
			return nil, entry.name, err
		}
		if addr == 0 {
			return nil, entry.name, errors.New("symbol resolved to nil")
		}
		purego.RegisterFunc(entry.fn, addr)
	}
	return a, "", nil
}

// resolvePlatformEntryPoints binds the EGL_EXT_platform_base entry
// points via eglGetProcAddress. Either may stay nil; callers fall back
// to the legacy display and surface paths.
func (a *api) resolvePlatformEntryPoints() {
	if addr := a.getProcAddress("eglGetPlatformDisplayEXT"); addr != 0 {
		purego.RegisterFunc(&a.getPlatformDisplayEXT, addr)
	}
	if addr := a.getProcAddress("eglCreatePlatformWindowSurfaceEXT"); addr != 0 {
		purego.RegisterFunc(&a.createPlatformWindowSurfaceEXT, addr)
	}
}
