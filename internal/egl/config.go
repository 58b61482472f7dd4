package egl

import (
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

// attrib reads a single config attribute, treating failures as zero the
// same way a missing attribute reads as zero.
func (m *Manager) attrib(config uintptr, name int32) int32 {
	var value int32
	m.a.getConfigAttrib(m.display, config, name, &value)
	return value
}

// chooseConfig enumerates the display's EGLConfigs, filters them down
// to ones usable for the requested client API and surface kind, and
// picks the closest match to the desired framebuffer config.
func (m *Manager) chooseConfig(ctxconfig platform.ContextConfig, desired fbconfig.Config) (fbconfig.Config, error) {
	if desired.Stereo {
		// No EGLConfig exposes stereo buffers, so reject before
		// touching the display at all.
		return fbconfig.Config{}, werr.New(werr.FormatUnavailable, "stereo rendering is not supported by EGL")
	}

	apiBit := int32(eglOpenGLBit)
	if ctxconfig.API == platform.OpenGLES {
		if ctxconfig.Major == 1 {
			apiBit = eglOpenGLESBit
		} else {
			apiBit = eglOpenGLES2Bit
		}
	}

	surfaceBit := int32(eglWindowBit)
	if m.native != nil && !m.native.WantsWindowSurfaces() {
		surfaceBit = eglPbufferBit
	}

	var count int32
	if m.a.getConfigs(m.display, nil, 0, &count) != eglTrue || count == 0 {
		return fbconfig.Config{}, werr.New(werr.ApiUnavailable, "no EGLConfigs returned")
	}
	handles := make([]uintptr, count)
	if m.a.getConfigs(m.display, &handles[0], count, &count) != eglTrue {
		return fbconfig.Config{}, werr.New(werr.ApiUnavailable, "failed to enumerate EGLConfigs: %s", errorString(m.a.getError()))
	}

	usable := make([]fbconfig.Config, 0, count)
	wrongAPI := false
	for _, handle := range handles[:count] {
		if m.attrib(handle, eglColorBufferType) != eglRGBBuffer {
			continue
		}
		if m.attrib(handle, eglSurfaceType)&surfaceBit == 0 {
			continue
		}

		var visual uint32
		if m.native != nil && m.native.HasNativeVisuals() {
			visual = uint32(m.attrib(handle, eglNativeVisualID))
			if visual == 0 {
				continue
			}
		}

		if m.attrib(handle, eglRenderableType)&apiBit == 0 {
			// Remember that the config only failed on the client API,
			// so exhaustion reports a missing API rather than a
			// missing format.
			wrongAPI = true
			continue
		}

		u := fbconfig.Config{
			RedBits:     int(m.attrib(handle, eglRedSize)),
			GreenBits:   int(m.attrib(handle, eglGreenSize)),
			BlueBits:    int(m.attrib(handle, eglBlueSize)),
			AlphaBits:   int(m.attrib(handle, eglAlphaSize)),
			DepthBits:   int(m.attrib(handle, eglDepthSize)),
			StencilBits: int(m.attrib(handle, eglStencilSize)),
			Samples:     int(m.attrib(handle, eglSamples)),
			// EGL does not distinguish single and double buffering in
			// the config; the surface's render buffer does.
			DoubleBuffer: desired.DoubleBuffer,
			Handle:       handle,
		}
		if desired.Transparent && visual != 0 {
			u.Transparent = m.native.VisualTransparent(visual)
		}
		usable = append(usable, u)
	}

	if len(usable) == 0 {
		if wrongAPI {
			if ctxconfig.API == platform.OpenGLES {
				return fbconfig.Config{}, werr.New(werr.ApiUnavailable,
					"failed to find support for OpenGL ES %d.%d", ctxconfig.Major, ctxconfig.Minor)
			}
			return fbconfig.Config{}, werr.New(werr.ApiUnavailable, "failed to find support for OpenGL")
		}
		return fbconfig.Config{}, werr.New(werr.FormatUnavailable, "failed to find a usable EGLConfig")
	}

	closest, ok := fbconfig.Choose(desired, usable)
	if !ok {
		return fbconfig.Config{}, werr.New(werr.FormatUnavailable, "failed to find a matching EGLConfig")
	}
	return closest, nil
}

// ChooseVisual returns the native visual of the config the given
// request selects. Window creation calls this before the window
// exists; selection is deterministic, so creating the context
// afterwards lands on the same config.
func (m *Manager) ChooseVisual(ctxconfig platform.ContextConfig, desired fbconfig.Config) (uint32, error) {
	if err := m.requireInit(); err != nil {
		return 0, err
	}
	chosen, err := m.chooseConfig(ctxconfig, desired)
	if err != nil {
		return 0, err
	}
	visual := uint32(m.attrib(chosen.Handle, eglNativeVisualID))
	if visual == 0 {
		return 0, werr.New(werr.FormatUnavailable, "chosen EGLConfig has no native visual")
	}
	return visual, nil
}
