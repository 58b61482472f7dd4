package glwin

import (
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

// DontCare marks a framebuffer preference the caller leaves to the
// implementation.
const DontCare = -1

// ContextAPI selects the rendering API a window's context speaks.
type ContextAPI int

const (
	// NoAPI creates a bare window without a rendering context.
	NoAPI ContextAPI = iota
	// OpenGLAPI requests a desktop OpenGL context.
	OpenGLAPI
	// OpenGLESAPI requests an OpenGL ES context.
	OpenGLESAPI
)

// ContextProfile selects the desktop OpenGL profile.
type ContextProfile int

const (
	AnyProfile ContextProfile = iota
	CoreProfile
	CompatProfile
)

// ContextRobustness selects the context robustness strategy.
type ContextRobustness int

const (
	NoRobustness ContextRobustness = iota
	NoResetNotification
	LoseContextOnReset
)

// ContextRelease selects the context flush behavior on release.
type ContextRelease int

const (
	AnyRelease ContextRelease = iota
	ReleaseFlush
	ReleaseNone
)

// ContextConfig declares the rendering context a window is created
// with. The zero value means no context at all; use
// DefaultContextConfig for a conventional OpenGL request.
type ContextConfig struct {
	API   ContextAPI
	Major int
	Minor int

	Profile    ContextProfile
	Forward    bool
	Debug      bool
	NoError    bool
	Robustness ContextRobustness
	Release    ContextRelease

	// Share is an existing window whose context the new one shares
	// objects with.
	Share *Window
}

// DefaultContextConfig returns a baseline OpenGL context request. Any
// driver can satisfy version 1.0, and contexts are free to report a
// newer compatible version.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{API: OpenGLAPI, Major: 1, Minor: 0}
}

// toPlatform validates the request and resolves the share window to
// its native context handle.
func (c ContextConfig) toPlatform() (platform.ContextConfig, error) {
	out := platform.ContextConfig{
		Major:   c.Major,
		Minor:   c.Minor,
		Forward: c.Forward,
		Debug:   c.Debug,
		NoError: c.NoError,
	}

	switch c.API {
	case NoAPI:
		out.API = platform.NoAPI
		return out, nil
	case OpenGLAPI:
		out.API = platform.OpenGL
		// Versions beyond 3.3 follow the major.minor scheme without
		// gaps, so only the known series need their minors checked.
		if c.Major < 1 || c.Minor < 0 ||
			(c.Major == 1 && c.Minor > 5) ||
			(c.Major == 2 && c.Minor > 1) ||
			(c.Major == 3 && c.Minor > 3) {
			return out, werr.New(werr.InvalidValue, "invalid OpenGL version %d.%d", c.Major, c.Minor)
		}
		if c.Forward && c.Major < 3 {
			return out, werr.New(werr.InvalidValue, "forward compatibility requires OpenGL 3.0 or later")
		}
		if c.Profile != AnyProfile && (c.Major < 3 || (c.Major == 3 && c.Minor < 2)) {
			return out, werr.New(werr.InvalidValue, "context profiles require OpenGL 3.2 or later")
		}
	case OpenGLESAPI:
		out.API = platform.OpenGLES
		if c.Major < 1 || c.Minor < 0 || (c.Major == 1 && c.Minor > 1) {
			return out, werr.New(werr.InvalidValue, "invalid OpenGL ES version %d.%d", c.Major, c.Minor)
		}
	default:
		return out, werr.New(werr.InvalidValue, "invalid client API %d", int(c.API))
	}

	switch c.Profile {
	case AnyProfile:
	case CoreProfile:
		out.Profile = platform.CoreProfile
	case CompatProfile:
		out.Profile = platform.CompatProfile
	default:
		return out, werr.New(werr.InvalidValue, "invalid context profile %d", int(c.Profile))
	}

	switch c.Robustness {
	case NoRobustness:
	case NoResetNotification:
		out.Robustness = platform.NoResetNotification
	case LoseContextOnReset:
		out.Robustness = platform.LoseContextOnReset
	default:
		return out, werr.New(werr.InvalidValue, "invalid robustness strategy %d", int(c.Robustness))
	}

	switch c.Release {
	case AnyRelease:
	case ReleaseFlush:
		out.Release = platform.ReleaseBehaviorFlush
	case ReleaseNone:
		out.Release = platform.ReleaseBehaviorNone
	default:
		return out, werr.New(werr.InvalidValue, "invalid release behavior %d", int(c.Release))
	}

	if c.Share != nil {
		ctx := c.Share.w.Context()
		if ctx == nil {
			return out, werr.New(werr.NoWindowContext, "the share window has no rendering context")
		}
		out.Share = ctx.NativeHandle()
	}
	return out, nil
}

// FramebufferConfig declares the framebuffer a window's surface is
// chosen against. Fields set to DontCare impose no preference.
type FramebufferConfig struct {
	RedBits     int
	GreenBits   int
	BlueBits    int
	AlphaBits   int
	DepthBits   int
	StencilBits int
	Samples     int

	DoubleBuffer bool
	SRGB         bool
	Transparent  bool
	Stereo       bool
}

// DefaultFramebufferConfig returns the conventional double-buffered
// 32-bit true color framebuffer with depth and stencil.
func DefaultFramebufferConfig() FramebufferConfig {
	return FramebufferConfig{
		RedBits:      8,
		GreenBits:    8,
		BlueBits:     8,
		AlphaBits:    8,
		DepthBits:    24,
		StencilBits:  8,
		DoubleBuffer: true,
	}
}

func (f FramebufferConfig) toInternal() fbconfig.Config {
	return fbconfig.Config{
		RedBits:      f.RedBits,
		GreenBits:    f.GreenBits,
		BlueBits:     f.BlueBits,
		AlphaBits:    f.AlphaBits,
		DepthBits:    f.DepthBits,
		StencilBits:  f.StencilBits,
		Samples:      f.Samples,
		DoubleBuffer: f.DoubleBuffer,
		SRGB:         f.SRGB,
		Transparent:  f.Transparent,
		Stereo:       f.Stereo,
	}
}

// WindowConfig declares a window creation request.
type WindowConfig struct {
	Title  string
	Width  int
	Height int

	Visible      bool
	Focused      bool
	Resizable    bool
	Decorated    bool
	Floating     bool
	Maximized    bool
	AutoIconify  bool
	CenterCursor bool

	// ClassName and InstanceName name the window class; empty values
	// fall back to the environment and the title.
	ClassName    string
	InstanceName string

	// Monitor, when set, creates the window fullscreen on that
	// monitor.
	Monitor *Monitor

	Context     ContextConfig
	Framebuffer FramebufferConfig
}

// DefaultWindowConfig returns a visible, focused, resizable and
// decorated window request carrying the default context and
// framebuffer configurations.
func DefaultWindowConfig(title string, width, height int) WindowConfig {
	return WindowConfig{
		Title:        title,
		Width:        width,
		Height:       height,
		Visible:      true,
		Focused:      true,
		Resizable:    true,
		Decorated:    true,
		AutoIconify:  true,
		CenterCursor: true,
		Context:      DefaultContextConfig(),
		Framebuffer:  DefaultFramebufferConfig(),
	}
}

func (cfg WindowConfig) toPlatform() platform.WindowConfig {
	return platform.WindowConfig{
		Title:        cfg.Title,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Visible:      cfg.Visible,
		Focused:      cfg.Focused,
		Resizable:    cfg.Resizable,
		Decorated:    cfg.Decorated,
		Floating:     cfg.Floating,
		Maximized:    cfg.Maximized,
		AutoIconify:  cfg.AutoIconify,
		ClassName:    cfg.ClassName,
		InstanceName: cfg.InstanceName,
		Monitor:      cfg.Monitor.toPlatform(),
		CenterCursor: cfg.CenterCursor,
	}
}

// Monitor describes a connected display output in virtual screen
// coordinates.
type Monitor struct {
	Name    string
	X, Y    int
	Width   int
	Height  int
	Primary bool

	output uint32
}

func monitorFromPlatform(m platform.Monitor) Monitor {
	return Monitor{
		Name:    m.Name,
		X:       m.X,
		Y:       m.Y,
		Width:   m.Width,
		Height:  m.Height,
		Primary: m.Primary,
		output:  m.Output,
	}
}

func (m *Monitor) toPlatform() *platform.Monitor {
	if m == nil {
		return nil
	}
	return &platform.Monitor{
		Name:    m.Name,
		X:       m.X,
		Y:       m.Y,
		Width:   m.Width,
		Height:  m.Height,
		Primary: m.Primary,
		Output:  m.output,
	}
}
