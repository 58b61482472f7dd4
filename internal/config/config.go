// Package config loads the YAML profile describing the window the
// probe tool creates: backend selection, window attributes, context
// version and framebuffer preferences. Unset fields take defaults, so
// an empty profile is a valid one.
package config

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/glwin"
	"github.com/1broseidon/glwin/event"
)

// BackendName selects the window system in a profile.
type BackendName string

const (
	BackendAny      BackendName = "any"
	BackendX11      BackendName = "x11"
	BackendHeadless BackendName = "headless"
)

// APIName selects the rendering API in a profile.
type APIName string

const (
	APINone     APIName = "none"
	APIOpenGL   APIName = "opengl"
	APIOpenGLES APIName = "opengles"
)

// GLProfileName selects the desktop OpenGL profile.
type GLProfileName string

const (
	GLProfileAny    GLProfileName = "any"
	GLProfileCore   GLProfileName = "core"
	GLProfileCompat GLProfileName = "compat"
)

// CursorModeName selects the cursor behavior over the probe window.
type CursorModeName string

const (
	CursorNormal   CursorModeName = "normal"
	CursorHidden   CursorModeName = "hidden"
	CursorDisabled CursorModeName = "disabled"
)

// Window describes the probe window.
type Window struct {
	Title      string         `yaml:"title"`
	Width      int            `yaml:"width"`
	Height     int            `yaml:"height"`
	Resizable  bool           `yaml:"resizable"`
	Decorated  bool           `yaml:"decorated"`
	Floating   bool           `yaml:"floating"`
	Maximized  bool           `yaml:"maximized"`
	Fullscreen bool           `yaml:"fullscreen"`
	Opacity    float64        `yaml:"opacity"`
	CursorMode CursorModeName `yaml:"cursor_mode"`
}

// Context describes the rendering context request.
type Context struct {
	API               APIName       `yaml:"api"`
	Major             int           `yaml:"major"`
	Minor             int           `yaml:"minor"`
	Profile           GLProfileName `yaml:"profile"`
	ForwardCompatible bool          `yaml:"forward_compatible"`
	Debug             bool          `yaml:"debug"`
}

// Framebuffer describes the framebuffer preferences. A value of -1
// leaves the choice to the implementation.
type Framebuffer struct {
	RedBits      int  `yaml:"red_bits"`
	GreenBits    int  `yaml:"green_bits"`
	BlueBits     int  `yaml:"blue_bits"`
	AlphaBits    int  `yaml:"alpha_bits"`
	DepthBits    int  `yaml:"depth_bits"`
	StencilBits  int  `yaml:"stencil_bits"`
	Samples      int  `yaml:"samples"`
	SRGB         bool `yaml:"srgb"`
	Transparent  bool `yaml:"transparent"`
	DoubleBuffer bool `yaml:"double_buffer"`
}

// Profile is the effective probe configuration after defaulting.
type Profile struct {
	Backend      BackendName `yaml:"backend"`
	Display      string      `yaml:"display"`
	WatchDevices bool        `yaml:"watch_devices"`
	LogLevel     string      `yaml:"log_level"`
	SwapInterval int         `yaml:"swap_interval"`

	Window      Window      `yaml:"window"`
	Context     Context     `yaml:"context"`
	Framebuffer Framebuffer `yaml:"framebuffer"`
}

// DefaultProfile returns the profile an empty file resolves to: a
// visible 800x600 OpenGL window on the native backend.
func DefaultProfile() *Profile {
	return &Profile{
		Backend:      BackendAny,
		LogLevel:     "info",
		SwapInterval: 1,
		Window: Window{
			Title:      "glwin probe",
			Width:      800,
			Height:     600,
			Resizable:  true,
			Decorated:  true,
			Opacity:    1,
			CursorMode: CursorNormal,
		},
		Context: Context{
			API:     APIOpenGL,
			Major:   1,
			Minor:   0,
			Profile: GLProfileAny,
		},
		Framebuffer: Framebuffer{
			RedBits:      8,
			GreenBits:    8,
			BlueBits:     8,
			AlphaBits:    8,
			DepthBits:    24,
			StencilBits:  8,
			DoubleBuffer: true,
		},
	}
}

// ValidationError reports an invalid profile value at a YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the profile for values no backend could accept.
// Context version combinations are left to window creation, which
// rejects them with precise errors.
func (p *Profile) Validate() error {
	switch p.Backend {
	case BackendAny, BackendX11, BackendHeadless:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: any, x11, headless")}
	}
	switch p.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if p.SwapInterval < 0 {
		return &ValidationError{Path: "swap_interval", Err: fmt.Errorf("swap_interval must be >= 0")}
	}
	if p.Window.Width < 1 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be >= 1")}
	}
	if p.Window.Height < 1 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be >= 1")}
	}
	if p.Window.Opacity < 0 || p.Window.Opacity > 1 {
		return &ValidationError{Path: "window.opacity", Err: fmt.Errorf("opacity must be between 0 and 1")}
	}
	switch p.Window.CursorMode {
	case CursorNormal, CursorHidden, CursorDisabled:
	default:
		return &ValidationError{Path: "window.cursor_mode", Err: fmt.Errorf("cursor_mode must be one of: normal, hidden, disabled")}
	}
	switch p.Context.API {
	case APINone, APIOpenGL, APIOpenGLES:
	default:
		return &ValidationError{Path: "context.api", Err: fmt.Errorf("api must be one of: none, opengl, opengles")}
	}
	switch p.Context.Profile {
	case GLProfileAny, GLProfileCore, GLProfileCompat:
	default:
		return &ValidationError{Path: "context.profile", Err: fmt.Errorf("profile must be one of: any, core, compat")}
	}
	for _, bits := range []struct {
		path  string
		value int
	}{
		{"framebuffer.red_bits", p.Framebuffer.RedBits},
		{"framebuffer.green_bits", p.Framebuffer.GreenBits},
		{"framebuffer.blue_bits", p.Framebuffer.BlueBits},
		{"framebuffer.alpha_bits", p.Framebuffer.AlphaBits},
		{"framebuffer.depth_bits", p.Framebuffer.DepthBits},
		{"framebuffer.stencil_bits", p.Framebuffer.StencilBits},
		{"framebuffer.samples", p.Framebuffer.Samples},
	} {
		if bits.value < -1 {
			return &ValidationError{Path: bits.path, Err: fmt.Errorf("must be >= 0, or -1 for no preference")}
		}
	}
	return nil
}

// SlogLevel maps the profile log level onto slog.
func (p *Profile) SlogLevel() slog.Level {
	switch p.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// PlatformConfig converts the profile into an Init configuration.
func (p *Profile) PlatformConfig(logger *slog.Logger) glwin.Config {
	cfg := glwin.Config{
		Display:      p.Display,
		Logger:       logger,
		WatchDevices: p.WatchDevices,
	}
	switch p.Backend {
	case BackendX11:
		cfg.Backend = glwin.X11Backend
	case BackendHeadless:
		cfg.Backend = glwin.HeadlessBackend
	}
	return cfg
}

// WindowConfig converts the profile into a window creation request.
// Fullscreen placement needs a live monitor, so the caller resolves
// the Monitor field itself.
func (p *Profile) WindowConfig() glwin.WindowConfig {
	cfg := glwin.DefaultWindowConfig(p.Window.Title, p.Window.Width, p.Window.Height)
	cfg.Resizable = p.Window.Resizable
	cfg.Decorated = p.Window.Decorated
	cfg.Floating = p.Window.Floating
	cfg.Maximized = p.Window.Maximized

	cfg.Context = glwin.ContextConfig{
		Major:   p.Context.Major,
		Minor:   p.Context.Minor,
		Forward: p.Context.ForwardCompatible,
		Debug:   p.Context.Debug,
	}
	switch p.Context.API {
	case APIOpenGL:
		cfg.Context.API = glwin.OpenGLAPI
	case APIOpenGLES:
		cfg.Context.API = glwin.OpenGLESAPI
	}
	switch p.Context.Profile {
	case GLProfileCore:
		cfg.Context.Profile = glwin.CoreProfile
	case GLProfileCompat:
		cfg.Context.Profile = glwin.CompatProfile
	}

	cfg.Framebuffer = glwin.FramebufferConfig{
		RedBits:      p.Framebuffer.RedBits,
		GreenBits:    p.Framebuffer.GreenBits,
		BlueBits:     p.Framebuffer.BlueBits,
		AlphaBits:    p.Framebuffer.AlphaBits,
		DepthBits:    p.Framebuffer.DepthBits,
		StencilBits:  p.Framebuffer.StencilBits,
		Samples:      p.Framebuffer.Samples,
		SRGB:         p.Framebuffer.SRGB,
		Transparent:  p.Framebuffer.Transparent,
		DoubleBuffer: p.Framebuffer.DoubleBuffer,
	}
	return cfg
}

// CursorMode converts the profile cursor mode to the event constant.
func (p *Profile) CursorMode() event.CursorMode {
	switch p.Window.CursorMode {
	case CursorHidden:
		return event.CursorHidden
	case CursorDisabled:
		return event.CursorDisabled
	}
	return event.CursorNormal
}
