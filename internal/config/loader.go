package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rawProfile mirrors Profile with pointer fields so an absent key can
// be told apart from an explicit zero.
type rawProfile struct {
	Backend      *BackendName `yaml:"backend"`
	Display      *string      `yaml:"display"`
	WatchDevices *bool        `yaml:"watch_devices"`
	LogLevel     *string      `yaml:"log_level"`
	SwapInterval *int         `yaml:"swap_interval"`

	Window      rawWindow      `yaml:"window"`
	Context     rawContext     `yaml:"context"`
	Framebuffer rawFramebuffer `yaml:"framebuffer"`
}

type rawWindow struct {
	Title      *string         `yaml:"title"`
	Width      *int            `yaml:"width"`
	Height     *int            `yaml:"height"`
	Resizable  *bool           `yaml:"resizable"`
	Decorated  *bool           `yaml:"decorated"`
	Floating   *bool           `yaml:"floating"`
	Maximized  *bool           `yaml:"maximized"`
	Fullscreen *bool           `yaml:"fullscreen"`
	Opacity    *float64        `yaml:"opacity"`
	CursorMode *CursorModeName `yaml:"cursor_mode"`
}

type rawContext struct {
	API               *APIName       `yaml:"api"`
	Major             *int           `yaml:"major"`
	Minor             *int           `yaml:"minor"`
	Profile           *GLProfileName `yaml:"profile"`
	ForwardCompatible *bool          `yaml:"forward_compatible"`
	Debug             *bool          `yaml:"debug"`
}

type rawFramebuffer struct {
	RedBits      *int  `yaml:"red_bits"`
	GreenBits    *int  `yaml:"green_bits"`
	BlueBits     *int  `yaml:"blue_bits"`
	AlphaBits    *int  `yaml:"alpha_bits"`
	DepthBits    *int  `yaml:"depth_bits"`
	StencilBits  *int  `yaml:"stencil_bits"`
	Samples      *int  `yaml:"samples"`
	SRGB         *bool `yaml:"srgb"`
	Transparent  *bool `yaml:"transparent"`
	DoubleBuffer *bool `yaml:"double_buffer"`
}

// DefaultPath returns the standard profile location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "glwin-probe", "profile.yaml"), nil
}

// Load reads the profile at path, applies defaults for everything the
// file leaves unset and validates the result. A missing file yields
// the default profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProfile(), nil
		}
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	profile, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profile, nil
}

// Parse decodes YAML profile data, rejecting unknown keys, and returns
// the validated effective profile.
func Parse(data []byte) (*Profile, error) {
	var raw rawProfile
	if err := decodeStrictYAML(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	profile := DefaultProfile()
	raw.apply(profile)
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

// apply overlays every set raw field onto the profile.
func (r rawProfile) apply(p *Profile) {
	if r.Backend != nil {
		p.Backend = *r.Backend
	}
	if r.Display != nil {
		p.Display = *r.Display
	}
	if r.WatchDevices != nil {
		p.WatchDevices = *r.WatchDevices
	}
	if r.LogLevel != nil {
		p.LogLevel = *r.LogLevel
	}
	if r.SwapInterval != nil {
		p.SwapInterval = *r.SwapInterval
	}

	if r.Window.Title != nil {
		p.Window.Title = *r.Window.Title
	}
	if r.Window.Width != nil {
		p.Window.Width = *r.Window.Width
	}
	if r.Window.Height != nil {
		p.Window.Height = *r.Window.Height
	}
	if r.Window.Resizable != nil {
		p.Window.Resizable = *r.Window.Resizable
	}
	if r.Window.Decorated != nil {
		p.Window.Decorated = *r.Window.Decorated
	}
	if r.Window.Floating != nil {
		p.Window.Floating = *r.Window.Floating
	}
	if r.Window.Maximized != nil {
		p.Window.Maximized = *r.Window.Maximized
	}
	if r.Window.Fullscreen != nil {
		p.Window.Fullscreen = *r.Window.Fullscreen
	}
	if r.Window.Opacity != nil {
		p.Window.Opacity = *r.Window.Opacity
	}
	if r.Window.CursorMode != nil {
		p.Window.CursorMode = *r.Window.CursorMode
	}

	if r.Context.API != nil {
		p.Context.API = *r.Context.API
	}
	if r.Context.Major != nil {
		p.Context.Major = *r.Context.Major
	}
	if r.Context.Minor != nil {
		p.Context.Minor = *r.Context.Minor
	}
	if r.Context.Profile != nil {
		p.Context.Profile = *r.Context.Profile
	}
	if r.Context.ForwardCompatible != nil {
		p.Context.ForwardCompatible = *r.Context.ForwardCompatible
	}
	if r.Context.Debug != nil {
		p.Context.Debug = *r.Context.Debug
	}

	if r.Framebuffer.RedBits != nil {
		p.Framebuffer.RedBits = *r.Framebuffer.RedBits
	}
	if r.Framebuffer.GreenBits != nil {
		p.Framebuffer.GreenBits = *r.Framebuffer.GreenBits
	}
	if r.Framebuffer.BlueBits != nil {
		p.Framebuffer.BlueBits = *r.Framebuffer.BlueBits
	}
	if r.Framebuffer.AlphaBits != nil {
		p.Framebuffer.AlphaBits = *r.Framebuffer.AlphaBits
	}
	if r.Framebuffer.DepthBits != nil {
		p.Framebuffer.DepthBits = *r.Framebuffer.DepthBits
	}
	if r.Framebuffer.StencilBits != nil {
		p.Framebuffer.StencilBits = *r.Framebuffer.StencilBits
	}
	if r.Framebuffer.Samples != nil {
		p.Framebuffer.Samples = *r.Framebuffer.Samples
	}
	if r.Framebuffer.SRGB != nil {
		p.Framebuffer.SRGB = *r.Framebuffer.SRGB
	}
	if r.Framebuffer.Transparent != nil {
		p.Framebuffer.Transparent = *r.Framebuffer.Transparent
	}
	if r.Framebuffer.DoubleBuffer != nil {
		p.Framebuffer.DoubleBuffer = *r.Framebuffer.DoubleBuffer
	}
}
