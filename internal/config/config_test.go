package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/glwin"
	"github.com/1broseidon/glwin/event"
)

func TestParse_EmptyYieldsDefaults(t *testing.T) {
	p, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Window.Width != 800 || p.Window.Height != 600 {
		t.Fatalf("window = %dx%d, want 800x600", p.Window.Width, p.Window.Height)
	}
	if p.Context.API != APIOpenGL || p.Context.Major != 1 || p.Context.Minor != 0 {
		t.Fatalf("context = %+v, want opengl 1.0", p.Context)
	}
	if !p.Framebuffer.DoubleBuffer || p.Framebuffer.DepthBits != 24 {
		t.Fatalf("framebuffer = %+v, want double-buffered with 24-bit depth", p.Framebuffer)
	}
	if p.Backend != BackendAny || p.SwapInterval != 1 || p.LogLevel != "info" {
		t.Fatalf("profile = %+v, want default backend, swap interval and log level", p)
	}
}

func TestParse_OverlaysSetFields(t *testing.T) {
	p, err := Parse([]byte(`
backend: headless
window:
  title: capture
  width: 1280
context:
  api: opengles
  major: 2
  minor: 0
framebuffer:
  samples: 4
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Backend != BackendHeadless {
		t.Fatalf("Backend = %q, want %q", p.Backend, BackendHeadless)
	}
	if p.Window.Title != "capture" || p.Window.Width != 1280 {
		t.Fatalf("window = %+v, want capture 1280 wide", p.Window)
	}
	// Unset keys keep their defaults.
	if p.Window.Height != 600 || !p.Window.Resizable {
		t.Fatalf("window = %+v, want default height and resizable", p.Window)
	}
	if p.Context.API != APIOpenGLES || p.Context.Major != 2 {
		t.Fatalf("context = %+v, want opengles 2.0", p.Context)
	}
	if p.Framebuffer.Samples != 4 || p.Framebuffer.RedBits != 8 {
		t.Fatalf("framebuffer = %+v, want 4 samples and default bits", p.Framebuffer)
	}
}

func TestParse_ExplicitZeroOverridesDefault(t *testing.T) {
	p, err := Parse([]byte("window:\n  resizable: false\nswap_interval: 0\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Window.Resizable {
		t.Fatal("Resizable = true, want explicit false kept")
	}
	if p.SwapInterval != 0 {
		t.Fatalf("SwapInterval = %d, want explicit 0 kept", p.SwapInterval)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("windw:\n  width: 800\n"))
	if err == nil {
		t.Fatal("Parse() accepted an unknown top-level key")
	}
	if !strings.Contains(err.Error(), "windw") {
		t.Fatalf("error %q does not name the unknown key", err)
	}
}

func TestParse_ValidatesValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		path string
	}{
		{"bad backend", "backend: wayland\n", "backend"},
		{"bad log level", "log_level: verbose\n", "log_level"},
		{"negative swap interval", "swap_interval: -1\n", "swap_interval"},
		{"zero width", "window:\n  width: 0\n", "window.width"},
		{"opacity above one", "window:\n  opacity: 1.5\n", "window.opacity"},
		{"bad cursor mode", "window:\n  cursor_mode: captured\n", "window.cursor_mode"},
		{"bad api", "context:\n  api: vulkan\n", "context.api"},
		{"bad gl profile", "context:\n  profile: legacy\n", "context.profile"},
		{"bad sample count", "framebuffer:\n  samples: -2\n", "framebuffer.samples"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Parse() error = %v, want a ValidationError", err)
			}
			if verr.Path != tc.path {
				t.Fatalf("Path = %q, want %q", verr.Path, tc.path)
			}
		})
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Window.Width != 800 {
		t.Fatalf("Width = %d, want the default 800", p.Window.Width)
	}
}

func TestLoad_ReportsFileInErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("backend: wayland\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() accepted an invalid profile")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error %q does not name the file", err)
	}
}

func TestWindowConfig_MapsEnums(t *testing.T) {
	p, err := Parse([]byte(`
window:
  title: mapped
  decorated: false
context:
  api: opengles
  major: 3
  minor: 0
framebuffer:
  srgb: true
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	cfg := p.WindowConfig()
	if cfg.Title != "mapped" || cfg.Decorated {
		t.Fatalf("cfg = %+v, want undecorated window titled mapped", cfg)
	}
	if cfg.Context.API != glwin.OpenGLESAPI || cfg.Context.Major != 3 {
		t.Fatalf("context = %+v, want OpenGL ES 3.0", cfg.Context)
	}
	if !cfg.Framebuffer.SRGB || cfg.Framebuffer.DepthBits != 24 {
		t.Fatalf("framebuffer = %+v, want sRGB with default depth", cfg.Framebuffer)
	}
}

func TestPlatformConfig_MapsBackend(t *testing.T) {
	p := DefaultProfile()
	p.Backend = BackendHeadless
	p.WatchDevices = true
	cfg := p.PlatformConfig(nil)
	if cfg.Backend != glwin.HeadlessBackend {
		t.Fatalf("Backend = %v, want %v", cfg.Backend, glwin.HeadlessBackend)
	}
	if !cfg.WatchDevices {
		t.Fatal("WatchDevices not carried over")
	}
}

func TestCursorModeAndLogLevel(t *testing.T) {
	p := DefaultProfile()
	p.Window.CursorMode = CursorDisabled
	if got := p.CursorMode(); got != event.CursorDisabled {
		t.Fatalf("CursorMode() = %v, want %v", got, event.CursorDisabled)
	}
	p.LogLevel = "debug"
	if got := p.SlogLevel(); got != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v, want %v", got, slog.LevelDebug)
	}
}
