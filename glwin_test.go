package glwin

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// testPlatform initializes a headless platform so the public surface
// can be exercised without a display server.
func testPlatform(t *testing.T) *Platform {
	t.Helper()
	p, err := Init(Config{Backend: HeadlessBackend})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(p.Terminate)
	return p
}

func TestInit_RejectsUnknownBackend(t *testing.T) {
	_, err := Init(Config{Backend: Backend(99)})
	if KindOf(err) != InvalidValue {
		t.Fatalf("KindOf(err) = %v, want %v", KindOf(err), InvalidValue)
	}
}

func TestBackend_ReportsSelection(t *testing.T) {
	p := testPlatform(t)
	if got := p.Backend(); got != HeadlessBackend {
		t.Fatalf("Backend() = %v, want %v", got, HeadlessBackend)
	}
}

func TestTerminate_IsIdempotent(t *testing.T) {
	p, err := Init(Config{Backend: HeadlessBackend})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := p.PollEvents(); err != nil {
		t.Fatalf("PollEvents() error: %v", err)
	}
	p.Terminate()
	p.Terminate()
	if err := p.PollEvents(); KindOf(err) != PlatformError {
		t.Fatalf("PollEvents() after Terminate: kind = %v, want %v", KindOf(err), PlatformError)
	}
}

func TestError_CarriesKindAndCause(t *testing.T) {
	p := testPlatform(t)

	err := p.WaitEventsTimeout(-time.Second)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not a *Error", err)
	}
	if e.Kind != InvalidValue {
		t.Fatalf("Kind = %v, want %v", e.Kind, InvalidValue)
	}
	if !strings.Contains(e.Error(), "invalid wait timeout") {
		t.Fatalf("Error() = %q, want the timeout message", e.Error())
	}
	if e.Unwrap() == nil {
		t.Fatal("Unwrap() = nil, want the internal cause")
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if kind := KindOf(errors.New("not ours")); kind != 0 {
		t.Fatalf("KindOf(foreign) = %v, want 0", kind)
	}
	if kind := KindOf(nil); kind != 0 {
		t.Fatalf("KindOf(nil) = %v, want 0", kind)
	}
}

func TestSetErrorHandler_ObservesReportedErrors(t *testing.T) {
	p := testPlatform(t)

	var seen []*Error
	prev := SetErrorHandler(func(e *Error) { seen = append(seen, e) })
	defer SetErrorHandler(prev)

	_ = p.WaitEventsTimeout(-time.Second)
	if len(seen) != 1 {
		t.Fatalf("handler observed %d errors, want 1", len(seen))
	}
	if seen[0].Kind != InvalidValue {
		t.Fatalf("observed kind = %v, want %v", seen[0].Kind, InvalidValue)
	}

	SetErrorHandler(prev)
	_ = p.WaitEventsTimeout(-time.Second)
	if len(seen) != 1 {
		t.Fatal("handler still observing after removal")
	}
}

func TestPostEmptyEvent_WakesWaitEvents(t *testing.T) {
	p := testPlatform(t)

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.PostEmptyEvent()
	}()

	done := make(chan error, 1)
	go func() { done <- p.WaitEvents() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitEvents() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitEvents() did not return after PostEmptyEvent")
	}
}

func TestMonitors_HeadlessSynthetic(t *testing.T) {
	p := testPlatform(t)

	monitors, err := p.Monitors()
	if err != nil {
		t.Fatalf("Monitors() error: %v", err)
	}
	if len(monitors) != 1 {
		t.Fatalf("len(monitors) = %d, want 1", len(monitors))
	}
	m := monitors[0]
	if !m.Primary || m.Width != 1920 || m.Height != 1080 {
		t.Fatalf("monitor = %+v, want a primary 1920x1080", m)
	}

	primary, err := p.PrimaryMonitor()
	if err != nil {
		t.Fatalf("PrimaryMonitor() error: %v", err)
	}
	if primary != m {
		t.Fatalf("PrimaryMonitor() = %+v, want %+v", primary, m)
	}
}

func TestClipboardString_RoundTrip(t *testing.T) {
	p := testPlatform(t)

	if _, err := p.ClipboardString(); KindOf(err) != FormatUnavailable {
		t.Fatalf("empty clipboard kind = %v, want %v", KindOf(err), FormatUnavailable)
	}
	if err := p.SetClipboardString("copied text"); err != nil {
		t.Fatalf("SetClipboardString() error: %v", err)
	}
	text, err := p.ClipboardString()
	if err != nil {
		t.Fatalf("ClipboardString() error: %v", err)
	}
	if text != "copied text" {
		t.Fatalf("ClipboardString() = %q, want %q", text, "copied text")
	}
}

func TestNativeQueries_RequireX11(t *testing.T) {
	p := testPlatform(t)

	if _, err := p.PrimaryString(); KindOf(err) != PlatformUnavailable {
		t.Fatalf("PrimaryString() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if err := p.SetPrimaryString("text"); KindOf(err) != PlatformUnavailable {
		t.Fatalf("SetPrimaryString() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if _, err := p.XCBConnection(); KindOf(err) != PlatformUnavailable {
		t.Fatalf("XCBConnection() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if _, err := p.DesktopWindows(); KindOf(err) != PlatformUnavailable {
		t.Fatalf("DesktopWindows() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if _, err := p.FindDesktopWindow("probe"); KindOf(err) != PlatformUnavailable {
		t.Fatalf("FindDesktopWindow() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if _, err := p.ActiveDesktopWindow(); KindOf(err) != PlatformUnavailable {
		t.Fatalf("ActiveDesktopWindow() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if _, _, err := p.Desktops(); KindOf(err) != PlatformUnavailable {
		t.Fatalf("Desktops() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
	if _, _, _, err := p.X11Extensions(); KindOf(err) != PlatformUnavailable {
		t.Fatalf("X11Extensions() kind = %v, want %v", KindOf(err), PlatformUnavailable)
	}
}

func TestSetModuleLoader_PartialTripletRejected(t *testing.T) {
	err := SetModuleLoader(func(string) (Module, error) { return 0, nil }, nil, nil)
	if KindOf(err) != InvalidValue {
		t.Fatalf("partial triplet kind = %v, want %v", KindOf(err), InvalidValue)
	}
	// All nil restores the system loader.
	if err := SetModuleLoader(nil, nil, nil); err != nil {
		t.Fatalf("SetModuleLoader(nil, nil, nil) error: %v", err)
	}
}

func TestSetModuleLoader_RoutesLibraryOpens(t *testing.T) {
	var opened []string
	err := SetModuleLoader(
		func(name string) (Module, error) {
			opened = append(opened, name)
			return 0, errors.New("refused")
		},
		func(Module) {},
		func(Module, string) (uintptr, error) { return 0, errors.New("refused") },
	)
	if err != nil {
		t.Fatalf("SetModuleLoader() error: %v", err)
	}
	defer SetModuleLoader(nil, nil, nil)

	p := testPlatform(t)
	if p.VulkanSupported() {
		t.Fatal("VulkanSupported() = true under a loader that refuses everything")
	}
	if len(opened) != 2 || opened[0] != "libvulkan.so.1" || opened[1] != "libvulkan.so" {
		t.Fatalf("opened = %v, want the vulkan loader candidates", opened)
	}
}

func TestRequiredInstanceExtensions_Headless(t *testing.T) {
	p := testPlatform(t)

	// Headless windows have nothing to present to, with or without a
	// Vulkan loader on the machine.
	if _, err := p.RequiredInstanceExtensions(); KindOf(err) != ApiUnavailable {
		t.Fatalf("RequiredInstanceExtensions() kind = %v, want %v", KindOf(err), ApiUnavailable)
	}
}

func TestBackendString(t *testing.T) {
	if got := X11Backend.String(); got != "x11" {
		t.Fatalf("X11Backend.String() = %q, want %q", got, "x11")
	}
	if got := HeadlessBackend.String(); got != "headless" {
		t.Fatalf("HeadlessBackend.String() = %q, want %q", got, "headless")
	}
}
