package nullwin

import (
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

func testBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Connect(Options{Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	return b
}

func TestPostEmptyEvent_ReleasesWait(t *testing.T) {
	b := testBackend(t)

	go func() {
		time.Sleep(10 * time.Millisecond)
		b.PostEmptyEvent()
	}()
	if err := b.WaitEvents(); err != nil {
		t.Fatalf("WaitEvents() error: %v", err)
	}
}

func TestPostEmptyEvent_CoalescesPendingWakes(t *testing.T) {
	b := testBackend(t)

	b.PostEmptyEvent()
	b.PostEmptyEvent()
	b.PostEmptyEvent()

	// All three posts collapse into a single buffered wake.
	if err := b.WaitEvents(); err != nil {
		t.Fatalf("WaitEvents() error: %v", err)
	}
	start := time.Now()
	if err := b.WaitEventsTimeout(10 * time.Millisecond); err != nil {
		t.Fatalf("WaitEventsTimeout() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("second wait returned after %v, want the full timeout", elapsed)
	}
}

func TestPostDeviceEvent_ReleasesWait(t *testing.T) {
	b := testBackend(t)

	b.PostDeviceEvent("/dev/input/event3")
	if err := b.WaitEvents(); err != nil {
		t.Fatalf("WaitEvents() error: %v", err)
	}
}

func TestWaitEventsTimeout_Expires(t *testing.T) {
	b := testBackend(t)

	start := time.Now()
	if err := b.WaitEventsTimeout(5 * time.Millisecond); err != nil {
		t.Fatalf("WaitEventsTimeout() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Fatalf("wait returned after %v, want at least the timeout", elapsed)
	}
}

func TestWaitEventsTimeout_RejectsNegative(t *testing.T) {
	b := testBackend(t)

	err := b.WaitEventsTimeout(-1)
	if got := werr.KindOf(err); got != werr.InvalidValue {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.InvalidValue)
	}
}

func TestPollEvents_AfterTerminate(t *testing.T) {
	b := testBackend(t)

	if err := b.PollEvents(); err != nil {
		t.Fatalf("PollEvents() error: %v", err)
	}
	b.Terminate()
	err := b.PollEvents()
	if got := werr.KindOf(err); got != werr.PlatformError {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.PlatformError)
	}
}

func TestTerminate_DestroysWindows(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	b.Terminate()
	if !w.destroyed {
		t.Fatal("window survived Terminate")
	}
	if len(b.windows) != 0 {
		t.Fatalf("len(b.windows) = %d, want 0", len(b.windows))
	}
	// A second Terminate must not trip over the first.
	b.Terminate()
}

func TestMonitors_SingleSynthetic(t *testing.T) {
	b := testBackend(t)

	monitors, err := b.Monitors()
	if err != nil {
		t.Fatalf("Monitors() error: %v", err)
	}
	if len(monitors) != 1 {
		t.Fatalf("len(monitors) = %d, want 1", len(monitors))
	}
	m := monitors[0]
	if m.Name != "Headless" || !m.Primary {
		t.Fatalf("monitor = %+v, want primary Headless", m)
	}
	if m.Width != 1920 || m.Height != 1080 {
		t.Fatalf("monitor size = %dx%d, want 1920x1080", m.Width, m.Height)
	}

	primary, err := b.PrimaryMonitor()
	if err != nil {
		t.Fatalf("PrimaryMonitor() error: %v", err)
	}
	if primary != m {
		t.Fatalf("PrimaryMonitor() = %+v, want %+v", primary, m)
	}
}

func TestClipboard_RoundTrip(t *testing.T) {
	b := testBackend(t)

	if err := b.SetClipboard("headless text"); err != nil {
		t.Fatalf("SetClipboard() error: %v", err)
	}
	got, err := b.Clipboard()
	if err != nil {
		t.Fatalf("Clipboard() error: %v", err)
	}
	if got != "headless text" {
		t.Fatalf("Clipboard() = %q, want %q", got, "headless text")
	}
}

func TestClipboard_EmptyUnavailable(t *testing.T) {
	b := testBackend(t)

	_, err := b.Clipboard()
	if got := werr.KindOf(err); got != werr.FormatUnavailable {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.FormatUnavailable)
	}
}

func TestCreateWindow_RejectsInvalidSize(t *testing.T) {
	b := testBackend(t)

	cfg := windowConfig()
	cfg.Width = 0
	_, err := b.CreateWindow(cfg, platform.ContextConfig{}, fbconfig.Config{}, platform.Handlers{})
	if got := werr.KindOf(err); got != werr.InvalidValue {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.InvalidValue)
	}
}

func TestCreateWindow_NoAPIHasNoContext(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	if w.Context() != nil {
		t.Fatal("window created without a client API has a context")
	}
	if !w.Visible() {
		t.Fatal("window created visible is not visible")
	}
	if b.eglManager != nil {
		t.Fatal("EGL manager initialized for a window without a client API")
	}
}

func TestCreateWindow_HandlesAreUnique(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w1 := createTestWindow(t, b, windowConfig(), &rec)
	w2 := createTestWindow(t, b, windowConfig(), &rec)

	if w1.Handle() == 0 || w2.Handle() == 0 {
		t.Fatal("window handle is zero")
	}
	if w1.Handle() == w2.Handle() {
		t.Fatalf("both windows share handle %#x", w1.Handle())
	}
}

func TestCreateWindow_FullscreenCentersCursor(t *testing.T) {
	b := testBackend(t)
	monitor := b.monitor

	cfg := windowConfig()
	cfg.Monitor = &monitor
	cfg.CenterCursor = true
	var rec recorded
	w := createTestWindow(t, b, cfg, &rec)

	if w.Monitor() == nil {
		t.Fatal("fullscreen window reports no monitor")
	}
	if width, height := w.Size(); width != 1920 || height != 1080 {
		t.Fatalf("Size() = %dx%d, want 1920x1080", width, height)
	}
	x, y := w.CursorPos()
	if x != 960 || y != 540 {
		t.Fatalf("CursorPos() = %v,%v, want 960,540", x, y)
	}
}
