package nullwin

import (
	"testing"

	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

// recorded collects everything the handlers deliver, in order.
type recorded struct {
	focus    []bool
	iconify  []bool
	maximize []bool
	sizes    [][2]int
	fbSizes  [][2]int
	moves    [][2]int
}

func recordingHandlers(rec *recorded) platform.Handlers {
	return platform.Handlers{
		Focus:           func(focused bool) { rec.focus = append(rec.focus, focused) },
		Iconify:         func(iconified bool) { rec.iconify = append(rec.iconify, iconified) },
		Maximize:        func(maximized bool) { rec.maximize = append(rec.maximize, maximized) },
		Size:            func(w, h int) { rec.sizes = append(rec.sizes, [2]int{w, h}) },
		FramebufferSize: func(w, h int) { rec.fbSizes = append(rec.fbSizes, [2]int{w, h}) },
		Pos:             func(x, y int) { rec.moves = append(rec.moves, [2]int{x, y}) },
	}
}

func windowConfig() platform.WindowConfig {
	return platform.WindowConfig{
		Title:     "probe",
		Width:     800,
		Height:    600,
		Visible:   true,
		Resizable: true,
		Decorated: true,
	}
}

func createTestWindow(t *testing.T, b *Backend, cfg platform.WindowConfig, rec *recorded) *Window {
	t.Helper()
	w, err := b.CreateWindow(cfg, platform.ContextConfig{API: platform.NoAPI}, fbconfig.Config{}, recordingHandlers(rec))
	if err != nil {
		t.Fatalf("CreateWindow() error: %v", err)
	}
	return w.(*Window)
}

func TestFocus_MovesBetweenWindows(t *testing.T) {
	b := testBackend(t)
	var rec1, rec2 recorded
	w1 := createTestWindow(t, b, windowConfig(), &rec1)
	w2 := createTestWindow(t, b, windowConfig(), &rec2)

	if err := w1.Focus(); err != nil {
		t.Fatalf("Focus() error: %v", err)
	}
	if err := w2.Focus(); err != nil {
		t.Fatalf("Focus() error: %v", err)
	}

	if w1.Focused() || !w2.Focused() {
		t.Fatalf("Focused() = %v,%v, want false,true", w1.Focused(), w2.Focused())
	}
	if len(rec1.focus) != 2 || rec1.focus[0] != true || rec1.focus[1] != false {
		t.Fatalf("first window focus = %v, want [true false]", rec1.focus)
	}
	if len(rec2.focus) != 1 || rec2.focus[0] != true {
		t.Fatalf("second window focus = %v, want [true]", rec2.focus)
	}
}

func TestFocus_HiddenWindowCannotTakeFocus(t *testing.T) {
	b := testBackend(t)
	cfg := windowConfig()
	cfg.Visible = false
	var rec recorded
	w := createTestWindow(t, b, cfg, &rec)

	if err := w.Focus(); err != nil {
		t.Fatalf("Focus() error: %v", err)
	}
	if w.Focused() {
		t.Fatal("hidden window took focus")
	}
	if len(rec.focus) != 0 {
		t.Fatalf("focus events = %v, want none", rec.focus)
	}
}

func TestHide_DropsFocus(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)
	w.Focus()

	if err := w.Hide(); err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if w.Visible() || w.Focused() {
		t.Fatalf("Visible(), Focused() = %v,%v, want false,false", w.Visible(), w.Focused())
	}
	if len(rec.focus) != 2 || rec.focus[1] != false {
		t.Fatalf("focus events = %v, want [true false]", rec.focus)
	}
}

func TestIconify_DropsFocusAndReportsOnce(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)
	w.Focus()

	if err := w.Iconify(); err != nil {
		t.Fatalf("Iconify() error: %v", err)
	}
	if err := w.Iconify(); err != nil {
		t.Fatalf("Iconify() error: %v", err)
	}

	if !w.Iconified() || w.Focused() {
		t.Fatalf("Iconified(), Focused() = %v,%v, want true,false", w.Iconified(), w.Focused())
	}
	if len(rec.iconify) != 1 || rec.iconify[0] != true {
		t.Fatalf("iconify events = %v, want [true]", rec.iconify)
	}

	if err := w.Restore(); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if w.Iconified() {
		t.Fatal("window still iconified after Restore")
	}
	if len(rec.iconify) != 2 || rec.iconify[1] != false {
		t.Fatalf("iconify events = %v, want [true false]", rec.iconify)
	}
}

func TestRestore_RevertsMaximize(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	if err := w.Maximize(); err != nil {
		t.Fatalf("Maximize() error: %v", err)
	}
	if !w.Maximized() {
		t.Fatal("window not maximized after Maximize")
	}
	if err := w.Restore(); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if w.Maximized() {
		t.Fatal("window still maximized after Restore")
	}
	if len(rec.maximize) != 2 {
		t.Fatalf("maximize events = %v, want [true false]", rec.maximize)
	}

	// Restoring an already-restored window reports nothing.
	if err := w.Restore(); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if len(rec.maximize) != 2 {
		t.Fatalf("maximize events = %v after no-op restore", rec.maximize)
	}
}

func TestSetSize_ReportsSizeAndFramebufferOnce(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	if err := w.SetSize(1024, 768); err != nil {
		t.Fatalf("SetSize() error: %v", err)
	}
	if err := w.SetSize(1024, 768); err != nil {
		t.Fatalf("SetSize() error: %v", err)
	}

	want := [][2]int{{1024, 768}}
	if len(rec.sizes) != 1 || rec.sizes[0] != want[0] {
		t.Fatalf("size events = %v, want %v", rec.sizes, want)
	}
	if len(rec.fbSizes) != 1 || rec.fbSizes[0] != want[0] {
		t.Fatalf("framebuffer events = %v, want %v", rec.fbSizes, want)
	}
}

func TestSetSizeLimits_ClampsCurrentSize(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	if err := w.SetSizeLimits(1024, 768, sizeDontCare, sizeDontCare); err != nil {
		t.Fatalf("SetSizeLimits() error: %v", err)
	}
	if width, height := w.Size(); width != 1024 || height != 768 {
		t.Fatalf("Size() = %dx%d, want 1024x768", width, height)
	}
	if len(rec.sizes) != 1 {
		t.Fatalf("size events = %v, want one clamp resize", rec.sizes)
	}
}

func TestSetSizeLimits_RejectsInvertedRange(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	err := w.SetSizeLimits(200, 200, 100, sizeDontCare)
	if got := werr.KindOf(err); got != werr.InvalidValue {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.InvalidValue)
	}
}

func TestSetAspectRatio_AppliesImmediately(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	if err := w.SetAspectRatio(16, 9); err != nil {
		t.Fatalf("SetAspectRatio() error: %v", err)
	}
	// 800 wide at 16:9 is 450 tall.
	if width, height := w.Size(); width != 800 || height != 450 {
		t.Fatalf("Size() = %dx%d, want 800x450", width, height)
	}
}

func TestSetMonitor_RoundTripRestoresGeometry(t *testing.T) {
	b := testBackend(t)
	monitor := b.monitor
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)
	w.SetPos(40, 30)

	if err := w.SetMonitor(&monitor); err != nil {
		t.Fatalf("SetMonitor() error: %v", err)
	}
	if width, height := w.Size(); width != 1920 || height != 1080 {
		t.Fatalf("fullscreen Size() = %dx%d, want 1920x1080", width, height)
	}
	if x, y := w.Pos(); x != 0 || y != 0 {
		t.Fatalf("fullscreen Pos() = %d,%d, want 0,0", x, y)
	}

	// Fullscreen geometry belongs to the monitor.
	if err := w.SetSize(100, 100); err != nil {
		t.Fatalf("SetSize() error: %v", err)
	}
	if width, _ := w.Size(); width != 1920 {
		t.Fatalf("fullscreen width = %d after SetSize, want 1920", width)
	}

	if err := w.SetMonitor(nil); err != nil {
		t.Fatalf("SetMonitor(nil) error: %v", err)
	}
	if w.Monitor() != nil {
		t.Fatal("window still fullscreen after SetMonitor(nil)")
	}
	if width, height := w.Size(); width != 800 || height != 600 {
		t.Fatalf("windowed Size() = %dx%d, want 800x600", width, height)
	}
	if x, y := w.Pos(); x != 40 || y != 30 {
		t.Fatalf("windowed Pos() = %d,%d, want 40,30", x, y)
	}
}

func TestSetMonitor_ShowsHiddenWindow(t *testing.T) {
	b := testBackend(t)
	monitor := b.monitor
	cfg := windowConfig()
	cfg.Visible = false
	var rec recorded
	w := createTestWindow(t, b, cfg, &rec)

	if err := w.SetMonitor(&monitor); err != nil {
		t.Fatalf("SetMonitor() error: %v", err)
	}
	if !w.Visible() {
		t.Fatal("fullscreen window is not visible")
	}
}

func TestFocus_AutoIconifiesFullscreenLoser(t *testing.T) {
	b := testBackend(t)
	monitor := b.monitor
	cfg := windowConfig()
	cfg.AutoIconify = true
	var rec1, rec2 recorded
	w1 := createTestWindow(t, b, cfg, &rec1)
	w2 := createTestWindow(t, b, windowConfig(), &rec2)
	if err := w1.SetMonitor(&monitor); err != nil {
		t.Fatalf("SetMonitor() error: %v", err)
	}
	w1.Focus()

	w2.Focus()

	if !w1.Iconified() {
		t.Fatal("fullscreen window not iconified after losing focus")
	}
	if !w2.Focused() {
		t.Fatal("second window did not take focus")
	}
}

func TestFrameExtents_SyntheticCaption(t *testing.T) {
	b := testBackend(t)
	monitor := b.monitor
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	left, top, right, bottom, err := w.FrameExtents()
	if err != nil {
		t.Fatalf("FrameExtents() error: %v", err)
	}
	if left != 1 || top != 10 || right != 1 || bottom != 1 {
		t.Fatalf("FrameExtents() = %d,%d,%d,%d, want 1,10,1,1", left, top, right, bottom)
	}

	w.SetDecorated(false)
	left, top, right, bottom, _ = w.FrameExtents()
	if left != 0 || top != 0 || right != 0 || bottom != 0 {
		t.Fatalf("undecorated FrameExtents() = %d,%d,%d,%d, want zeros", left, top, right, bottom)
	}

	w.SetDecorated(true)
	w.SetMonitor(&monitor)
	left, top, right, bottom, _ = w.FrameExtents()
	if left != 0 || top != 0 || right != 0 || bottom != 0 {
		t.Fatalf("fullscreen FrameExtents() = %d,%d,%d,%d, want zeros", left, top, right, bottom)
	}
}

func TestSetOpacity_Validates(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	if got := w.Opacity(); got != 1 {
		t.Fatalf("Opacity() = %v, want 1", got)
	}
	if err := w.SetOpacity(0.5); err != nil {
		t.Fatalf("SetOpacity() error: %v", err)
	}
	if got := w.Opacity(); got != 0.5 {
		t.Fatalf("Opacity() = %v, want 0.5", got)
	}
	err := w.SetOpacity(1.5)
	if got := werr.KindOf(err); got != werr.InvalidValue {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.InvalidValue)
	}
}

func TestSetCursorMode_Validates(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	err := w.SetCursorMode(event.CursorMode(9))
	if got := werr.KindOf(err); got != werr.InvalidValue {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.InvalidValue)
	}
	if err := w.SetCursorMode(event.CursorHidden); err != nil {
		t.Fatalf("SetCursorMode() error: %v", err)
	}
	if got := w.CursorMode(); got != event.CursorHidden {
		t.Fatalf("CursorMode() = %v, want %v", got, event.CursorHidden)
	}
}

func TestSetCursorShape_RejectsUnknownShape(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)

	err := w.SetCursorShape(event.StandardCursor(99))
	if got := werr.KindOf(err); got != werr.CursorUnavailable {
		t.Fatalf("KindOf(err) = %v, want %v", got, werr.CursorUnavailable)
	}
	if err := w.SetCursorShape(event.HandCursor); err != nil {
		t.Fatalf("SetCursorShape() error: %v", err)
	}
}

func TestDestroy_RemovesWindowAndDropsFocus(t *testing.T) {
	b := testBackend(t)
	var rec recorded
	w := createTestWindow(t, b, windowConfig(), &rec)
	w.Focus()

	w.Destroy()
	w.Destroy()

	if len(b.windows) != 0 {
		t.Fatalf("len(b.windows) = %d, want 0", len(b.windows))
	}
	if b.focused != nil {
		t.Fatal("backend still tracks the destroyed window as focused")
	}
	if len(rec.focus) != 2 || rec.focus[1] != false {
		t.Fatalf("focus events = %v, want [true false]", rec.focus)
	}
}
