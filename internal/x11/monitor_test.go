package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/glwin/internal/platform"
)

func TestAccumulateStruts_TopPanel(t *testing.T) {
	m := platform.Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	sp := &ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	var insets strutInsets
	accumulateStruts(m, 1920, 1080, sp, &insets)

	if insets != (strutInsets{top: 30}) {
		t.Fatalf("insets = %+v, want top 30", insets)
	}
}

func TestAccumulateStruts_PanelOnOtherMonitorIgnored(t *testing.T) {
	// Side-by-side monitors; the panel spans only the left one.
	right := platform.Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}
	sp := &ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	var insets strutInsets
	accumulateStruts(right, 3840, 1080, sp, &insets)

	if insets != (strutInsets{}) {
		t.Fatalf("insets = %+v, want none", insets)
	}
}

func TestAccumulateStruts_BottomStrutMeasuredFromRootEdge(t *testing.T) {
	// Stacked monitors; a dock on the bottom edge of the root only
	// affects the lower one.
	top := platform.Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	bottom := platform.Monitor{X: 0, Y: 1080, Width: 1920, Height: 1080}
	sp := &ewmh.WmStrutPartial{Bottom: 40, BottomStartX: 0, BottomEndX: 1919}

	var insets strutInsets
	accumulateStruts(top, 1920, 2160, sp, &insets)
	if insets != (strutInsets{}) {
		t.Fatalf("top monitor insets = %+v, want none", insets)
	}

	accumulateStruts(bottom, 1920, 2160, sp, &insets)
	if insets != (strutInsets{bottom: 40}) {
		t.Fatalf("bottom monitor insets = %+v, want bottom 40", insets)
	}
}

func TestAccumulateStruts_LeftAndRightCombine(t *testing.T) {
	m := platform.Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	leftDock := &ewmh.WmStrutPartial{Left: 64, LeftStartY: 0, LeftEndY: 1079}
	rightDock := &ewmh.WmStrutPartial{Right: 48, RightStartY: 200, RightEndY: 800}

	var insets strutInsets
	accumulateStruts(m, 1920, 1080, leftDock, &insets)
	accumulateStruts(m, 1920, 1080, rightDock, &insets)

	if insets != (strutInsets{left: 64, right: 48}) {
		t.Fatalf("insets = %+v, want left 64 right 48", insets)
	}
}

func TestAccumulateStruts_DeepestStrutWins(t *testing.T) {
	m := platform.Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	thin := &ewmh.WmStrutPartial{Top: 20, TopStartX: 0, TopEndX: 900}
	thick := &ewmh.WmStrutPartial{Top: 35, TopStartX: 1000, TopEndX: 1919}

	var insets strutInsets
	accumulateStruts(m, 1920, 1080, thin, &insets)
	accumulateStruts(m, 1920, 1080, thick, &insets)

	if insets.top != 35 {
		t.Fatalf("top inset = %d, want 35", insets.top)
	}
}

func TestIntersectionSize(t *testing.T) {
	cases := []struct {
		name               string
		ax1, ay1, ax2, ay2 int
		bx1, by1, bx2, by2 int
		wantW, wantH       int
	}{
		{"full overlap", 0, 0, 100, 100, 0, 0, 100, 100, 100, 100},
		{"partial", 0, 0, 100, 100, 50, 50, 150, 150, 50, 50},
		{"disjoint", 0, 0, 100, 100, 200, 200, 300, 300, 0, 0},
		{"edge touch", 0, 0, 100, 100, 100, 0, 200, 100, 0, 0},
		{"contained", 0, 0, 100, 100, 25, 25, 75, 75, 50, 50},
	}
	for _, c := range cases {
		w, h := intersectionSize(c.ax1, c.ay1, c.ax2, c.ay2, c.bx1, c.by1, c.bx2, c.by2)
		if w != c.wantW || h != c.wantH {
			t.Errorf("%s: intersectionSize = %dx%d, want %dx%d", c.name, w, h, c.wantW, c.wantH)
		}
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []platform.Monitor{
		{Name: "left", X: 0, Y: 0, Width: 1920, Height: 1080},
		{Name: "right", X: 1920, Y: 0, Width: 1280, Height: 1024},
	}

	if m := monitorAt(monitors, 10, 10); m == nil || m.Name != "left" {
		t.Fatalf("monitorAt(10,10) = %v, want left", m)
	}
	// The right edge is exclusive; 1920 already belongs to the next
	// monitor.
	if m := monitorAt(monitors, 1920, 500); m == nil || m.Name != "right" {
		t.Fatalf("monitorAt(1920,500) = %v, want right", m)
	}
	if m := monitorAt(monitors, 1919, 500); m == nil || m.Name != "left" {
		t.Fatalf("monitorAt(1919,500) = %v, want left", m)
	}
	if m := monitorAt(monitors, 5000, 5000); m != nil {
		t.Fatalf("monitorAt(5000,5000) = %v, want nil", m)
	}
	// Below the shorter right monitor.
	if m := monitorAt(monitors, 2000, 1050); m != nil {
		t.Fatalf("monitorAt(2000,1050) = %v, want nil", m)
	}
}
