package x11

import (
	"testing"

	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

func TestResolveClassHint_ExplicitNamesWin(t *testing.T) {
	t.Setenv("RESOURCE_NAME", "from-env")
	instance, class := resolveClassHint(platform.WindowConfig{
		Title:        "My App",
		InstanceName: "myapp",
		ClassName:    "MyApp",
	})
	if instance != "myapp" || class != "MyApp" {
		t.Fatalf("class hint = %q/%q, want myapp/MyApp", instance, class)
	}
}

func TestResolveClassHint_EnvironmentInstance(t *testing.T) {
	t.Setenv("RESOURCE_NAME", "from-env")
	instance, class := resolveClassHint(platform.WindowConfig{Title: "My App"})
	if instance != "from-env" {
		t.Fatalf("instance = %q, want from-env", instance)
	}
	if class != "My App" {
		t.Fatalf("class = %q, want My App", class)
	}
}

func TestResolveClassHint_TitleFallback(t *testing.T) {
	t.Setenv("RESOURCE_NAME", "")
	instance, class := resolveClassHint(platform.WindowConfig{Title: "Demo"})
	if instance != "Demo" || class != "Demo" {
		t.Fatalf("class hint = %q/%q, want Demo/Demo", instance, class)
	}
}

func TestResolveClassHint_Default(t *testing.T) {
	t.Setenv("RESOURCE_NAME", "")
	instance, class := resolveClassHint(platform.WindowConfig{})
	if instance != "glwin" || class != "glwin" {
		t.Fatalf("class hint = %q/%q, want glwin/glwin", instance, class)
	}
}

func TestSetSizeLimits_RejectsInvertedRange(t *testing.T) {
	w := &Window{}
	if err := w.SetSizeLimits(100, 100, 50, 200); werr.KindOf(err) != werr.InvalidValue {
		t.Fatalf("inverted width range: err = %v, want invalid value", err)
	}
	if err := w.SetSizeLimits(100, 100, 200, 50); werr.KindOf(err) != werr.InvalidValue {
		t.Fatalf("inverted height range: err = %v, want invalid value", err)
	}
}

func TestSetAspectRatio_RejectsNonPositive(t *testing.T) {
	w := &Window{}
	cases := [][2]int{{0, 1}, {16, 0}, {-3, 9}, {4, -7}}
	for _, c := range cases {
		if err := w.SetAspectRatio(c[0], c[1]); werr.KindOf(err) != werr.InvalidValue {
			t.Errorf("aspect %d:%d: err = %v, want invalid value", c[0], c[1], err)
		}
	}
}
