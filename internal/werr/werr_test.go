package werr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(FormatUnavailable, "no matching config for %dx%d", 8, 8)
	if got := KindOf(err); got != FormatUnavailable {
		t.Fatalf("KindOf = %v, want FormatUnavailable", got)
	}

	wrapped := fmt.Errorf("creating window: %w", err)
	if got := KindOf(wrapped); got != FormatUnavailable {
		t.Fatalf("KindOf through fmt wrap = %v, want FormatUnavailable", got)
	}

	if got := KindOf(errors.New("plain")); got != 0 {
		t.Fatalf("KindOf on plain error = %v, want 0", got)
	}
}

func TestIsMatchesByKind(t *testing.T) {
	cause := errors.New("dlopen failed")
	err := Wrap(ApiUnavailable, cause, "EGL library not found")

	if !errors.Is(err, &Error{Kind: ApiUnavailable}) {
		t.Fatal("errors.Is should match same kind")
	}
	if errors.Is(err, &Error{Kind: PlatformError}) {
		t.Fatal("errors.Is should not match different kind")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should find the wrapped cause")
	}
}

func TestErrorString(t *testing.T) {
	err := New(CursorUnavailable, "shape 42 has no theme cursor")
	want := "cursor unavailable: shape 42 has no theme cursor"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
