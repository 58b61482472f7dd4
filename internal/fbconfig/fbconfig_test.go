package fbconfig

import "testing"

// rgb builds a double-buffered candidate with the given color depths.
func rgb(r, g, b, a int, handle uintptr) Config {
	return Config{
		RedBits:      r,
		GreenBits:    g,
		BlueBits:     b,
		AlphaBits:    a,
		DoubleBuffer: true,
		Handle:       handle,
	}
}

func TestChooseExactMatch(t *testing.T) {
	pool := []Config{
		rgb(5, 6, 5, 0, 1),
		rgb(8, 8, 8, 0, 2),
		rgb(8, 8, 8, 8, 3),
	}
	desired := rgb(8, 8, 8, 8, 0)

	got, ok := Choose(desired, pool)
	if !ok || got.Handle != 3 {
		t.Fatalf("Choose = (%v, %v), want handle 3", got.Handle, ok)
	}
}

func TestChooseIsDeterministic(t *testing.T) {
	pool := []Config{
		rgb(8, 8, 8, 0, 1),
		rgb(8, 8, 8, 0, 2), // identical score; first candidate must win
		rgb(5, 6, 5, 0, 3),
	}
	desired := rgb(8, 8, 8, DontCare, 0)
	desired.DepthBits = DontCare
	desired.StencilBits = DontCare
	desired.Samples = DontCare

	first, ok := Choose(desired, pool)
	if !ok {
		t.Fatal("no config chosen")
	}
	for i := 0; i < 10; i++ {
		again, ok := Choose(desired, pool)
		if !ok || again.Handle != first.Handle {
			t.Fatalf("run %d chose %v, first run chose %v", i, again.Handle, first.Handle)
		}
	}
	if first.Handle != 1 {
		t.Fatalf("tie should keep the earliest candidate, got %v", first.Handle)
	}
}

// A stricter request drawn from the same pool must not pick a config
// with fewer channel bits than a laxer request would get.
func TestChooseMonotonicOnDemand(t *testing.T) {
	pool := []Config{
		rgb(5, 6, 5, 0, 1),
		rgb(8, 8, 8, 0, 2),
		rgb(8, 8, 8, 8, 3),
	}

	lax, ok := Choose(rgb(5, 6, 5, 0, 0), pool)
	if !ok {
		t.Fatal("lax request found nothing")
	}
	strict, ok := Choose(rgb(8, 8, 8, 8, 0), pool)
	if !ok {
		t.Fatal("strict request found nothing")
	}

	if strict.RedBits < lax.RedBits || strict.AlphaBits < lax.AlphaBits {
		t.Fatalf("strict request chose %+v, lax chose %+v", strict, lax)
	}
}

func TestChooseMissingFeatureOutweighsColor(t *testing.T) {
	// One candidate matches color exactly but lacks the requested
	// alpha channel; the other has alpha with a worse color match.
	pool := []Config{
		rgb(8, 8, 8, 0, 1),
		rgb(5, 6, 5, 8, 2),
	}
	desired := rgb(8, 8, 8, 8, 0)

	got, ok := Choose(desired, pool)
	if !ok || got.Handle != 2 {
		t.Fatalf("Choose = %v, want handle 2 (alpha present)", got.Handle)
	}
}

func TestChooseDoubleBufferIsHardConstraint(t *testing.T) {
	single := rgb(8, 8, 8, 0, 1)
	single.DoubleBuffer = false
	pool := []Config{single}

	if _, ok := Choose(rgb(8, 8, 8, 0, 0), pool); ok {
		t.Fatal("double-buffered request must not choose a single-buffered config")
	}

	desired := rgb(8, 8, 8, 0, 0)
	desired.DoubleBuffer = false
	if got, ok := Choose(desired, pool); !ok || got.Handle != 1 {
		t.Fatalf("single-buffered request = (%v, %v), want handle 1", got.Handle, ok)
	}
}

func TestChooseStereoIsHardConstraint(t *testing.T) {
	pool := []Config{rgb(8, 8, 8, 0, 1)}
	desired := rgb(8, 8, 8, 0, 0)
	desired.Stereo = true

	if _, ok := Choose(desired, pool); ok {
		t.Fatal("stereo request must not match a mono config")
	}
}

func TestChooseDepthStencilPenalty(t *testing.T) {
	withDepth := rgb(8, 8, 8, 0, 1)
	withDepth.DepthBits = 24
	withDepth.StencilBits = 8
	without := rgb(8, 8, 8, 0, 2)

	desired := rgb(8, 8, 8, 0, 0)
	desired.DepthBits = 24
	desired.StencilBits = 8

	got, ok := Choose(desired, []Config{without, withDepth})
	if !ok || got.Handle != 1 {
		t.Fatalf("Choose = %v, want handle 1 (depth+stencil present)", got.Handle)
	}
}

func TestChooseSRGBTiebreak(t *testing.T) {
	linear := rgb(8, 8, 8, 0, 1)
	srgb := rgb(8, 8, 8, 0, 2)
	srgb.SRGB = true

	desired := rgb(8, 8, 8, 0, 0)
	desired.SRGB = true

	got, ok := Choose(desired, []Config{linear, srgb})
	if !ok || got.Handle != 2 {
		t.Fatalf("Choose = %v, want handle 2 (sRGB capable)", got.Handle)
	}
}

func TestChooseSamples(t *testing.T) {
	msaa := rgb(8, 8, 8, 0, 1)
	msaa.Samples = 4
	plain := rgb(8, 8, 8, 0, 2)

	desired := rgb(8, 8, 8, 0, 0)
	desired.Samples = 4

	got, ok := Choose(desired, []Config{plain, msaa})
	if !ok || got.Handle != 1 {
		t.Fatalf("Choose = %v, want handle 1 (4x samples)", got.Handle)
	}
}

func TestChooseEmptyPool(t *testing.T) {
	if _, ok := Choose(rgb(8, 8, 8, 0, 0), nil); ok {
		t.Fatal("empty pool should not produce a config")
	}
}
