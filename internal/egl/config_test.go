package egl

import (
	"strings"
	"testing"

	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
	"github.com/1broseidon/glwin/internal/werr"
)

func desiredRGBA8() fbconfig.Config {
	return fbconfig.Config{
		RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8,
		DepthBits: 24, StencilBits: 8,
		DoubleBuffer: true,
	}
}

func glContext() platform.ContextConfig {
	return platform.ContextConfig{API: platform.OpenGL, Major: 3, Minor: 3, Profile: platform.CoreProfile}
}

func TestChooseConfigStereoRejectedBeforeEnumeration(t *testing.T) {
	f := newFakeAPI(rgbConfig(1, nil))
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	desired := desiredRGBA8()
	desired.Stereo = true
	_, err := m.chooseConfig(glContext(), desired)
	if werr.KindOf(err) != werr.FormatUnavailable {
		t.Fatalf("kind = %v, want FormatUnavailable", werr.KindOf(err))
	}
	if f.getConfigsCalls != 0 {
		t.Fatalf("display enumerated %d times for a stereo request", f.getConfigsCalls)
	}
}

func TestChooseConfigPicksExactMatch(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglRedSize: 5, eglGreenSize: 6, eglBlueSize: 5, eglAlphaSize: 0}),
		rgbConfig(2, nil),
		rgbConfig(3, map[int32]int32{eglSamples: 4}),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	chosen, err := m.chooseConfig(glContext(), desiredRGBA8())
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	if chosen.Handle != 2 {
		t.Fatalf("chose config %d, want 2", chosen.Handle)
	}
}

func TestChooseConfigDeterministicAcrossRuns(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, nil),
		rgbConfig(2, nil),
		rgbConfig(3, nil),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	first, err := m.chooseConfig(glContext(), desiredRGBA8())
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := m.chooseConfig(glContext(), desiredRGBA8())
		if err != nil {
			t.Fatalf("chooseConfig run %d: %v", i, err)
		}
		if again.Handle != first.Handle {
			t.Fatalf("run %d chose %d, first chose %d", i, again.Handle, first.Handle)
		}
	}
	if first.Handle != 1 {
		t.Fatalf("equal candidates resolved to %d, want first", first.Handle)
	}
}

func TestChooseConfigSkipsNonRGBAndVisuallessConfigs(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglColorBufferType: 0x308f}), // luminance
		rgbConfig(2, map[int32]int32{eglNativeVisualID: 0}),
		rgbConfig(3, map[int32]int32{eglSurfaceType: eglPbufferBit}),
		rgbConfig(4, nil),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	chosen, err := m.chooseConfig(glContext(), desiredRGBA8())
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	if chosen.Handle != 4 {
		t.Fatalf("chose config %d, want 4", chosen.Handle)
	}
}

func TestChooseConfigReportsMissingAPIWithVersion(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglRenderableType: eglOpenGLBit}),
		rgbConfig(2, map[int32]int32{eglRenderableType: eglOpenGLBit}),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	ctx := platform.ContextConfig{API: platform.OpenGLES, Major: 3, Minor: 2}
	_, err := m.chooseConfig(ctx, desiredRGBA8())
	if werr.KindOf(err) != werr.ApiUnavailable {
		t.Fatalf("kind = %v, want ApiUnavailable", werr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "OpenGL ES 3.2") {
		t.Fatalf("error %q does not name the API and version", err)
	}
}

func TestChooseConfigES1UsesES1Bit(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglRenderableType: eglOpenGLESBit}),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	ctx := platform.ContextConfig{API: platform.OpenGLES, Major: 1, Minor: 1}
	chosen, err := m.chooseConfig(ctx, desiredRGBA8())
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	if chosen.Handle != 1 {
		t.Fatalf("chose config %d, want 1", chosen.Handle)
	}
}

func TestChooseConfigFormatUnavailableWhenNoneUsable(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglColorBufferType: 0x308f}),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	_, err := m.chooseConfig(glContext(), desiredRGBA8())
	if werr.KindOf(err) != werr.FormatUnavailable {
		t.Fatalf("kind = %v, want FormatUnavailable", werr.KindOf(err))
	}
}

func TestChooseConfigTransparentPrefersAlphaVisual(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglNativeVisualID: 0x21}),
		rgbConfig(2, map[int32]int32{eglNativeVisualID: 0x5c}),
	)
	native := &fakeNative{
		nativeVisuals: true,
		alphaVisuals:  map[uint32]bool{0x5c: true},
	}
	m := testManager(t, f, native)

	desired := desiredRGBA8()
	desired.Transparent = true
	chosen, err := m.chooseConfig(glContext(), desired)
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	if chosen.Handle != 2 {
		t.Fatalf("chose config %d, want the one with an alpha visual", chosen.Handle)
	}
}

func TestChooseConfigPbufferBackendFiltersOnPbufferBit(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglSurfaceType: eglWindowBit}),
		rgbConfig(2, map[int32]int32{eglSurfaceType: eglPbufferBit}),
	)
	m := testManager(t, f, &fakeNative{pbufferOnly: true})

	chosen, err := m.chooseConfig(glContext(), desiredRGBA8())
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	if chosen.Handle != 2 {
		t.Fatalf("chose config %d, want the pbuffer-capable one", chosen.Handle)
	}
}

func TestChooseConfigNoConfigsReturned(t *testing.T) {
	f := newFakeAPI()
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	_, err := m.chooseConfig(glContext(), desiredRGBA8())
	if werr.KindOf(err) != werr.ApiUnavailable {
		t.Fatalf("kind = %v, want ApiUnavailable", werr.KindOf(err))
	}
}

func TestChooseVisualMatchesChosenConfig(t *testing.T) {
	f := newFakeAPI(
		rgbConfig(1, map[int32]int32{eglNativeVisualID: 0x21}),
		rgbConfig(2, map[int32]int32{eglNativeVisualID: 0x5c}),
	)
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	visual, err := m.ChooseVisual(glContext(), desiredRGBA8())
	if err != nil {
		t.Fatalf("ChooseVisual: %v", err)
	}
	chosen, err := m.chooseConfig(glContext(), desiredRGBA8())
	if err != nil {
		t.Fatalf("chooseConfig: %v", err)
	}
	if visual != uint32(m.attrib(chosen.Handle, eglNativeVisualID)) {
		t.Fatalf("visual %#x does not belong to the config the same request selects", visual)
	}
	if visual != 0x21 {
		t.Fatalf("visual = %#x, want %#x", visual, 0x21)
	}
}

func TestChooseVisualPropagatesSelectionFailure(t *testing.T) {
	f := newFakeAPI(rgbConfig(1, nil))
	m := testManager(t, f, &fakeNative{nativeVisuals: true})

	desired := desiredRGBA8()
	desired.Stereo = true
	_, err := m.ChooseVisual(glContext(), desired)
	if werr.KindOf(err) != werr.FormatUnavailable {
		t.Fatalf("kind = %v, want FormatUnavailable", werr.KindOf(err))
	}
}
