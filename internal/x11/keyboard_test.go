package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glwin/event"
)

// testKeymap builds a small keymap by hand: keycodes 8 through 20 with
// two shift levels each, plus detected modifier rows for Alt, Super
// and NumLock.
func testKeymap() keymap {
	km := keymap{
		minKeycode: 8,
		maxKeycode: 20,
		perKeycode: 2,
	}
	km.keysyms = make([]xproto.Keysym, int(km.maxKeycode-km.minKeycode+1)*int(km.perKeycode))
	bind := func(code xproto.Keycode, level int, sym xproto.Keysym) {
		km.keysyms[int(code-km.minKeycode)*int(km.perKeycode)+level] = sym
	}
	bind(10, 0, 'a')
	bind(10, 1, 'A')
	bind(11, 0, '1')
	bind(11, 1, '!')
	bind(12, 0, xkReturn)
	bind(13, 0, 0xe9) // Latin-1 e-acute
	bind(14, 0, xkF1+4)
	bind(15, 0, xkKPEnd)
	bind(16, 0, xkAltL)
	bind(17, 0, xkSuperL)
	bind(18, 0, xkNumLock)
	for code := int(km.minKeycode); code <= int(km.maxKeycode); code++ {
		km.keys[code] = keysymToKey(km.keysymAt(xproto.Keycode(code), 0))
	}

	// One keycode per modifier row: Shift, Lock, Control, Mod1..Mod5.
	km.detectModifierMasks(&xproto.GetModifierMappingReply{
		KeycodesPerModifier: 1,
		Keycodes:            []xproto.Keycode{0, 0, 0, 16, 18, 0, 17, 0},
	})
	return km
}

func TestKeysymToKey_Ranges(t *testing.T) {
	cases := []struct {
		sym  xproto.Keysym
		want event.Key
	}{
		{'a', event.KeyA},
		{'z', event.KeyZ},
		{'A', event.KeyA},
		{'0', event.Key0},
		{'9', event.Key9},
		{xkF1, event.KeyF1},
		{xkF1 + 11, event.KeyF12},
		{xkF25, event.KeyF25},
		{xkKP0, event.KeyKP0},
		{xkKP9, event.KeyKP9},
		{xkEscape, event.KeyEscape},
		{xkReturn, event.KeyEnter},
		{xkKPEnd, event.KeyKP1},
		{xkMetaL, event.KeyLeftAlt},
		{'=', event.KeyEqual},
		{0x12345678, event.KeyUnknown},
	}
	for _, c := range cases {
		if got := keysymToKey(c.sym); got != c.want {
			t.Errorf("keysymToKey(%#x) = %v, want %v", c.sym, got, c.want)
		}
	}
}

func TestKeysymToRune(t *testing.T) {
	cases := []struct {
		sym  xproto.Keysym
		want rune
	}{
		{' ', ' '},
		{'a', 'a'},
		{'~', '~'},
		{0xe9, 'é'},
		{xkKP0 + 3, '3'},
		{xkKPDecimal, '.'},
		{xkKPDivide, '/'},
		{xkKPAdd, '+'},
		{xkTab, '\t'},
		{0x01000100 + 0x20ac - 0x100, '€'},
		{xkEscape, 0},
		{xkShiftL, 0},
		{xkF1 + 4, 0},
	}
	for _, c := range cases {
		if got := keysymToRune(c.sym); got != c.want {
			t.Errorf("keysymToRune(%#x) = %q, want %q", c.sym, got, c.want)
		}
	}
}

func TestDetectModifierMasks(t *testing.T) {
	km := testKeymap()
	if km.altMask != xproto.KeyButMaskMod1 {
		t.Errorf("altMask = %#x, want %#x", km.altMask, xproto.KeyButMaskMod1)
	}
	if km.numLockMask != xproto.KeyButMaskMod2 {
		t.Errorf("numLockMask = %#x, want %#x", km.numLockMask, xproto.KeyButMaskMod2)
	}
	if km.superMask != xproto.KeyButMaskMod4 {
		t.Errorf("superMask = %#x, want %#x", km.superMask, xproto.KeyButMaskMod4)
	}
	if km.modeSwitchMask != 0 {
		t.Errorf("modeSwitchMask = %#x, want 0", km.modeSwitchMask)
	}
}

func TestTranslateState(t *testing.T) {
	km := testKeymap()
	cases := []struct {
		state uint16
		want  event.Mods
	}{
		{0, 0},
		{xproto.KeyButMaskShift, event.ModShift},
		{xproto.KeyButMaskControl, event.ModControl},
		{xproto.KeyButMaskMod1, event.ModAlt},
		{xproto.KeyButMaskMod4, event.ModSuper},
		{xproto.KeyButMaskLock, event.ModCapsLock},
		{xproto.KeyButMaskMod2, event.ModNumLock},
		{xproto.KeyButMaskShift | xproto.KeyButMaskControl | xproto.KeyButMaskMod1,
			event.ModShift | event.ModControl | event.ModAlt},
		// Mod3 and Mod5 carry nothing on this keymap.
		{xproto.KeyButMaskMod3 | xproto.KeyButMaskMod5, 0},
	}
	for _, c := range cases {
		if got := km.translateState(c.state); got != c.want {
			t.Errorf("translateState(%#x) = %v, want %v", c.state, got, c.want)
		}
	}
}

func TestCharKeysym_ShiftLevel(t *testing.T) {
	km := testKeymap()
	if got := km.charKeysym(10, 0); got != 'a' {
		t.Fatalf("unshifted keysym = %#x, want 'a'", got)
	}
	if got := km.charKeysym(10, xproto.KeyButMaskShift); got != 'A' {
		t.Fatalf("shifted keysym = %#x, want 'A'", got)
	}
	// Keycode 12 binds only level 0; shift falls back to it.
	if got := km.charKeysym(12, xproto.KeyButMaskShift); got != xkReturn {
		t.Fatalf("shifted single-level keysym = %#x, want Return", got)
	}
}

func TestKeysymAt_OutOfRange(t *testing.T) {
	km := testKeymap()
	if got := km.keysymAt(7, 0); got != 0 {
		t.Errorf("keysymAt below min = %#x, want 0", got)
	}
	if got := km.keysymAt(21, 0); got != 0 {
		t.Errorf("keysymAt above max = %#x, want 0", got)
	}
	if got := km.keysymAt(10, 2); got != 0 {
		t.Errorf("keysymAt level beyond mapping = %#x, want 0", got)
	}
}
