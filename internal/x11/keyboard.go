package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glwin/event"
)

// keymap translates core protocol keycodes into logical keys. It is
// rebuilt whenever the server announces a mapping change.
type keymap struct {
	minKeycode xproto.Keycode
	maxKeycode xproto.Keycode
	perKeycode byte
	keysyms    []xproto.Keysym

	keys [256]event.Key

	altMask        uint16
	superMask      uint16
	numLockMask    uint16
	modeSwitchMask uint16
}

func buildKeymap(x *xgb.Conn) (keymap, error) {
	setup := xproto.Setup(x)
	km := keymap{
		minKeycode: setup.MinKeycode,
		maxKeycode: setup.MaxKeycode,
	}
	count := byte(km.maxKeycode - km.minKeycode + 1)

	mapping, err := xproto.GetKeyboardMapping(x, km.minKeycode, count).Reply()
	if err != nil {
		return keymap{}, fmt.Errorf("failed to get keyboard mapping: %w", err)
	}
	km.perKeycode = mapping.KeysymsPerKeycode
	km.keysyms = mapping.Keysyms

	for code := int(km.minKeycode); code <= int(km.maxKeycode); code++ {
		km.keys[code] = keysymToKey(km.keysymAt(xproto.Keycode(code), 0))
	}

	modifiers, err := xproto.GetModifierMapping(x).Reply()
	if err != nil {
		return keymap{}, fmt.Errorf("failed to get modifier mapping: %w", err)
	}
	km.detectModifierMasks(modifiers)
	return km, nil
}

// keysymAt returns the keysym bound to code at the given shift level,
// or zero when out of range.
func (km *keymap) keysymAt(code xproto.Keycode, level int) xproto.Keysym {
	if code < km.minKeycode || code > km.maxKeycode || level >= int(km.perKeycode) {
		return 0
	}
	idx := int(code-km.minKeycode)*int(km.perKeycode) + level
	if idx >= len(km.keysyms) {
		return 0
	}
	return km.keysyms[idx]
}

func (km *keymap) translateKey(code xproto.Keycode) event.Key {
	return km.keys[code]
}

// detectModifierMasks finds which modifier rows carry Alt, Super,
// NumLock and Mode_switch. Shift, Lock and Control are fixed by the
// protocol; the rest float between Mod1 and Mod5.
func (km *keymap) detectModifierMasks(modifiers *xproto.GetModifierMappingReply) {
	per := int(modifiers.KeycodesPerModifier)
	for row := 0; row < 8; row++ {
		mask := uint16(1) << uint(row)
		for i := 0; i < per; i++ {
			code := modifiers.Keycodes[row*per+i]
			if code == 0 {
				continue
			}
			for level := 0; level < int(km.perKeycode); level++ {
				switch km.keysymAt(code, level) {
				case xkAltL, xkAltR, xkMetaL, xkMetaR:
					km.altMask |= mask
				case xkSuperL, xkSuperR:
					km.superMask |= mask
				case xkNumLock:
					km.numLockMask |= mask
				case xkModeSwitch:
					km.modeSwitchMask |= mask
				}
			}
		}
	}
}

// translateState maps a core event state field to modifier bits.
func (km *keymap) translateState(state uint16) event.Mods {
	var mods event.Mods
	if state&xproto.KeyButMaskShift != 0 {
		mods |= event.ModShift
	}
	if state&xproto.KeyButMaskControl != 0 {
		mods |= event.ModControl
	}
	if state&km.altMask != 0 {
		mods |= event.ModAlt
	}
	if state&km.superMask != 0 {
		mods |= event.ModSuper
	}
	if state&xproto.KeyButMaskLock != 0 {
		mods |= event.ModCapsLock
	}
	if state&km.numLockMask != 0 {
		mods |= event.ModNumLock
	}
	return mods
}

// charKeysym picks the keysym a key press composes into, honoring only
// the shift level. Full group switching is the input method's job.
func (km *keymap) charKeysym(code xproto.Keycode, state uint16) xproto.Keysym {
	level := 0
	if state&xproto.KeyButMaskShift != 0 {
		level = 1
	}
	sym := km.keysymAt(code, level)
	if sym == 0 && level == 1 {
		sym = km.keysymAt(code, 0)
	}
	return sym
}

func (c *Conn) refreshKeymap() {
	km, err := buildKeymap(c.x)
	if err != nil {
		c.logger.Warn("failed to rebuild keymap", "error", err)
		return
	}
	c.keymap = km
	c.logger.Debug("keymap rebuilt")
}

// Keysyms this backend cares about beyond Latin-1.
const (
	xkBackSpace  = 0xff08
	xkTab        = 0xff09
	xkReturn     = 0xff0d
	xkPause      = 0xff13
	xkScrollLock = 0xff14
	xkEscape     = 0xff1b
	xkHome       = 0xff50
	xkLeft       = 0xff51
	xkUp         = 0xff52
	xkRight      = 0xff53
	xkDown       = 0xff54
	xkPageUp     = 0xff55
	xkPageDown   = 0xff56
	xkEnd        = 0xff57
	xkPrint      = 0xff61
	xkInsert     = 0xff63
	xkMenu       = 0xff67
	xkModeSwitch = 0xff7e
	xkNumLock    = 0xff7f

	xkKPEnter    = 0xff8d
	xkKPHome     = 0xff95
	xkKPLeft     = 0xff96
	xkKPUp       = 0xff97
	xkKPRight    = 0xff98
	xkKPDown     = 0xff99
	xkKPPageUp   = 0xff9a
	xkKPPageDown = 0xff9b
	xkKPEnd      = 0xff9c
	xkKPBegin    = 0xff9d
	xkKPInsert   = 0xff9e
	xkKPDelete   = 0xff9f
	xkKPMultiply = 0xffaa
	xkKPAdd      = 0xffab
	xkKPSubtract = 0xffad
	xkKPDecimal  = 0xffae
	xkKPDivide   = 0xffaf
	xkKP0        = 0xffb0
	xkKP9        = 0xffb9
	xkKPEqual    = 0xffbd

	xkF1  = 0xffbe
	xkF25 = 0xffd6

	xkShiftL   = 0xffe1
	xkShiftR   = 0xffe2
	xkControlL = 0xffe3
	xkControlR = 0xffe4
	xkCapsLock = 0xffe5
	xkMetaL    = 0xffe7
	xkMetaR    = 0xffe8
	xkAltL     = 0xffe9
	xkAltR     = 0xffea
	xkSuperL   = 0xffeb
	xkSuperR   = 0xffec
	xkDelete   = 0xffff
)

var keysymKeys = map[xproto.Keysym]event.Key{
	xkEscape:     event.KeyEscape,
	xkReturn:     event.KeyEnter,
	xkTab:        event.KeyTab,
	xkBackSpace:  event.KeyBackspace,
	xkInsert:     event.KeyInsert,
	xkDelete:     event.KeyDelete,
	xkRight:      event.KeyRight,
	xkLeft:       event.KeyLeft,
	xkDown:       event.KeyDown,
	xkUp:         event.KeyUp,
	xkPageUp:     event.KeyPageUp,
	xkPageDown:   event.KeyPageDown,
	xkHome:       event.KeyHome,
	xkEnd:        event.KeyEnd,
	xkCapsLock:   event.KeyCapsLock,
	xkScrollLock: event.KeyScrollLock,
	xkNumLock:    event.KeyNumLock,
	xkPrint:      event.KeyPrintScreen,
	xkPause:      event.KeyPause,
	xkMenu:       event.KeyMenu,

	xkKPEnter:    event.KeyKPEnter,
	xkKPMultiply: event.KeyKPMultiply,
	xkKPAdd:      event.KeyKPAdd,
	xkKPSubtract: event.KeyKPSubtract,
	xkKPDecimal:  event.KeyKPDecimal,
	xkKPDivide:   event.KeyKPDivide,
	xkKPEqual:    event.KeyKPEqual,

	// Keypad without NumLock reports navigation keysyms.
	xkKPInsert:   event.KeyKP0,
	xkKPEnd:      event.KeyKP1,
	xkKPDown:     event.KeyKP2,
	xkKPPageDown: event.KeyKP3,
	xkKPLeft:     event.KeyKP4,
	xkKPBegin:    event.KeyKP5,
	xkKPRight:    event.KeyKP6,
	xkKPHome:     event.KeyKP7,
	xkKPUp:       event.KeyKP8,
	xkKPPageUp:   event.KeyKP9,
	xkKPDelete:   event.KeyKPDecimal,

	xkShiftL:   event.KeyLeftShift,
	xkShiftR:   event.KeyRightShift,
	xkControlL: event.KeyLeftControl,
	xkControlR: event.KeyRightControl,
	xkAltL:     event.KeyLeftAlt,
	xkAltR:     event.KeyRightAlt,
	xkMetaL:    event.KeyLeftAlt,
	xkMetaR:    event.KeyRightAlt,
	xkSuperL:   event.KeyLeftSuper,
	xkSuperR:   event.KeyRightSuper,

	' ':  event.KeySpace,
	'\'': event.KeyApostrophe,
	',':  event.KeyComma,
	'-':  event.KeyMinus,
	'.':  event.KeyPeriod,
	'/':  event.KeySlash,
	';':  event.KeySemicolon,
	'=':  event.KeyEqual,
	'[':  event.KeyLeftBracket,
	'\\': event.KeyBackslash,
	']':  event.KeyRightBracket,
	'`':  event.KeyGraveAccent,
}

func keysymToKey(sym xproto.Keysym) event.Key {
	switch {
	case sym >= '0' && sym <= '9':
		return event.Key0 + event.Key(sym-'0')
	case sym >= 'a' && sym <= 'z':
		return event.KeyA + event.Key(sym-'a')
	case sym >= 'A' && sym <= 'Z':
		return event.KeyA + event.Key(sym-'A')
	case sym >= xkF1 && sym <= xkF25:
		return event.KeyF1 + event.Key(sym-xkF1)
	case sym >= xkKP0 && sym <= xkKP9:
		return event.KeyKP0 + event.Key(sym-xkKP0)
	}
	if key, ok := keysymKeys[sym]; ok {
		return key
	}
	return event.KeyUnknown
}

// keysymToRune converts a keysym to the character it composes, or zero
// for keysyms that compose nothing. Latin-1 keysyms are their own code
// points and keysyms above 0x01000000 embed the code point directly.
func keysymToRune(sym xproto.Keysym) rune {
	switch {
	case sym >= 0x20 && sym <= 0x7e:
		return rune(sym)
	case sym >= 0xa0 && sym <= 0xff:
		return rune(sym)
	case sym >= xkKP0 && sym <= xkKP9:
		return rune('0' + sym - xkKP0)
	case sym >= 0x01000100 && sym <= 0x0110ffff:
		return rune(sym - 0x01000000)
	}
	switch sym {
	case xkKPDecimal:
		return '.'
	case xkKPDivide:
		return '/'
	case xkKPMultiply:
		return '*'
	case xkKPSubtract:
		return '-'
	case xkKPAdd:
		return '+'
	case xkKPEqual:
		return '='
	case xkTab:
		return '\t'
	}
	return 0
}
