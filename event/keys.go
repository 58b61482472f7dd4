package event

import "fmt"

// Key is a logical, layout-independent key identifier. Values name the
// engraving on a standard US layout; the platform layer translates
// hardware scancodes into these.
type Key int

const (
	KeyUnknown Key = iota

	KeySpace
	KeyApostrophe
	KeyComma
	KeyMinus
	KeyPeriod
	KeySlash
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySemicolon
	KeyEqual
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyLeftBracket
	KeyBackslash
	KeyRightBracket
	KeyGraveAccent

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyInsert
	KeyDelete
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyCapsLock
	KeyScrollLock
	KeyNumLock
	KeyPrintScreen
	KeyPause
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24
	KeyF25
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKPDecimal
	KeyKPDivide
	KeyKPMultiply
	KeyKPSubtract
	KeyKPAdd
	KeyKPEnter
	KeyKPEqual
	KeyLeftShift
	KeyLeftControl
	KeyLeftAlt
	KeyLeftSuper
	KeyRightShift
	KeyRightControl
	KeyRightAlt
	KeyRightSuper
	KeyMenu
)

var keyNames = map[Key]string{
	KeySpace:        "space",
	KeyApostrophe:   "apostrophe",
	KeyComma:        "comma",
	KeyMinus:        "minus",
	KeyPeriod:       "period",
	KeySlash:        "slash",
	Key0:            "0",
	Key1:            "1",
	Key2:            "2",
	Key3:            "3",
	Key4:            "4",
	Key5:            "5",
	Key6:            "6",
	Key7:            "7",
	Key8:            "8",
	Key9:            "9",
	KeySemicolon:    "semicolon",
	KeyEqual:        "equal",
	KeyA:            "a",
	KeyB:            "b",
	KeyC:            "c",
	KeyD:            "d",
	KeyE:            "e",
	KeyF:            "f",
	KeyG:            "g",
	KeyH:            "h",
	KeyI:            "i",
	KeyJ:            "j",
	KeyK:            "k",
	KeyL:            "l",
	KeyM:            "m",
	KeyN:            "n",
	KeyO:            "o",
	KeyP:            "p",
	KeyQ:            "q",
	KeyR:            "r",
	KeyS:            "s",
	KeyT:            "t",
	KeyU:            "u",
	KeyV:            "v",
	KeyW:            "w",
	KeyX:            "x",
	KeyY:            "y",
	KeyZ:            "z",
	KeyLeftBracket:  "left_bracket",
	KeyBackslash:    "backslash",
	KeyRightBracket: "right_bracket",
	KeyGraveAccent:  "grave",
	KeyEscape:       "escape",
	KeyEnter:        "enter",
	KeyTab:          "tab",
	KeyBackspace:    "backspace",
	KeyInsert:       "insert",
	KeyDelete:       "delete",
	KeyRight:        "right",
	KeyLeft:         "left",
	KeyDown:         "down",
	KeyUp:           "up",
	KeyPageUp:       "page_up",
	KeyPageDown:     "page_down",
	KeyHome:         "home",
	KeyEnd:          "end",
	KeyCapsLock:     "caps_lock",
	KeyScrollLock:   "scroll_lock",
	KeyNumLock:      "num_lock",
	KeyPrintScreen:  "print_screen",
	KeyPause:        "pause",
	KeyF1:           "f1",
	KeyF2:           "f2",
	KeyF3:           "f3",
	KeyF4:           "f4",
	KeyF5:           "f5",
	KeyF6:           "f6",
	KeyF7:           "f7",
	KeyF8:           "f8",
	KeyF9:           "f9",
	KeyF10:          "f10",
	KeyF11:          "f11",
	KeyF12:          "f12",
	KeyKP0:          "kp_0",
	KeyKP1:          "kp_1",
	KeyKP2:          "kp_2",
	KeyKP3:          "kp_3",
	KeyKP4:          "kp_4",
	KeyKP5:          "kp_5",
	KeyKP6:          "kp_6",
	KeyKP7:          "kp_7",
	KeyKP8:          "kp_8",
	KeyKP9:          "kp_9",
	KeyKPDecimal:    "kp_decimal",
	KeyKPDivide:     "kp_divide",
	KeyKPMultiply:   "kp_multiply",
	KeyKPSubtract:   "kp_subtract",
	KeyKPAdd:        "kp_add",
	KeyKPEnter:      "kp_enter",
	KeyKPEqual:      "kp_equal",
	KeyLeftShift:    "left_shift",
	KeyLeftControl:  "left_control",
	KeyLeftAlt:      "left_alt",
	KeyLeftSuper:    "left_super",
	KeyRightShift:   "right_shift",
	KeyRightControl: "right_control",
	KeyRightAlt:     "right_alt",
	KeyRightSuper:   "right_super",
	KeyMenu:         "menu",
}

// String returns a stable lowercase key name, or "unknown".
func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	if k >= KeyF13 && k <= KeyF25 {
		return fmt.Sprintf("f%d", int(k-KeyF13)+13)
	}
	return "unknown"
}
