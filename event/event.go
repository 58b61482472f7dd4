// Package event defines the backend-neutral input and window event
// vocabulary shared by all glwin backends.
package event

import "strconv"

// Action describes what happened to a key or mouse button.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return "unknown"
}

// Mods is a bitmask of modifier keys held during an input event.
type Mods int

const (
	ModShift Mods = 1 << iota
	ModControl
	ModAlt
	ModSuper
	ModCapsLock
	ModNumLock
)

// Plain reports whether no control or alt modifier is held. Character
// input carrying control/alt chords is typically not text.
func (m Mods) Plain() bool {
	return m&(ModControl|ModAlt) == 0
}

// String returns the held modifiers joined with "+", or "none".
func (m Mods) String() string {
	names := []struct {
		bit  Mods
		name string
	}{
		{ModShift, "shift"},
		{ModControl, "control"},
		{ModAlt, "alt"},
		{ModSuper, "super"},
		{ModCapsLock, "capslock"},
		{ModNumLock, "numlock"},
	}
	var s string
	for _, n := range names {
		if m&n.bit == 0 {
			continue
		}
		if s != "" {
			s += "+"
		}
		s += n.name
	}
	if s == "" {
		return "none"
	}
	return s
}

// Button identifies a mouse button. Buttons beyond the named three are
// reported by index.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
	Button4
	Button5
	Button6
	Button7
	Button8
)

// String returns the button name, "buttonN" for unnamed buttons.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return "button" + strconv.Itoa(int(b)+1)
}

// CursorMode selects how a window treats the cursor while it has focus.
type CursorMode int

const (
	// CursorNormal shows the cursor and lets it move freely.
	CursorNormal CursorMode = iota
	// CursorHidden hides the cursor while it is over the window.
	CursorHidden
	// CursorDisabled hides and captures the cursor, providing an
	// unbounded virtual position fed by motion deltas.
	CursorDisabled
)

// String returns the lowercase cursor mode name.
func (m CursorMode) String() string {
	switch m {
	case CursorNormal:
		return "normal"
	case CursorHidden:
		return "hidden"
	case CursorDisabled:
		return "disabled"
	}
	return "unknown"
}

// StandardCursor names a cursor shape provided by the platform theme.
type StandardCursor int

const (
	ArrowCursor StandardCursor = iota
	IBeamCursor
	CrosshairCursor
	HandCursor
	HResizeCursor
	VResizeCursor
)
