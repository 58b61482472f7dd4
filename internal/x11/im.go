package x11

import "github.com/BurntSushi/xgb/xproto"

// InputContext is the seam between key dispatch and an input method.
// When a window has one, key presses are offered to Filter first;
// consumed events produce no direct key or character input, and the
// input method delivers composed text through Lookup on the events it
// passes through. Without a context, characters come straight from the
// keysym tables.
//
// Input method servers can disappear at runtime. A provider whose
// backing context dies must call Window.ClearInputContext so dispatch
// falls back to keysym composition instead of calling into a dead
// context.
type InputContext interface {
	// Filter reports whether the input method consumed the key event.
	Filter(code xproto.Keycode, time xproto.Timestamp) bool
	// Lookup returns composed text for a key press, if any.
	Lookup(code xproto.Keycode, state uint16) (string, bool)
	// SetFocus reports window focus changes to the input method.
	SetFocus(focused bool)
	// Destroy releases the context.
	Destroy()
}

// ClearInputContext drops the window's input context reference. Called
// by input method providers when their server goes away.
func (w *Window) ClearInputContext() {
	w.ic = nil
}
