package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/glwin/event"
)

// repeatThreshold is the longest gap, in server milliseconds, between
// a key release and the following press of the same keycode that still
// counts as auto-repeat.
const repeatThreshold = 20

// dispatch translates a batch of protocol events into callbacks. The
// batch is indexed rather than ranged because auto-repeat detection
// needs to peek at the next event.
func (c *Conn) dispatch(batch []xgb.Event) {
	for i := 0; i < len(batch); i++ {
		c.processEvent(batch, i)
	}
	c.recenterDisabledCursor()
}

func (c *Conn) processEvent(batch []xgb.Event, i int) {
	switch ev := batch[i].(type) {
	case xproto.KeyPressEvent:
		c.onKeyPress(ev)
	case xproto.KeyReleaseEvent:
		c.onKeyRelease(batch, i, ev)
	case xproto.ButtonPressEvent:
		c.onButtonPress(ev)
	case xproto.ButtonReleaseEvent:
		c.onButtonRelease(ev)
	case xproto.MotionNotifyEvent:
		c.onMotion(ev)
	case xproto.EnterNotifyEvent:
		if w := c.windows[ev.Event]; w != nil {
			// Some window managers reset the cursor on entry; put the
			// hidden cursor back.
			if w.cursorMode == event.CursorHidden {
				w.applyCursor()
			}
			w.handlers.EmitCursorEnter(true)
			w.handlers.EmitCursorPos(float64(ev.EventX), float64(ev.EventY))
		}
	case xproto.LeaveNotifyEvent:
		if w := c.windows[ev.Event]; w != nil {
			w.handlers.EmitCursorEnter(false)
		}
	case xproto.FocusInEvent:
		c.onFocusIn(ev)
	case xproto.FocusOutEvent:
		c.onFocusOut(ev)
	case xproto.ConfigureNotifyEvent:
		c.onConfigure(ev)
	case xproto.ReparentNotifyEvent:
		if w := c.windows[ev.Window]; w != nil {
			w.parent = ev.Parent
		}
	case xproto.MapNotifyEvent:
		if w := c.windows[ev.Window]; w != nil {
			w.visible = true
			w.updateIconified(false)
		}
	case xproto.ClientMessageEvent:
		c.onClientMessage(ev)
	case xproto.PropertyNotifyEvent:
		c.onPropertyNotify(ev)
	case xproto.ExposeEvent:
		if w := c.windows[ev.Window]; w != nil {
			w.handlers.EmitDamage()
		}
	case xproto.SelectionRequestEvent:
		c.onSelectionRequest(ev)
	case xproto.SelectionClearEvent:
		c.onSelectionClear(ev)
	case xproto.DestroyNotifyEvent:
		if _, known := c.windows[ev.Window]; !known {
			// A window this process never created, or already torn
			// down. XIDs recycle, so this cannot be acted on.
			c.logger.Debug("destroy notify for unknown window", "window", ev.Window)
		}
	case xproto.MappingNotifyEvent:
		if ev.Request != xproto.MappingPointer {
			c.refreshKeymap()
		}
	case randr.ScreenChangeNotifyEvent:
		if c.monitorsChanged != nil {
			c.monitorsChanged()
		}
	}
}

func (c *Conn) onKeyPress(ev xproto.KeyPressEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	code := ev.Detail
	mods := c.keymap.translateState(ev.State)
	plain := mods.Plain()

	pressAction := func() event.Action {
		if w.keys[code] == event.Press {
			return event.Repeat
		}
		return event.Press
	}

	if w.ic != nil {
		filtered := w.ic.Filter(code, ev.Time)

		// Input methods replay key events; a second press with the
		// same keycode and timestamp is such an echo, not a new key.
		if w.lastKeyCode != code || w.lastKeyTime != ev.Time {
			action := pressAction()
			w.keys[code] = event.Press
			w.handlers.EmitKey(c.keymap.translateKey(code), int(code), action, mods)
		}
		w.lastKeyCode = code
		w.lastKeyTime = ev.Time

		if !filtered {
			if text, ok := w.ic.Lookup(code, ev.State); ok {
				for _, r := range text {
					w.handlers.EmitChar(r, mods, plain)
				}
			}
		}
		return
	}

	action := pressAction()
	w.keys[code] = event.Press
	w.handlers.EmitKey(c.keymap.translateKey(code), int(code), action, mods)
	if r := keysymToRune(c.keymap.charKeysym(code, ev.State)); r != 0 {
		w.handlers.EmitChar(r, mods, plain)
	}
}

func (c *Conn) onKeyRelease(batch []xgb.Event, i int, ev xproto.KeyReleaseEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	code := ev.Detail

	// The server encodes auto-repeat as release/press pairs with
	// near-identical timestamps. Dropping the release here makes the
	// immediately following press read as a repeat.
	if i+1 < len(batch) {
		if next, ok := batch[i+1].(xproto.KeyPressEvent); ok &&
			next.Event == ev.Event && next.Detail == code &&
			next.Time-ev.Time < repeatThreshold {
			return
		}
	}

	w.keys[code] = event.Release
	w.handlers.EmitKey(c.keymap.translateKey(code), int(code), event.Release,
		c.keymap.translateState(ev.State))
}

func (c *Conn) onButtonPress(ev xproto.ButtonPressEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	mods := c.keymap.translateState(ev.State)
	switch ev.Detail {
	case 1:
		w.handlers.EmitMouseButton(event.ButtonLeft, event.Press, mods)
	case 2:
		w.handlers.EmitMouseButton(event.ButtonMiddle, event.Press, mods)
	case 3:
		w.handlers.EmitMouseButton(event.ButtonRight, event.Press, mods)
	case 4:
		w.handlers.EmitScroll(0, 1)
	case 5:
		w.handlers.EmitScroll(0, -1)
	case 6:
		w.handlers.EmitScroll(1, 0)
	case 7:
		w.handlers.EmitScroll(-1, 0)
	default:
		// Additional buttons continue after the four scroll directions.
		w.handlers.EmitMouseButton(event.Button(ev.Detail-5), event.Press, mods)
	}
}

func (c *Conn) onButtonRelease(ev xproto.ButtonReleaseEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	mods := c.keymap.translateState(ev.State)
	switch {
	case ev.Detail == 1:
		w.handlers.EmitMouseButton(event.ButtonLeft, event.Release, mods)
	case ev.Detail == 2:
		w.handlers.EmitMouseButton(event.ButtonMiddle, event.Release, mods)
	case ev.Detail == 3:
		w.handlers.EmitMouseButton(event.ButtonRight, event.Release, mods)
	case ev.Detail > 7:
		w.handlers.EmitMouseButton(event.Button(ev.Detail-5), event.Release, mods)
	}
	// Releases of the scroll buttons carry no information.
}

func (c *Conn) onMotion(ev xproto.MotionNotifyEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	x, y := int(ev.EventX), int(ev.EventY)
	if w.cursorMode == event.CursorDisabled && c.disabledWindow == w {
		// The warp that recenters the cursor echoes one motion event
		// back; it carries no user movement.
		if x != w.warpX || y != w.warpY {
			w.virtualX += float64(x - w.lastCursorX)
			w.virtualY += float64(y - w.lastCursorY)
			w.handlers.EmitCursorPos(w.virtualX, w.virtualY)
		}
	} else {
		w.handlers.EmitCursorPos(float64(x), float64(y))
	}
	w.lastCursorX, w.lastCursorY = x, y
}

func (c *Conn) onFocusIn(ev xproto.FocusInEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	// Focus changes caused by grabs reverse themselves when the grab
	// ends; reporting them would make focus flap.
	if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
		return
	}
	if w.focused {
		return
	}
	w.focused = true
	if w.cursorMode == event.CursorDisabled && c.disabledWindow != w {
		if err := w.captureCursor(); err != nil {
			c.logger.Debug("failed to recapture cursor", "error", err)
		}
	}
	if w.ic != nil {
		w.ic.SetFocus(true)
	}
	w.handlers.EmitFocus(true)
}

func (c *Conn) onFocusOut(ev xproto.FocusOutEvent) {
	w := c.windows[ev.Event]
	if w == nil {
		return
	}
	if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
		return
	}
	if !w.focused {
		return
	}
	w.focused = false
	if w.cursorMode == event.CursorDisabled && c.disabledWindow == w {
		w.releaseCursor()
		c.disabledWindow = nil
	}
	if w.ic != nil {
		w.ic.SetFocus(false)
	}

	// Keys held across a focus loss would otherwise stick pressed
	// forever; release them on the way out.
	for code, action := range w.keys {
		if action != event.Release {
			w.keys[code] = event.Release
			w.handlers.EmitKey(c.keymap.translateKey(xproto.Keycode(code)), code,
				event.Release, 0)
		}
	}
	w.handlers.EmitFocus(false)
}

func (c *Conn) onConfigure(ev xproto.ConfigureNotifyEvent) {
	w := c.windows[ev.Window]
	if w == nil {
		return
	}
	width, height := int(ev.Width), int(ev.Height)
	if width != w.width || height != w.height {
		w.width, w.height = width, height
		w.handlers.EmitSize(width, height)
		w.handlers.EmitFramebufferSize(width, height)
	}

	x, y := int(ev.X), int(ev.Y)
	if w.parent != c.root {
		// Coordinates of reparented windows are relative to the frame;
		// ask the server for the root-relative position instead.
		reply, err := xproto.TranslateCoordinates(c.x, w.id, c.root, 0, 0).Reply()
		if err != nil {
			return
		}
		x, y = int(reply.DstX), int(reply.DstY)
	}
	if x != w.x || y != w.y {
		w.x, w.y = x, y
		w.handlers.EmitPos(x, y)
	}
}

func (c *Conn) onClientMessage(ev xproto.ClientMessageEvent) {
	w := c.windows[ev.Window]
	if w == nil || ev.Format != 32 {
		return
	}
	data := ev.Data.Data32

	switch ev.Type {
	case c.atoms.WMProtocols:
		switch xproto.Atom(data[0]) {
		case c.atoms.WMDeleteWindow:
			w.handlers.EmitCloseRequest()
		case c.atoms.NetWMPing:
			// The pong is the same event redirected at the root window.
			pong := ev
			pong.Window = c.root
			xproto.SendEvent(c.x, false, c.root,
				xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
				string(pong.Bytes()))
		}
	case c.atoms.XdndEnter:
		c.onDndEnter(w, data)
	case c.atoms.XdndPosition:
		c.onDndPosition(w, data)
	case c.atoms.XdndDrop:
		c.onDndDrop(w, data)
	case c.atoms.XdndLeave:
		c.onDndLeave(w)
	}
}

func (c *Conn) onPropertyNotify(ev xproto.PropertyNotifyEvent) {
	if ev.State != xproto.PropertyNewValue {
		return
	}
	w := c.windows[ev.Window]
	if w == nil {
		return
	}
	switch ev.Atom {
	case c.atoms.WMState:
		state, err := icccm.WmStateGet(c.xu, w.id)
		if err != nil {
			return
		}
		w.updateIconified(state.State == icccm.StateIconic)
	case c.atoms.NetWMState:
		states, err := ewmh.WmStateGet(c.xu, w.id)
		if err != nil {
			return
		}
		horz, vert := false, false
		for _, s := range states {
			switch s {
			case "_NET_WM_STATE_MAXIMIZED_HORZ":
				horz = true
			case "_NET_WM_STATE_MAXIMIZED_VERT":
				vert = true
			}
		}
		w.updateMaximized(horz && vert)
	}
}
