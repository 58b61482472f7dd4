package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"

	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/werr"
)

// Glyph indices in the standard X cursor font.
var cursorGlyphs = map[event.StandardCursor]uint16{
	event.ArrowCursor:     68,  // XC_left_ptr
	event.IBeamCursor:     152, // XC_xterm
	event.CrosshairCursor: 34,  // XC_crosshair
	event.HandCursor:      60,  // XC_hand2
	event.HResizeCursor:   108, // XC_sb_h_double_arrow
	event.VResizeCursor:   116, // XC_sb_v_double_arrow
}

// standardCursor returns a cached cursor for a glyph, creating it on
// first use.
func (c *Conn) standardCursor(glyph uint16) (xproto.Cursor, error) {
	if cur, ok := c.cursors[glyph]; ok {
		return cur, nil
	}
	cur, err := xcursor.CreateCursor(c.xu, glyph)
	if err != nil {
		return 0, werr.Wrap(werr.CursorUnavailable, err, "failed to create standard cursor")
	}
	c.cursors[glyph] = cur
	return cur, nil
}

// blankCursor returns the invisible cursor used by the hidden and
// disabled modes, creating it on first use.
func (c *Conn) blankCursor() (xproto.Cursor, error) {
	if c.hiddenCursor != 0 {
		return c.hiddenCursor, nil
	}
	pix, err := xproto.NewPixmapId(c.x)
	if err != nil {
		return 0, werr.Wrap(werr.PlatformError, err, "failed to allocate pixmap id")
	}
	cid, err := xproto.NewCursorId(c.x)
	if err != nil {
		return 0, werr.Wrap(werr.PlatformError, err, "failed to allocate cursor id")
	}
	if err := xproto.CreatePixmapChecked(c.x, 1, pix, xproto.Drawable(c.root), 1, 1).Check(); err != nil {
		return 0, werr.Wrap(werr.PlatformError, err, "failed to create cursor pixmap")
	}
	err = xproto.CreateCursorChecked(c.x, cid, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check()
	xproto.FreePixmap(c.x, pix)
	if err != nil {
		return 0, werr.Wrap(werr.PlatformError, err, "failed to create blank cursor")
	}
	c.hiddenCursor = cid
	return cid, nil
}

// SetCursorShape selects the standard cursor shown in normal mode.
func (w *Window) SetCursorShape(shape event.StandardCursor) error {
	_, ok := cursorGlyphs[shape]
	if !ok {
		return werr.New(werr.CursorUnavailable, "standard cursor shape %d is not available", int(shape))
	}
	w.cursorShape = shape
	if w.cursorMode == event.CursorNormal {
		return w.applyCursor()
	}
	return nil
}

// SetCursorMode switches between the normal, hidden and disabled
// cursor modes.
func (w *Window) SetCursorMode(mode event.CursorMode) error {
	switch mode {
	case event.CursorNormal, event.CursorHidden, event.CursorDisabled:
	default:
		return werr.New(werr.InvalidValue, "invalid cursor mode %d", int(mode))
	}
	if mode == w.cursorMode {
		return nil
	}

	if w.c.disabledWindow == w && mode != event.CursorDisabled {
		w.releaseCursor()
		w.c.disabledWindow = nil
	}
	w.cursorMode = mode

	if mode == event.CursorDisabled {
		if prev := w.c.disabledWindow; prev != nil && prev != w {
			prev.releaseCursor()
			prev.cursorMode = event.CursorNormal
		}
		return w.captureCursor()
	}
	return w.applyCursor()
}

// CursorMode returns the active cursor mode.
func (w *Window) CursorMode() event.CursorMode { return w.cursorMode }

// CursorPos returns the cursor position in client coordinates. In
// disabled mode this is the unbounded virtual position.
func (w *Window) CursorPos() (float64, float64) {
	if w.cursorMode == event.CursorDisabled {
		return w.virtualX, w.virtualY
	}
	reply, err := xproto.QueryPointer(w.c.x, w.id).Reply()
	if err != nil {
		return 0, 0
	}
	return float64(reply.WinX), float64(reply.WinY)
}

// SetCursorPos moves the cursor within the client area. In disabled
// mode only the virtual position changes.
func (w *Window) SetCursorPos(x, y float64) error {
	if w.cursorMode == event.CursorDisabled {
		w.virtualX, w.virtualY = x, y
		w.lastCursorX, w.lastCursorY = int(x), int(y)
		return nil
	}
	w.warpPointer(int(x), int(y))
	return nil
}

// applyCursor installs the cursor matching the current mode on the
// window.
func (w *Window) applyCursor() error {
	var cur xproto.Cursor
	switch w.cursorMode {
	case event.CursorNormal:
		glyph, ok := cursorGlyphs[w.cursorShape]
		if !ok {
			glyph = cursorGlyphs[event.ArrowCursor]
		}
		// The default arrow is inherited from the parent rather than
		// created, so an untouched window keeps the theme cursor.
		if w.cursorShape != event.ArrowCursor {
			c, err := w.c.standardCursor(glyph)
			if err != nil {
				return err
			}
			cur = c
		}
	case event.CursorHidden, event.CursorDisabled:
		c, err := w.c.blankCursor()
		if err != nil {
			return err
		}
		cur = c
	}
	err := xproto.ChangeWindowAttributesChecked(w.c.x, w.id,
		xproto.CwCursor, []uint32{uint32(cur)}).Check()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to set cursor")
	}
	return nil
}

// captureCursor implements the disabled mode: remember where the
// cursor was, grab it with the blank cursor and park it in the center
// so every future motion event yields a delta.
func (w *Window) captureCursor() error {
	x, y := w.CursorPos()
	w.restoreCursorX, w.restoreCursorY = x, y
	w.virtualX, w.virtualY = x, y

	blank, err := w.c.blankCursor()
	if err != nil {
		return err
	}
	mask := uint16(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion)
	reply, err := xproto.GrabPointer(w.c.x, true, w.id, mask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, w.id, blank,
		xproto.TimeCurrentTime).Reply()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to grab cursor")
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return werr.New(werr.PlatformError, "failed to grab cursor: status %d", reply.Status)
	}
	w.c.disabledWindow = w
	w.centerCursor()
	return nil
}

// releaseCursor undoes a disabled-mode grab and puts the cursor back
// where capture found it.
func (w *Window) releaseCursor() {
	xproto.UngrabPointer(w.c.x, xproto.TimeCurrentTime)
	w.warpPointer(int(w.restoreCursorX), int(w.restoreCursorY))
	if err := w.applyCursor(); err != nil {
		w.c.logger.Debug("failed to restore cursor", "error", err)
	}
}

// centerCursor parks the pointer in the middle of the client area.
func (w *Window) centerCursor() {
	w.warpPointer(w.width/2, w.height/2)
	w.lastCursorX, w.lastCursorY = w.width/2, w.height/2
}

// warpPointer moves the pointer and records the target so the motion
// event the warp echoes back can be told apart from user input.
func (w *Window) warpPointer(x, y int) {
	w.warpX, w.warpY = x, y
	xproto.WarpPointer(w.c.x, xproto.WindowNone, w.id, 0, 0, 0, 0, int16(x), int16(y))
}

// recenterDisabledCursor keeps the captured cursor away from the
// screen edges between event batches, so deltas never saturate.
func (c *Conn) recenterDisabledCursor() {
	w := c.disabledWindow
	if w == nil {
		return
	}
	if w.lastCursorX != w.width/2 || w.lastCursorY != w.height/2 {
		w.centerCursor()
	}
}
