package x11

import (
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glwin/internal/werr"
)

const (
	selectionTimeout = time.Second
	managerTimeout   = 2 * time.Second

	// Longest read per GetProperty call, in 32-bit units.
	propertyChunkMax = 0xffffff
)

// SetClipboard offers text on the clipboard selection.
func (c *Conn) SetClipboard(text string) error {
	return c.claimSelection(c.atoms.Clipboard, &c.clipboardString, text)
}

// SetPrimary offers text on the primary selection.
func (c *Conn) SetPrimary(text string) error {
	return c.claimSelection(c.atoms.Primary, &c.primaryString, text)
}

// Clipboard returns the current clipboard text.
func (c *Conn) Clipboard() (string, error) {
	return c.selectionString(c.atoms.Clipboard, &c.clipboardString)
}

// Primary returns the current primary selection text.
func (c *Conn) Primary() (string, error) {
	return c.selectionString(c.atoms.Primary, &c.primaryString)
}

// claimSelection takes ownership of a selection on behalf of the
// helper window and verifies the server agreed.
func (c *Conn) claimSelection(sel xproto.Atom, cache *string, text string) error {
	*cache = text
	err := xproto.SetSelectionOwnerChecked(c.x, c.helper, sel, xproto.TimeCurrentTime).Check()
	if err != nil {
		return werr.Wrap(werr.PlatformError, err, "failed to claim selection")
	}
	reply, err := xproto.GetSelectionOwner(c.x, sel).Reply()
	if err != nil || reply.Owner != c.helper {
		return werr.New(werr.PlatformError, "failed to become owner of the selection")
	}
	return nil
}

// selectionString fetches a selection as text. When this process is
// the owner the cached string is returned without a round trip.
func (c *Conn) selectionString(sel xproto.Atom, cache *string) (string, error) {
	owner, err := xproto.GetSelectionOwner(c.x, sel).Reply()
	if err != nil {
		return "", werr.Wrap(werr.PlatformError, err, "failed to query selection owner")
	}
	if owner.Owner == c.helper {
		return *cache, nil
	}
	if owner.Owner == xproto.WindowNone {
		return "", werr.New(werr.FormatUnavailable, "no selection owner")
	}
	for _, target := range []xproto.Atom{c.atoms.UTF8String, xproto.AtomString} {
		text, err := c.convertSelection(c.helper, sel, target, xproto.TimeCurrentTime, selectionTimeout)
		if err == nil {
			*cache = text
			return text, nil
		}
	}
	return "", werr.New(werr.FormatUnavailable, "failed to convert selection to string")
}

// convertSelection asks the owner of sel to deliver target-typed data
// to requestor and blocks until it lands, following the INCR protocol
// for large transfers.
func (c *Conn) convertSelection(requestor xproto.Window, sel, target xproto.Atom, t xproto.Timestamp, timeout time.Duration) (string, error) {
	xproto.ConvertSelection(c.x, requestor, sel, target, c.atoms.TransferProperty, t)

	raw := c.waitFor(timeout, func(ev xgb.Event) bool {
		sn, ok := ev.(xproto.SelectionNotifyEvent)
		return ok && sn.Requestor == requestor && sn.Selection == sel
	})
	if raw == nil {
		return "", werr.New(werr.PlatformError, "timed out waiting for selection owner")
	}
	notify := raw.(xproto.SelectionNotifyEvent)
	if notify.Property == xproto.AtomNone {
		return "", werr.New(werr.FormatUnavailable, "selection conversion refused")
	}

	reply, err := xproto.GetProperty(c.x, true, requestor, notify.Property,
		xproto.GetPropertyTypeAny, 0, propertyChunkMax).Reply()
	if err != nil {
		return "", werr.Wrap(werr.PlatformError, err, "failed to read selection property")
	}
	if reply.Type != c.atoms.Incr {
		return string(reply.Value), nil
	}

	// INCR: deleting the property acknowledges each chunk and asks
	// for the next; a zero-length chunk ends the transfer.
	var acc incrAccumulator
	for {
		raw := c.waitFor(timeout, func(ev xgb.Event) bool {
			pn, ok := ev.(xproto.PropertyNotifyEvent)
			return ok && pn.Window == requestor && pn.Atom == notify.Property &&
				pn.State == xproto.PropertyNewValue
		})
		if raw == nil {
			return "", werr.New(werr.PlatformError, "timed out waiting for selection chunk")
		}
		chunk, err := xproto.GetProperty(c.x, true, requestor, notify.Property,
			xproto.GetPropertyTypeAny, 0, propertyChunkMax).Reply()
		if err != nil {
			return "", werr.Wrap(werr.PlatformError, err, "failed to read selection chunk")
		}
		if acc.add(chunk.Value) {
			return acc.result(), nil
		}
	}
}

// incrAccumulator collects INCR chunks. Bytes are stitched together
// raw and converted to a string in one step at the end, so multi-byte
// sequences split across chunk boundaries survive.
type incrAccumulator struct {
	buf []byte
}

// add appends one chunk and reports whether the transfer is complete.
func (a *incrAccumulator) add(chunk []byte) bool {
	if len(chunk) == 0 {
		return true
	}
	a.buf = append(a.buf, chunk...)
	return false
}

func (a *incrAccumulator) result() string { return string(a.buf) }

// onSelectionRequest answers a conversion request from another client
// while the helper window owns a selection.
func (c *Conn) onSelectionRequest(ev xproto.SelectionRequestEvent) {
	reply := xproto.SelectionNotifyEvent{
		Time:      ev.Time,
		Requestor: ev.Requestor,
		Selection: ev.Selection,
		Target:    ev.Target,
		Property:  c.writeTarget(ev),
	}
	xproto.SendEvent(c.x, false, ev.Requestor, xproto.EventMaskNoEvent, string(reply.Bytes()))
}

// writeTarget writes the requested conversion to the requestor and
// returns the property the notification should name, None for
// rejection.
func (c *Conn) writeTarget(ev xproto.SelectionRequestEvent) xproto.Atom {
	if ev.Property == xproto.AtomNone {
		// Pre-ICCCM clients name no destination property.
		return xproto.AtomNone
	}
	text := c.selectionText(ev.Selection)
	if text == nil {
		return xproto.AtomNone
	}

	switch ev.Target {
	case c.atoms.Targets:
		c.changeProperty32(ev.Requestor, ev.Property, xproto.AtomAtom,
			uint32(c.atoms.Targets), uint32(c.atoms.Multiple),
			uint32(c.atoms.UTF8String), uint32(xproto.AtomString))
		return ev.Property
	case c.atoms.Multiple:
		return c.writeMultiple(ev, *text)
	case c.atoms.SaveTargets:
		// Bare acknowledgement for the clipboard manager.
		c.changeProperty32(ev.Requestor, ev.Property, c.atoms.NullAtom)
		return ev.Property
	case c.atoms.UTF8String, xproto.AtomString:
		c.changeProperty8(ev.Requestor, ev.Property, ev.Target, []byte(*text))
		return ev.Property
	}
	return xproto.AtomNone
}

// writeMultiple serves a MULTIPLE request: convert each target/property
// pair in place, replacing the property with None for targets that
// cannot be served.
func (c *Conn) writeMultiple(ev xproto.SelectionRequestEvent, text string) xproto.Atom {
	reply, err := xproto.GetProperty(c.x, false, ev.Requestor, ev.Property,
		c.atoms.AtomPair, 0, propertyChunkMax).Reply()
	if err != nil || reply.Format != 32 {
		return xproto.AtomNone
	}
	pairs := make([]uint32, len(reply.Value)/4)
	for i := range pairs {
		pairs[i] = xgb.Get32(reply.Value[i*4:])
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		target := xproto.Atom(pairs[i])
		prop := xproto.Atom(pairs[i+1])
		if (target == c.atoms.UTF8String || target == xproto.AtomString) && prop != xproto.AtomNone {
			c.changeProperty8(ev.Requestor, prop, target, []byte(text))
		} else {
			pairs[i+1] = uint32(xproto.AtomNone)
		}
	}
	c.changeProperty32(ev.Requestor, ev.Property, c.atoms.AtomPair, pairs...)
	return ev.Property
}

// selectionText returns the offered string for a selection this
// process can own, nil otherwise.
func (c *Conn) selectionText(sel xproto.Atom) *string {
	switch sel {
	case c.atoms.Clipboard:
		return &c.clipboardString
	case c.atoms.Primary:
		return &c.primaryString
	}
	return nil
}

// onSelectionClear drops the cached string when another client takes
// the selection away.
func (c *Conn) onSelectionClear(ev xproto.SelectionClearEvent) {
	switch ev.Selection {
	case c.atoms.Clipboard:
		c.clipboardString = ""
	case c.atoms.Primary:
		c.primaryString = ""
	}
}

// pushClipboardToManager hands the clipboard over to a clipboard
// manager before the connection closes, so the offered text outlives
// this process. Only selection traffic is pumped while waiting.
func (c *Conn) pushClipboardToManager() {
	if c.clipboardString == "" {
		return
	}
	owner, err := xproto.GetSelectionOwner(c.x, c.atoms.Clipboard).Reply()
	if err != nil || owner.Owner != c.helper {
		return
	}
	manager, err := xproto.GetSelectionOwner(c.x, c.atoms.ClipboardManager).Reply()
	if err != nil || manager.Owner == xproto.WindowNone {
		return
	}

	xproto.ConvertSelection(c.x, c.helper, c.atoms.ClipboardManager,
		c.atoms.SaveTargets, c.atoms.TransferProperty, xproto.TimeCurrentTime)

	deadline := time.Now().Add(managerTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		for _, raw := range c.waitAny(remaining) {
			switch ev := raw.(type) {
			case xproto.SelectionRequestEvent:
				c.onSelectionRequest(ev)
			case xproto.SelectionNotifyEvent:
				if ev.Selection == c.atoms.ClipboardManager {
					return
				}
			}
		}
	}
}
