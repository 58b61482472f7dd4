package x11

import (
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// dndVersion is the highest Xdnd protocol version spoken here.
const dndVersion = 5

const dndConvertTimeout = time.Second

// dndSession tracks the state of one drag over one of our windows.
type dndSession struct {
	source  xproto.Window
	version uint32
	// format is the negotiated data type, zero when the drag offers
	// nothing usable and must be rejected.
	format xproto.Atom
	// time is the timestamp from the latest position message, used to
	// request the data on drop.
	time xproto.Timestamp
}

func (c *Conn) onDndEnter(w *Window, data []uint32) {
	version := data[1] >> 24
	if version > dndVersion {
		return
	}
	c.dnd = dndSession{
		source:  xproto.Window(data[0]),
		version: version,
	}

	var offered []xproto.Atom
	if data[1]&1 != 0 {
		// More than three formats; the full list lives in a property
		// on the source window.
		reply, err := xproto.GetProperty(c.x, false, c.dnd.source, c.atoms.XdndTypeList,
			xproto.AtomAtom, 0, 0xffff).Reply()
		if err == nil && reply.Format == 32 {
			for i := 0; i+4 <= len(reply.Value); i += 4 {
				offered = append(offered, xproto.Atom(xgb.Get32(reply.Value[i:])))
			}
		}
	} else {
		for _, v := range data[2:5] {
			if v != 0 {
				offered = append(offered, xproto.Atom(v))
			}
		}
	}
	for _, a := range offered {
		if a == c.atoms.TextURIList {
			c.dnd.format = a
			break
		}
	}
}

func (c *Conn) onDndPosition(w *Window, data []uint32) {
	if c.dnd.source != xproto.Window(data[0]) {
		return
	}
	if c.dnd.version >= 1 {
		c.dnd.time = xproto.Timestamp(data[3])
	}

	rootX := int16(data[2] >> 16)
	rootY := int16(data[2] & 0xffff)
	reply, err := xproto.TranslateCoordinates(c.x, c.root, w.id, rootX, rootY).Reply()
	if err == nil {
		w.handlers.EmitCursorPos(float64(reply.DstX), float64(reply.DstY))
	}

	status := [5]uint32{uint32(w.id)}
	if c.dnd.format != 0 {
		status[1] = 1
		status[4] = uint32(c.atoms.XdndActionCopy)
	}
	if err := c.sendMessage(c.dnd.source, c.atoms.XdndStatus, status); err != nil {
		c.logger.Debug("failed to send drag status", "error", err)
	}
}

func (c *Conn) onDndDrop(w *Window, data []uint32) {
	if c.dnd.source != xproto.Window(data[0]) {
		return
	}
	session := c.dnd
	c.dnd = dndSession{}

	if session.format == 0 {
		// Nothing was negotiated; tell the source without asking for
		// a conversion it would have to perform for nothing.
		c.finishDrop(w, session, false)
		return
	}

	t := xproto.Timestamp(xproto.TimeCurrentTime)
	if session.version >= 1 {
		t = xproto.Timestamp(data[2])
	}
	text, err := c.convertSelection(w.id, c.atoms.XdndSelection, session.format, t, dndConvertTimeout)
	if err != nil {
		c.logger.Debug("drag data conversion failed", "error", err)
		c.finishDrop(w, session, false)
		return
	}
	if paths := parseURIList(text); len(paths) > 0 {
		w.handlers.EmitDrop(paths)
	}
	c.finishDrop(w, session, true)
}

func (c *Conn) onDndLeave(w *Window) {
	c.dnd = dndSession{}
}

// finishDrop sends XdndFinished for protocol versions that expect it.
func (c *Conn) finishDrop(w *Window, session dndSession, accepted bool) {
	if session.version < 2 {
		return
	}
	finished := [5]uint32{uint32(w.id)}
	if accepted {
		finished[1] = 1
		finished[2] = uint32(c.atoms.XdndActionCopy)
	}
	if err := c.sendMessage(session.source, c.atoms.XdndFinished, finished); err != nil {
		c.logger.Debug("failed to send drop confirmation", "error", err)
	}
}

// parseURIList extracts local paths from a text/uri-list payload.
// Non-file URIs are kept verbatim so the application can decide.
func parseURIList(text string) []string {
	var paths []string
	for _, line := range strings.Split(text, "\r\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "file://"); ok {
			// file://hostname/path carries an optional hostname.
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				rest = rest[i:]
			}
			line = rest
		}
		if decoded, err := url.PathUnescape(line); err == nil {
			line = decoded
		}
		paths = append(paths, line)
	}
	return paths
}
