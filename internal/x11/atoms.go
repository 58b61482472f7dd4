package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Atoms holds every interned atom the backend speaks. Interning is
// pipelined: all requests go out before the first reply is read, so
// startup pays one round trip instead of one per atom.
type Atoms struct {
	WMProtocols    xproto.Atom
	WMState        xproto.Atom
	WMDeleteWindow xproto.Atom
	WMChangeState  xproto.Atom

	NetActiveWindow         xproto.Atom
	NetClientList           xproto.Atom
	NetCurrentDesktop       xproto.Atom
	NetFrameExtents         xproto.Atom
	NetRequestFrameExtents  xproto.Atom
	NetSupported            xproto.Atom
	NetSupportingWMCheck    xproto.Atom
	NetWorkarea             xproto.Atom
	NetWMIcon               xproto.Atom
	NetWMName               xproto.Atom
	NetWMIconName           xproto.Atom
	NetWMPid                xproto.Atom
	NetWMPing               xproto.Atom
	NetWMState              xproto.Atom
	NetWMStateAbove         xproto.Atom
	NetWMStateFullscreen    xproto.Atom
	NetWMStateMaximizedHorz xproto.Atom
	NetWMStateMaximizedVert xproto.Atom
	NetWMStateDemandsAttn   xproto.Atom
	NetWMWindowOpacity      xproto.Atom
	NetWMWindowType         xproto.Atom
	NetWMWindowTypeNormal   xproto.Atom

	MotifWMHints xproto.Atom

	UTF8String       xproto.Atom
	Clipboard        xproto.Atom
	Primary          xproto.Atom
	Targets          xproto.Atom
	Multiple         xproto.Atom
	Incr             xproto.Atom
	AtomPair         xproto.Atom
	ClipboardManager xproto.Atom
	SaveTargets      xproto.Atom
	NullAtom         xproto.Atom
	TransferProperty xproto.Atom

	XdndAware      xproto.Atom
	XdndEnter      xproto.Atom
	XdndPosition   xproto.Atom
	XdndStatus     xproto.Atom
	XdndActionCopy xproto.Atom
	XdndDrop       xproto.Atom
	XdndLeave      xproto.Atom
	XdndFinished   xproto.Atom
	XdndSelection  xproto.Atom
	XdndTypeList   xproto.Atom
	TextURIList    xproto.Atom
}

// internAtoms fills in the atom table over the given connection.
func internAtoms(x *xgb.Conn) (Atoms, error) {
	var a Atoms
	targets := []struct {
		name string
		atom *xproto.Atom
	}{
		{"WM_PROTOCOLS", &a.WMProtocols},
		{"WM_STATE", &a.WMState},
		{"WM_DELETE_WINDOW", &a.WMDeleteWindow},
		{"WM_CHANGE_STATE", &a.WMChangeState},
		{"_NET_ACTIVE_WINDOW", &a.NetActiveWindow},
		{"_NET_CLIENT_LIST", &a.NetClientList},
		{"_NET_CURRENT_DESKTOP", &a.NetCurrentDesktop},
		{"_NET_FRAME_EXTENTS", &a.NetFrameExtents},
		{"_NET_REQUEST_FRAME_EXTENTS", &a.NetRequestFrameExtents},
		{"_NET_SUPPORTED", &a.NetSupported},
		{"_NET_SUPPORTING_WM_CHECK", &a.NetSupportingWMCheck},
		{"_NET_WORKAREA", &a.NetWorkarea},
		{"_NET_WM_ICON", &a.NetWMIcon},
		{"_NET_WM_NAME", &a.NetWMName},
		{"_NET_WM_ICON_NAME", &a.NetWMIconName},
		{"_NET_WM_PID", &a.NetWMPid},
		{"_NET_WM_PING", &a.NetWMPing},
		{"_NET_WM_STATE", &a.NetWMState},
		{"_NET_WM_STATE_ABOVE", &a.NetWMStateAbove},
		{"_NET_WM_STATE_FULLSCREEN", &a.NetWMStateFullscreen},
		{"_NET_WM_STATE_MAXIMIZED_HORZ", &a.NetWMStateMaximizedHorz},
		{"_NET_WM_STATE_MAXIMIZED_VERT", &a.NetWMStateMaximizedVert},
		{"_NET_WM_STATE_DEMANDS_ATTENTION", &a.NetWMStateDemandsAttn},
		{"_NET_WM_WINDOW_OPACITY", &a.NetWMWindowOpacity},
		{"_NET_WM_WINDOW_TYPE", &a.NetWMWindowType},
		{"_NET_WM_WINDOW_TYPE_NORMAL", &a.NetWMWindowTypeNormal},
		{"_MOTIF_WM_HINTS", &a.MotifWMHints},
		{"UTF8_STRING", &a.UTF8String},
		{"CLIPBOARD", &a.Clipboard},
		{"PRIMARY", &a.Primary},
		{"TARGETS", &a.Targets},
		{"MULTIPLE", &a.Multiple},
		{"INCR", &a.Incr},
		{"ATOM_PAIR", &a.AtomPair},
		{"CLIPBOARD_MANAGER", &a.ClipboardManager},
		{"SAVE_TARGETS", &a.SaveTargets},
		{"NULL", &a.NullAtom},
		{"GLWIN_SELECTION", &a.TransferProperty},
		{"XdndAware", &a.XdndAware},
		{"XdndEnter", &a.XdndEnter},
		{"XdndPosition", &a.XdndPosition},
		{"XdndStatus", &a.XdndStatus},
		{"XdndActionCopy", &a.XdndActionCopy},
		{"XdndDrop", &a.XdndDrop},
		{"XdndLeave", &a.XdndLeave},
		{"XdndFinished", &a.XdndFinished},
		{"XdndSelection", &a.XdndSelection},
		{"XdndTypeList", &a.XdndTypeList},
		{"text/uri-list", &a.TextURIList},
	}

	cookies := make([]xproto.InternAtomCookie, len(targets))
	for i, t := range targets {
		cookies[i] = xproto.InternAtom(x, false, uint16(len(t.name)), t.name)
	}
	for i, cookie := range cookies {
		reply, err := cookie.Reply()
		if err != nil {
			return Atoms{}, fmt.Errorf("failed to intern %s: %w", targets[i].name, err)
		}
		*targets[i].atom = reply.Atom
	}
	return a, nil
}
