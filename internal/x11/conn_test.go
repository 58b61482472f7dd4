package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

func TestCollectVisualDepths(t *testing.T) {
	screen := &xproto.ScreenInfo{
		AllowedDepths: []xproto.DepthInfo{
			{Depth: 24, Visuals: []xproto.VisualInfo{{VisualId: 0x21}, {VisualId: 0x22}}},
			{Depth: 32, Visuals: []xproto.VisualInfo{{VisualId: 0x41}}},
		},
	}

	depths := collectVisualDepths(screen)

	if len(depths) != 3 {
		t.Fatalf("got %d visuals, want 3", len(depths))
	}
	if depths[0x21] != 24 || depths[0x22] != 24 {
		t.Errorf("24-bit visuals mapped to %d/%d", depths[0x21], depths[0x22])
	}
	if depths[0x41] != 32 {
		t.Errorf("32-bit visual mapped to %d", depths[0x41])
	}
}

func TestCollectAlphaVisuals(t *testing.T) {
	reply := &render.QueryPictFormatsReply{
		Formats: []render.Pictforminfo{
			{Id: 1, Type: render.PictTypeDirect, Depth: 32,
				Direct: render.Directformat{AlphaShift: 24, AlphaMask: 0xff}},
			{Id: 2, Type: render.PictTypeDirect, Depth: 24},
			// Indexed formats never make a window transparent, whatever
			// their masks claim.
			{Id: 3, Type: render.PictTypeIndexed, Depth: 8,
				Direct: render.Directformat{AlphaMask: 0xff}},
		},
		Screens: []render.Pictscreen{{
			Depths: []render.Pictdepth{
				{Depth: 32, Visuals: []render.Pictvisual{{Visual: 0x41, Format: 1}}},
				{Depth: 24, Visuals: []render.Pictvisual{{Visual: 0x21, Format: 2}}},
				{Depth: 8, Visuals: []render.Pictvisual{{Visual: 0x11, Format: 3}}},
			},
		}},
	}

	visuals := collectAlphaVisuals(reply)

	if !visuals[0x41] {
		t.Errorf("32-bit direct visual with alpha not collected")
	}
	if visuals[0x21] {
		t.Errorf("opaque visual collected as transparent")
	}
	if visuals[0x11] {
		t.Errorf("indexed visual collected as transparent")
	}
}
